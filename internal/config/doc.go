// Package config loads, normalizes, and validates ufdr configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// UFDR_LOG_LEVEL and UFDR_DEVICE_ID. The Config type centralizes every knob
// the ingest and verify commands need so log, ledger, and dialect locations are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
