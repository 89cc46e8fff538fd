// Package main hosts the ufdr CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into ingestion runs,
// manifest verification passes, run history queries, and configuration
// scaffolding. It centralizes configuration resolution and logger setup so
// subcommands stay focused on presenting results.
//
// Stdout carries only command results (JSON summaries or tables); logs go to
// stderr and the configured log file.
package main
