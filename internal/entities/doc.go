// Package entities detects investigative entities in free text: phone
// numbers, cryptocurrency addresses, URLs, and email addresses.
//
// All functions are pure and tolerate empty input. Results are de-duplicated
// while preserving first-occurrence order so downstream indexes see a stable
// ordering for a given message body.
//
// Two variants are exposed. Extract returns the three-field Set embedded in
// message records by the ingestion pipeline; ExtractAll adds email addresses
// and backs the standalone `ufdr entities` command.
package entities
