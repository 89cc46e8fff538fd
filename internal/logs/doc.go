// Package logs tails the ufdr log file with bounded memory and optional
// filtering by case, run, or event type.
//
// Negative offsets mean "the last N matching lines"; non-negative offsets
// resume reading from that byte position, which is how `ufdr logs --follow`
// polls for new lines. Both the JSON and console log formats are filtered.
package logs
