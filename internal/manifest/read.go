package manifest

import "ufdr/internal/jsonl"

// Read loads manifest entries from path. Malformed lines are returned as
// parse errors rather than failing the read.
func Read(path string) ([]Entry, []*jsonl.FieldParseError, error) {
	var entries []Entry
	skipped, err := jsonl.DecodeFile(path, func(_ int, e Entry) error {
		if e.RelatedMessageIDs == nil {
			e.RelatedMessageIDs = []string{}
		}
		entries = append(entries, e)
		return nil
	})
	return entries, skipped, err
}
