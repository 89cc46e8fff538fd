package logs

import (
	"encoding/json"
	"strings"

	"ufdr/internal/logging"
)

// Filter selects log lines by structured field. Empty fields match anything.
type Filter struct {
	CaseID    string
	RunID     string
	EventType string
}

// Empty reports whether the filter matches every line.
func (f Filter) Empty() bool {
	return f.CaseID == "" && f.RunID == "" && f.EventType == ""
}

// Match reports whether line carries every requested field value.
func (f Filter) Match(line string) bool {
	if f.Empty() {
		return true
	}
	wants := f.pairs()
	if fields, ok := decodeJSONLine(line); ok {
		for key, want := range wants {
			got, _ := fields[key].(string)
			if got != want {
				return false
			}
		}
		return true
	}
	for key, want := range wants {
		if !hasConsolePair(line, key, want) {
			return false
		}
	}
	return true
}

func (f Filter) pairs() map[string]string {
	pairs := make(map[string]string, 3)
	if f.CaseID != "" {
		pairs[logging.FieldCaseID] = f.CaseID
	}
	if f.RunID != "" {
		pairs[logging.FieldRunID] = f.RunID
	}
	if f.EventType != "" {
		pairs[logging.FieldEventType] = f.EventType
	}
	return pairs
}

func decodeJSONLine(line string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// hasConsolePair looks for key=value or key="value" as a whole token.
func hasConsolePair(line, key, want string) bool {
	for _, candidate := range []string{key + "=" + want, key + "=" + `"` + want + `"`} {
		idx := 0
		for {
			pos := strings.Index(line[idx:], candidate)
			if pos < 0 {
				break
			}
			start := idx + pos
			end := start + len(candidate)
			if (start == 0 || line[start-1] == ' ') && (end == len(line) || line[end] == ' ') {
				return true
			}
			idx = end
		}
	}
	return false
}
