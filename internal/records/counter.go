package records

import (
	"fmt"

	"ufdr/internal/report"
)

var idPrefixes = map[string]string{
	report.RecordMessages: "msg",
	report.RecordContacts: "contact",
	report.RecordCalls:    "call",
}

// Counter hands out 1-based sequence numbers per record type. It is not
// safe for concurrent use; each run owns its own Counter.
type Counter struct {
	counts map[string]int
}

// NewCounter returns a Counter starting at zero for every record type.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Next advances the counter for recordType and returns the new value.
func (c *Counter) Next(recordType string) int {
	c.counts[recordType]++
	return c.counts[recordType]
}

// Count returns how many values have been issued for recordType.
func (c *Counter) Count(recordType string) int {
	return c.counts[recordType]
}

// SyntheticID formats a generated record id such as msg-0001. Widths past
// four digits grow as needed.
func SyntheticID(recordType string, n int) string {
	prefix, ok := idPrefixes[recordType]
	if !ok {
		prefix = recordType
	}
	return fmt.Sprintf("%s-%04d", prefix, n)
}
