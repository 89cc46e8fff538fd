package records

// ProgressSink observes extraction progress per record type.
type ProgressSink interface {
	Start(recordType string)
	Advance(recordType string, count int)
	Done(recordType string, total int)
}

// NopProgress discards progress events.
type NopProgress struct{}

func (NopProgress) Start(string) {}
func (NopProgress) Advance(string, int) {}
func (NopProgress) Done(string, int) {}
