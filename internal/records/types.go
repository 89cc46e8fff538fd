package records

import (
	"fmt"

	"ufdr/internal/entities"
)

// MessageRecord is one line of messages.jsonl.
type MessageRecord struct {
	ID           string       `json:"id"`
	CaseID       string       `json:"case_id"`
	DeviceID     string       `json:"device_id"`
	TimestampUTC string       `json:"timestamp_utc"`
	Direction    Direction    `json:"direction"`
	Participants []string     `json:"participants"`
	Body         string       `json:"body"`
	Attachments  []string     `json:"attachments"`
	Entities     entities.Set `json:"entities"`
	RawSource    string       `json:"raw_source"`
	Hash         string       `json:"hash"`
}

// ContactRecord is one line of contacts.jsonl.
type ContactRecord struct {
	ID        string `json:"id"`
	CaseID    string `json:"case_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	RawSource string `json:"raw_source"`
}

// CallRecord is one line of calls.jsonl.
type CallRecord struct {
	ID           string `json:"id"`
	CaseID       string `json:"case_id"`
	TimestampUTC string `json:"timestamp_utc"`
	Caller       string `json:"caller"`
	Callee       string `json:"callee"`
	Duration     string `json:"duration"`
	RawSource    string `json:"raw_source"`
}

// Writer receives encoded records. *jsonl.Writer satisfies it.
type Writer interface {
	Write(v any) error
}

// AttachmentMissingError reports an attachment reference that did not
// resolve to a file under raw/.
type AttachmentMissingError struct {
	MessageID string
	Path      string
	Err       error
}

func (e *AttachmentMissingError) Error() string {
	return fmt.Sprintf("attachment %s for message %s: %v", e.Path, e.MessageID, e.Err)
}

func (e *AttachmentMissingError) Unwrap() error {
	return e.Err
}
