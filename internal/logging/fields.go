package logging

const (
	// FieldComponent identifies the subsystem emitting the log line.
	FieldComponent = "component"
	// FieldCaseID tags log lines with the case being ingested.
	FieldCaseID = "case_id"
	// FieldRunID tags log lines with the ingestion run identifier.
	FieldRunID = "run_id"
	// FieldRecordType tags log lines with messages, contacts, or calls.
	FieldRecordType = "record_type"
	// FieldRecordID tags log lines with a record identifier.
	FieldRecordID = "record_id"
	// FieldEventType is the machine-friendly event classifier.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step for an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)
