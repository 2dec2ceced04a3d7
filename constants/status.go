package constants

// RecordStatus is the canonical per-document outcome stored with each record.
type RecordStatus string

// Stable values (store these exact strings in the DB).
const (
	RecordStatusOK      RecordStatus = "OK"      // fields extracted
	RecordStatusPartial RecordStatus = "PARTIAL" // extracted with warnings (e.g. tax arithmetic mismatch)
	RecordStatusSkipped RecordStatus = "SKIPPED" // document could not be processed
)
