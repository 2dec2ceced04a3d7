package entity

import "time"

// RunSummary aggregates a batch run. Found counts PDFs discovered under the
// input directory; Processed counts records that produced at least one field.
// Found == 0 and Processed == 0 are different failures and are reported as
// such by the CLI.
type RunSummary struct {
	Root      string
	Mode      string
	Found     int
	Processed int
	Partial   int
	Skipped   int
	StartedAt time.Time
	Duration  time.Duration
}
