package entity

import (
	"path/filepath"
	"time"

	"github.com/paperpoint/invoice-extractor/constants"
)

// Record is the per-document extraction outcome. Fields maps output column
// keys to extracted values; an absent key exports as an empty cell.
type Record struct {
	FileName string
	Path     string
	DocType  string // constants.DocTypeText | constants.DocTypeScanned
	Method   string // "geometry" | "llm" | "fallback"
	Status   constants.RecordStatus
	Fields   map[string]string
	Warnings []string
	Duration time.Duration
}

func NewRecord(path string) *Record {
	return &Record{
		FileName: filepath.Base(path),
		Path:     path,
		Status:   constants.RecordStatusOK,
		Fields:   map[string]string{},
	}
}

// Set stores a field value; empty values are kept out of the map so absence
// stays distinguishable from an extracted empty string.
func (r *Record) Set(key, value string) {
	if value == "" {
		return
	}
	r.Fields[key] = value
}

// Warn appends a warning and downgrades OK to PARTIAL. SKIPPED is terminal.
func (r *Record) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.Status == constants.RecordStatusOK {
		r.Status = constants.RecordStatusPartial
	}
}

// Skip marks the record unprocessable.
func (r *Record) Skip(msg string) {
	r.Warnings = append(r.Warnings, msg)
	r.Status = constants.RecordStatusSkipped
}

// Row projects the record onto the given column order, File_Name first.
func (r *Record) Row(keys []string) []string {
	row := make([]string, 0, len(keys)+1)
	row = append(row, r.FileName)
	for _, k := range keys {
		row = append(row, r.Fields[k])
	}
	return row
}
