// Package export renders batch records as CSV or XLSX. Column order is the
// configured field order with File_Name always first; a field the pipeline
// did not produce exports as an empty cell.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/paperpoint/invoice-extractor/internal/entity"
)

// Header returns the output columns for the given field keys.
func Header(keys []string) []string {
	return append([]string{"File_Name"}, keys...)
}

// WriteCSV streams records to w. Skipped records are included: a row with
// only the file name tells the operator which documents need a second look.
func WriteCSV(w io.Writer, keys []string, recs []*entity.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(keys)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range recs {
		if err := cw.Write(rec.Row(keys)); err != nil {
			return fmt.Errorf("write row for %s: %w", rec.FileName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
