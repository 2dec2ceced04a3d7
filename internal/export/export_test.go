package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/paperpoint/invoice-extractor/internal/entity"
)

func sampleRecords() []*entity.Record {
	a := entity.NewRecord("/in/jan.pdf")
	a.Set("Invoice_No", "PP240042")
	a.Set("Total", "₹ 1,180.00")

	b := entity.NewRecord("/in/feb.pdf")
	b.Skip("no text layer")

	return []*entity.Record{a, b}
}

var keys = []string{"Invoice_No", "Bill_From", "Total"}

func TestWriteCSV_ColumnOrderAndAbsentFields(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, keys, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], []string{"File_Name", "Invoice_No", "Bill_From", "Total"}) {
		t.Errorf("header = %v", rows[0])
	}
	if !reflect.DeepEqual(rows[1], []string{"jan.pdf", "PP240042", "", "₹ 1,180.00"}) {
		t.Errorf("row 1 = %v", rows[1])
	}
	// skipped document still appears, identified by file name only
	if !reflect.DeepEqual(rows[2], []string{"feb.pdf", "", "", ""}) {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestXLSXBytes_RoundTrip(t *testing.T) {
	b, err := XLSXBytes(keys, sampleRecords(), nil)
	if err != nil {
		t.Fatalf("XLSXBytes: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	got, err := f.GetCellValue("Invoices", "A2")
	if err != nil || got != "jan.pdf" {
		t.Errorf("A2 = %q (%v)", got, err)
	}
	got, _ = f.GetCellValue("Invoices", "B1")
	if got != "Invoice_No" {
		t.Errorf("B1 = %q", got)
	}
	got, _ = f.GetCellValue("Invoices", "D2")
	if got != "₹ 1,180.00" {
		t.Errorf("D2 = %q", got)
	}
	got, _ = f.GetCellValue("Invoices", "B3")
	if got != "" {
		t.Errorf("B3 = %q", got)
	}
}
