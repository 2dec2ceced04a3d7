package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/paperpoint/invoice-extractor/constants"
	"github.com/paperpoint/invoice-extractor/internal/entity"
	"github.com/paperpoint/invoice-extractor/internal/extract"
	"github.com/paperpoint/invoice-extractor/internal/fallback"
	"github.com/paperpoint/invoice-extractor/internal/llm"
	"github.com/paperpoint/invoice-extractor/internal/pdfio"
	"github.com/paperpoint/invoice-extractor/internal/tax"
)

// BulkTextMaxChars caps the document text handed to the model.
const BulkTextMaxChars = 15000

const gstinLength = 15

// GenerativeStage extracts fields with the LLM and repairs weak spots with
// regex fallbacks. Scanned PDFs are routed through OCR first; a failed model
// call degrades to the fallback extractors alone rather than losing the
// document.
type GenerativeStage struct {
	extractor llm.FieldExtractor
	ocr       extract.TextExtractor
	maxChars  int
	logger    *slog.Logger
}

func NewGenerativeStage(fe llm.FieldExtractor, ocr extract.TextExtractor, maxChars int, logger *slog.Logger) *GenerativeStage {
	if logger == nil {
		logger = slog.Default()
	}
	if maxChars <= 0 {
		maxChars = BulkTextMaxChars
	}
	return &GenerativeStage{extractor: fe, ocr: ocr, maxChars: maxChars, logger: logger}
}

// Keys returns the output column order for this stage's records.
func (g *GenerativeStage) Keys() []string {
	return constants.GenerativeFields
}

func (g *GenerativeStage) Run(ctx context.Context, path string) (*entity.Record, error) {
	start := time.Now()
	rec := entity.NewRecord(path)
	rec.Method = "llm"

	text, err := g.documentText(ctx, path, rec)
	if err != nil {
		return rec, err
	}
	if strings.TrimSpace(text) == "" {
		rec.Skip("no extractable text")
		rec.Duration = time.Since(start)
		return rec, nil
	}

	fields, _, err := g.extractor.ExtractFields(ctx, llm.ExtractRequest{
		Text:         text,
		FilenameHint: rec.FileName,
	})
	if err != nil {
		// Model unavailable or returned garbage: the regex extractors still
		// recover the identity fields.
		rec.Method = "fallback"
		rec.Warn(fmt.Sprintf("llm extraction failed: %v", err))
		g.logger.Warn("generative.llm.degraded", "file", rec.FileName, "error", err)
		fields = llm.InvoiceFields{}
	}

	g.repair(&fields, text, rec)

	cluster := tax.Cluster{
		TaxableValue: fields.TaxableValue,
		CGST:         fields.CGST,
		SGST:         fields.SGST,
		IGST:         fields.IGST,
		TotalValue:   fields.TotalValue,
	}
	for _, w := range tax.Reconcile(&cluster) {
		rec.Warn(w)
	}

	rec.Set("Invoice_no", fields.InvoiceNo)
	rec.Set("Date", fields.Date)
	rec.Set("Buyer_Name", fields.BuyerName)
	rec.Set("Buyer_GSTIN", fields.BuyerGSTIN)
	rec.Set("Buyer_State", fields.BuyerState)
	setPtr(rec, "Taxable_Value", cluster.TaxableValue)
	setPtr(rec, "CGST", cluster.CGST)
	setPtr(rec, "SGST", cluster.SGST)
	setPtr(rec, "IGST", cluster.IGST)
	setPtr(rec, "Total_Value", cluster.TotalValue)

	if len(rec.Fields) == 0 {
		rec.Skip("no fields extracted")
	}
	rec.Duration = time.Since(start)
	g.logger.Info("generative.doc.done",
		"file", rec.FileName,
		"method", rec.Method,
		"status", string(rec.Status),
		"fields", len(rec.Fields),
		"elapsed_ms", rec.Duration.Milliseconds(),
	)
	return rec, nil
}

// documentText classifies the PDF and pulls page-marked text, through OCR
// for scanned documents.
func (g *GenerativeStage) documentText(ctx context.Context, path string, rec *entity.Record) (string, error) {
	docType, err := pdfio.Classify(path)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	rec.DocType = docType

	if docType == constants.DocTypeText {
		text, err := pdfio.BulkText(path, g.maxChars)
		if err != nil {
			return "", fmt.Errorf("bulk text: %w", err)
		}
		return text, nil
	}

	if g.ocr == nil {
		return "", fmt.Errorf("scanned pdf and no ocr extractor configured")
	}
	res, err := g.ocr.Extract(ctx, path)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	for _, w := range res.Warnings {
		rec.Warn(w)
	}
	return truncate(pageMark(res.Text), g.maxChars), nil
}

// repair fills identity fields the model missed or mangled from the raw text.
// A GSTIN that is not exactly 15 characters is treated as mangled.
func (g *GenerativeStage) repair(fields *llm.InvoiceFields, text string, rec *entity.Record) {
	if len(fields.BuyerGSTIN) != gstinLength {
		if id, ok := fallback.CounterpartyTaxID(text); ok {
			if fields.BuyerGSTIN != "" {
				rec.Warn(fmt.Sprintf("buyer gstin %q replaced by pattern match", fields.BuyerGSTIN))
			}
			fields.BuyerGSTIN = id
		} else if fields.BuyerGSTIN != "" {
			rec.Warn(fmt.Sprintf("buyer gstin %q has wrong length", fields.BuyerGSTIN))
		}
	}
	if fields.InvoiceNo == "" {
		if no, ok := fallback.InvoiceNumber(text); ok {
			fields.InvoiceNo = no
		}
	}
	if fields.Date == "" {
		if d, ok := fallback.Date(text); ok {
			fields.Date = d
		}
	}
}

func setPtr(rec *entity.Record, key string, v *string) {
	if v != nil {
		rec.Set(key, *v)
	}
}

// pageMark rewrites form-feed page breaks into the marker format the prompt
// describes.
func pageMark(text string) string {
	pages := strings.Split(text, "\f")
	if len(pages) == 1 {
		return "--- PAGE 1 ---\n" + text
	}
	var b strings.Builder
	for i, p := range pages {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- PAGE %d ---\n%s", i+1, p)
	}
	return b.String()
}

// truncate cuts at max bytes, backing up to a rune boundary so the model
// never sees a split multibyte character.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
