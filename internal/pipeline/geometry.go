package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paperpoint/invoice-extractor/constants"
	"github.com/paperpoint/invoice-extractor/internal/entity"
	"github.com/paperpoint/invoice-extractor/internal/layout"
	"github.com/paperpoint/invoice-extractor/internal/pdfio"
)

// GeometryStage resolves configured fields from first-page word geometry.
// It only works on PDFs with a text layer; scanned documents are skipped so
// the caller can route them to the generative stage instead.
type GeometryStage struct {
	fields   []constants.FieldSpec
	labels   map[string]struct{}
	resolver *layout.Resolver
	logger   *slog.Logger
}

func NewGeometryStage(fields []constants.FieldSpec, th layout.Thresholds, logger *slog.Logger) *GeometryStage {
	if logger == nil {
		logger = slog.Default()
	}
	if len(fields) == 0 {
		fields = constants.GeometryFields
	}
	return &GeometryStage{
		fields:   fields,
		labels:   constants.LabelSet(fields),
		resolver: layout.NewResolver(fields, th),
		logger:   logger,
	}
}

// Keys returns the output column order for this stage's records.
func (g *GeometryStage) Keys() []string {
	return constants.Keys(g.fields)
}

func (g *GeometryStage) Run(ctx context.Context, path string) (*entity.Record, error) {
	start := time.Now()
	rec := entity.NewRecord(path)
	rec.Method = "geometry"

	if err := ctx.Err(); err != nil {
		return rec, err
	}

	docType, err := pdfio.Classify(path)
	if err != nil {
		return rec, fmt.Errorf("classify: %w", err)
	}
	rec.DocType = docType
	if docType == constants.DocTypeScanned {
		rec.Skip("no text layer")
		rec.Duration = time.Since(start)
		g.logger.Info("geometry.doc.skipped", "file", rec.FileName, "doc_type", docType)
		return rec, nil
	}

	page, err := pdfio.FirstPage(path)
	if err != nil {
		return rec, fmt.Errorf("first page: %w", err)
	}
	tokens := page.Words()

	for _, spec := range g.fields {
		labelTokens := layout.LocateLabel(tokens, spec.Label)
		if labelTokens == nil {
			g.logger.Debug("geometry.label.missing", "file", rec.FileName, "label", spec.Label)
			continue
		}
		raw := g.resolver.Resolve(page, labelTokens, spec)
		val := layout.Normalize(raw, spec.Kind, g.labels)
		rec.Set(spec.Key, val)
	}

	if len(rec.Fields) == 0 {
		rec.Warn("no fields resolved")
	}
	rec.Duration = time.Since(start)
	g.logger.Info("geometry.doc.ok",
		"file", rec.FileName,
		"fields", len(rec.Fields),
		"elapsed_ms", rec.Duration.Milliseconds(),
	)
	return rec, nil
}
