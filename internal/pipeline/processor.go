package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paperpoint/invoice-extractor/internal/entity"
)

// Extraction modes selectable per run.
const (
	ModeGeometry = "geometry"
	ModeLLM      = "llm"
)

// Processor routes each document through the selected stage and isolates
// per-document failures: a document that errors or panics becomes a SKIPPED
// record instead of aborting the batch.
type Processor struct {
	logger     *slog.Logger
	geometry   *GeometryStage
	generative *GenerativeStage
	mode       string
}

func NewProcessor(logger *slog.Logger, geometry *GeometryStage, generative *GenerativeStage, mode string) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch mode {
	case ModeGeometry:
		if geometry == nil {
			return nil, fmt.Errorf("geometry mode requires a geometry stage")
		}
	case ModeLLM:
		if generative == nil {
			return nil, fmt.Errorf("llm mode requires a generative stage")
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	return &Processor{logger: logger, geometry: geometry, generative: generative, mode: mode}, nil
}

func (p *Processor) Mode() string { return p.mode }

// Keys returns the output column order for the selected mode.
func (p *Processor) Keys() []string {
	if p.mode == ModeGeometry {
		return p.geometry.Keys()
	}
	return p.generative.Keys()
}

// ProcessFile never returns an error for document-level failures; the
// outcome is always a record whose status tells the story.
func (p *Processor) ProcessFile(ctx context.Context, path string) *entity.Record {
	start := time.Now()
	p.logger.Debug("processor.doc.start", "path", path, "mode", p.mode)

	rec, err := p.run(ctx, path)
	if err != nil {
		// rec is always non-nil: the stages build it before they can fail.
		rec.Skip(err.Error())
		rec.Duration = time.Since(start)
		p.logger.Error("processor.doc.skipped", "file", rec.FileName, "error", err)
		return rec
	}
	p.logger.Debug("processor.doc.done",
		"file", rec.FileName,
		"status", string(rec.Status),
		"elapsed_ms", rec.Duration.Milliseconds(),
	)
	return rec
}

// run wraps the stage call with a recover so a malformed PDF that panics the
// parser poisons only its own record.
func (p *Processor) run(ctx context.Context, path string) (rec *entity.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rec == nil {
				rec = entity.NewRecord(path)
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if p.mode == ModeGeometry {
		return p.geometry.Run(ctx, path)
	}
	return p.generative.Run(ctx, path)
}
