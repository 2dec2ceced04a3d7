package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/paperpoint/invoice-extractor/constants"
	"github.com/paperpoint/invoice-extractor/internal/async"
	"github.com/paperpoint/invoice-extractor/internal/common"
	"github.com/paperpoint/invoice-extractor/internal/entity"
	"github.com/paperpoint/invoice-extractor/internal/export"
	"github.com/paperpoint/invoice-extractor/internal/extract"
	"github.com/paperpoint/invoice-extractor/internal/ingest"
	"github.com/paperpoint/invoice-extractor/internal/layout"
	"github.com/paperpoint/invoice-extractor/internal/llm/groq"
	"github.com/paperpoint/invoice-extractor/internal/ocr"
	"github.com/paperpoint/invoice-extractor/internal/pipeline"
	"github.com/paperpoint/invoice-extractor/internal/store"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir   = flag.String("dir", "", "directory of invoice PDFs to process (required)")
		out   = flag.String("out", "", "output CSV path (default <dir parent>/invoices.csv)")
		xlsx  = flag.String("xlsx", "", "also write an XLSX workbook to this path (optional)")
		mode  = flag.String("mode", pipeline.ModeGeometry, "extraction mode: geometry | llm")
		watch = flag.Bool("watch", false, "keep running and process PDFs as they land in the directory")
		inmem = flag.Bool("inmem", false, "use an in-memory SQLite database")
		debug = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "invoices.csv")
	}

	// .env is optional; the environment wins either way.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if err := cfg.Validate(*mode); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN
	if *inmem {
		dsn = "file::memory:?cache=shared"
	}
	st, err := store.Open(ctx, store.Config{
		DSN:             dsn,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	processor, err := buildProcessor(cfg, *mode, logger)
	if err != nil {
		logger.Error("failed to build processor", "error", err)
		os.Exit(1)
	}

	paths, stats, err := ingest.ScanDirectory(*dir, true)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete",
		"dir", *dir, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)

	if len(paths) == 0 && !*watch {
		printError("No PDF files found in %s\n", *dir)
		os.Exit(1)
	}

	runID, err := st.CreateRun(ctx, *dir, *mode, len(paths))
	if err != nil {
		logger.Error("failed to create run", "error", err)
		os.Exit(1)
	}

	startedAt := time.Now()
	pool := async.NewProcessorPool(processor, logger,
		async.WithWorkers(cfg.Batch.Workers),
		async.WithProcessTimeout(cfg.Batch.ProcessTimeout),
	)
	recs := pool.ProcessBatch(ctx, paths)

	if err := st.SaveRecords(ctx, runID, recs); err != nil {
		logger.Error("failed to save records", "error", err)
		os.Exit(1)
	}

	if *watch {
		recs = watchLoop(ctx, *dir, processor, st, runID, recs, processor.Keys(), *out, *xlsx, logger)
	}

	// Every record corresponds to one discovered document, including any that
	// arrived during a watch session.
	sum := summarize(*dir, *mode, len(recs), startedAt, recs)
	if err := st.FinishRun(ctx, runID, sum); err != nil {
		logger.Error("failed to finish run", "error", err)
	}

	if err := writeOutputs(*out, *xlsx, processor.Keys(), recs, logger); err != nil {
		logger.Error("failed to write outputs", "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"run_id", runID,
		"found", sum.Found,
		"processed", sum.Processed,
		"partial", sum.Partial,
		"skipped", sum.Skipped,
		"elapsed_ms", sum.Duration.Milliseconds(),
		"output", *out,
	)
	fmt.Printf("Processed %d of %d invoices (%d partial, %d skipped)\n",
		sum.Processed, sum.Found, sum.Partial, sum.Skipped)
	fmt.Printf("Output: %s\n", *out)

	if sum.Processed == 0 {
		printError("No invoices could be processed\n")
		os.Exit(1)
	}
}

func buildProcessor(cfg *common.Config, mode string, logger *slog.Logger) (*pipeline.Processor, error) {
	th := layout.Thresholds{
		RightGap:      cfg.Geometry.RightGap,
		RightMaxWidth: cfg.Geometry.RightMaxWidth,
		BelowGap:      cfg.Geometry.BelowGap,
		BelowHeight:   cfg.Geometry.BelowHeight,
		BelowMaxWidth: cfg.Geometry.BelowMaxWidth,
		ColumnGap:     cfg.Geometry.ColumnGap,
		ColumnMaxDrop: cfg.Geometry.ColumnMaxDrop,
		ColumnDrift:   cfg.Geometry.ColumnDrift,
	}
	geometry := pipeline.NewGeometryStage(constants.GeometryFields, th, logger)

	var generative *pipeline.GenerativeStage
	if mode == pipeline.ModeLLM {
		client := groq.NewClient(groq.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		extractor := ocr.NewExtractor(ocr.Config{
			Pdftotext:           cfg.OCR.Pdftotext,
			Pdftoppm:            cfg.OCR.Pdftoppm,
			Tesseract:           cfg.OCR.Tesseract,
			TesseractLang:       cfg.OCR.Lang,
			DPI:                 cfg.OCR.DPI,
			MaxPages:            cfg.OCR.MaxPages,
			TessdataDir:         cfg.OCR.TessdataDir,
			EnableTSVConfidence: cfg.OCR.EnableTSVConfidence,
			MinTextChars:        cfg.OCR.MinTextChars,
			PSM:                 cfg.OCR.PSM,
			OEM:                 cfg.OCR.OEM,
		}, logger)
		generative = pipeline.NewGenerativeStage(client, extract.NewOCRAdapter(extractor, logger), cfg.LLM.MaxChars, logger)
	}

	return pipeline.NewProcessor(logger, geometry, generative, mode)
}

// watchLoop processes PDFs as they land in the drop folder until interrupted,
// rewriting the outputs after each document so they are always current.
func watchLoop(ctx context.Context, dir string, proc *pipeline.Processor, st *store.Store,
	runID string, recs []*entity.Record, keys []string, out, xlsx string, logger *slog.Logger) []*entity.Record {

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:       dir,
		Debounce:   500 * time.Millisecond,
		SkipHidden: true,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		return recs
	}
	logger.Info("watching for new invoices", "dir", dir)

	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		seen[r.Path] = struct{}{}
	}

	for {
		select {
		case <-ctx.Done():
			return recs
		case err, ok := <-errs:
			if ok {
				logger.Error("watcher error", "error", err)
			}
		case path, ok := <-events:
			if !ok {
				return recs
			}
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}

			rec := proc.ProcessFile(ctx, path)
			recs = append(recs, rec)
			if err := st.SaveRecords(ctx, runID, []*entity.Record{rec}); err != nil {
				logger.Error("failed to save record", "file", rec.FileName, "error", err)
			}
			if err := writeOutputs(out, xlsx, keys, recs, logger); err != nil {
				logger.Error("failed to refresh outputs", "error", err)
			}
		}
	}
}

func summarize(dir, mode string, found int, startedAt time.Time, recs []*entity.Record) entity.RunSummary {
	sum := entity.RunSummary{
		Root:      dir,
		Mode:      mode,
		Found:     found,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}
	for _, rec := range recs {
		if rec.Status == constants.RecordStatusSkipped {
			sum.Skipped++
			continue
		}
		if rec.Status == constants.RecordStatusPartial {
			sum.Partial++
		}
		if len(rec.Fields) > 0 {
			sum.Processed++
		}
	}
	return sum
}

func writeOutputs(out, xlsx string, keys []string, recs []*entity.Record, logger *slog.Logger) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := export.WriteCSV(f, keys, recs); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if xlsx != "" {
		b, err := export.XLSXBytes(keys, recs, logger)
		if err != nil {
			return err
		}
		if err := os.WriteFile(xlsx, b, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", xlsx, err)
		}
	}
	return nil
}
