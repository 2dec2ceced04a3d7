package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/paperpoint/invoice-extractor/constants"
)

// MinTextChars is the default cutoff below which a pdftotext result is
// treated as an image-only PDF and sent through the raster+tesseract path.
const MinTextChars = 32

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir         string
	EnableTSVConfidence bool

	// MinTextChars overrides the text-layer cutoff; 0 uses the package default.
	MinTextChars int

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

type ExtractionResult struct {
	Text       string
	Pages      int
	DocType    string // constants.DocTypeText | constants.DocTypeScanned
	Method     string // "pdf-text" | "pdf-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = MinTextChars
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Extract pulls the text layer first and rasterizes only when the PDF turns
// out to be scanned. Invoices are PDF-only; anything else is rejected up
// front.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		e.logger.Error("unsupported extension", "path", path, "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	txt, pages, warns, err := e.pdfToText(ctx, path)
	if err == nil {
		txt = Normalize(txt)
		if len(txt) >= e.cfg.MinTextChars {
			return ExtractionResult{
				Text:       txt,
				Pages:      pages,
				DocType:    constants.DocTypeText,
				Method:     "pdf-text",
				Language:   e.cfg.TesseractLang,
				Duration:   time.Since(start),
				Warnings:   warns,
				Confidence: 1.0,
			}, nil
		}
		e.logger.Debug("text layer too thin, falling back to ocr",
			"path", path, "chars", len(txt), "cutoff", e.cfg.MinTextChars)
	} else {
		e.logger.Warn("pdftotext failed, falling back to ocr", "path", path, "error", err)
	}

	ocrTxt, ocrPages, ocrConf, ocrWarns, err := e.pdfToOCR(ctx, path)
	warns = append(warns, ocrWarns...)
	if err != nil {
		return ExtractionResult{DocType: constants.DocTypeScanned, Warnings: warns}, err
	}
	ocrTxt = Normalize(ocrTxt)

	return ExtractionResult{
		Text:       ocrTxt,
		Pages:      ocrPages,
		DocType:    constants.DocTypeScanned,
		Method:     "pdf-ocr",
		Language:   e.cfg.TesseractLang,
		Duration:   time.Since(start),
		Warnings:   warns,
		Confidence: blendConfidence(ocrConf, heuristicConfidence(ocrTxt)),
	}, nil
}

// blendConfidence weights the tesseract TSV mean higher when present and
// otherwise falls back to the heuristic alone.
func blendConfidence(ocrConf, heurConf float32) float32 {
	var conf float32
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	} else {
		conf = heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
