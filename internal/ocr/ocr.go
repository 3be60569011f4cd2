package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"escrituras/internal/common"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language string // tesseract language, default "spa"
	DPI      int    // rasterization DPI for scanned PDFs, default 300
	MaxPages int    // 0 = no limit

	TessdataDir string
	PSM         int // e.g., 6 for a uniform block of text
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr"
	Language string
	Duration time.Duration
	Warnings []string
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
	if cfg.Language == "" {
		cfg.Language = "spa"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{log: logger}, logger: logger}
}

// Extract acquires the text of a PDF. The selectable-text path is tried first
// and wins whenever it yields non-empty text; scanned documents fall through
// to page rendering plus OCR. Both paths empty means the document has no
// extractable text and the pipeline must abort.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		e.logger.Error("unsupported extension", "path", path, "ext", ext)
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	var warns []string
	text, pages, w, err := e.pdfToText(ctx, path)
	warns = append(warns, w...)
	if err == nil && strings.TrimSpace(text) != "" {
		e.logger.Debug("direct text extraction succeeded", "path", path, "pages", pages, "bytes", len(text))
		return Result{
			Text:     text,
			Pages:    pages,
			Method:   "pdf-text",
			Language: e.cfg.Language,
			Duration: time.Since(start),
			Warnings: warns,
		}, nil
	}
	if err != nil {
		warns = append(warns, err.Error())
		e.logger.Warn("direct text extraction failed, falling back to ocr", "path", path, "error", err)
	}

	text, pages, w, err = e.pdfToOCR(ctx, path)
	warns = append(warns, w...)
	if err != nil {
		e.logger.Error("ocr extraction failed", "path", path, "error", err)
		return Result{Warnings: warns}, common.WrapError(common.ErrNoExtractableText, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		e.logger.Error("ocr produced no text", "path", path, "pages", pages)
		return Result{Pages: pages, Warnings: warns}, common.ErrNoExtractableText
	}

	return Result{
		Text:     text,
		Pages:    pages,
		Method:   "pdf-ocr",
		Language: e.cfg.Language,
		Duration: time.Since(start),
		Warnings: warns,
	}, nil
}
