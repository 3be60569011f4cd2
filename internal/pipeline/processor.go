package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"escrituras/internal/common"
	"escrituras/internal/entity"
	"escrituras/internal/llm"
	"escrituras/internal/ocr"
)

// TextAcquirer is the text-acquisition stage seam.
type TextAcquirer interface {
	Extract(ctx context.Context, path string) (ocr.Result, error)
}

// Processor coordinates text acquisition then schema-constrained extraction.
// The contract is all-or-nothing per document: any stage failure aborts the
// run and no partial record is ever returned.
type Processor struct {
	logger    *slog.Logger
	text      TextAcquirer
	extractor llm.DeedExtractor
}

func NewProcessor(logger *slog.Logger, text TextAcquirer, extractor llm.DeedExtractor) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, text: text, extractor: extractor}
}

// Process runs the pipeline for one PDF and returns the structured record.
func (p *Processor) Process(ctx context.Context, path string) (*entity.Escritura, error) {
	res, err := p.text.Extract(ctx, path)
	if err != nil {
		p.logger.Error("processor.text.failed", "path", path, "error", err)
		return nil, err
	}
	if strings.TrimSpace(res.Text) == "" {
		p.logger.Error("processor.text.empty", "path", path, "method", res.Method)
		return nil, common.ErrNoExtractableText
	}
	p.logger.Debug("processor text stage success",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
	)

	rec, _, err := p.extractor.ExtractDeed(ctx, llm.ExtractRequest{
		Text:         res.Text,
		FilenameHint: filepath.Base(path),
		Language:     res.Language,
	})
	if err != nil {
		p.logger.Error("processor.extract.failed", "path", path, "error", err)
		return nil, err
	}
	rec.Normalize()

	p.logger.Info("processor done",
		"path", path,
		"numero_escritura", rec.NumeroEscritura,
		"partes", len(rec.PartesIntervinientes),
	)
	return &rec, nil
}
