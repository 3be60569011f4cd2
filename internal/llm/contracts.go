package llm

import (
	"context"

	"escrituras/internal/entity"
)

// ExtractRequest carries the acquired document text into the extractor.
type ExtractRequest struct {
	Text         string
	FilenameHint string
	Language     string
}

// DeedExtractor is the interface the pipeline depends on. A single call either
// yields a schema-conforming record or fails; no partial records are returned.
type DeedExtractor interface {
	ExtractDeed(ctx context.Context, req ExtractRequest) (entity.Escritura, []byte /*rawJSON*/, error)
}
