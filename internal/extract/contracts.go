package extract

import (
	"context"
	"time"

	"github.com/clinops/docintake/constants"
	"github.com/clinops/docintake/internal/fields"
)

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string, format constants.Format) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Format   constants.Format
	Method   string // "pdf-ocr" | "image-ocr" | "docx-text" | "plain-text"
	Language string
	Duration time.Duration
	Warnings []string
}

// FieldExtractor is Stage 2: text -> field matches (pattern rules).
type FieldExtractor interface {
	ExtractFields(text string) map[fields.FieldName]fields.Match
}
