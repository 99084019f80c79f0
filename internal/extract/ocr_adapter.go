package extract

import (
	"context"

	"github.com/clinops/docintake/constants"
	"github.com/clinops/docintake/internal/fields"
	"github.com/clinops/docintake/internal/ocr"
)

// OCRAdapter bridges the ocr package into the TextExtractor contract.
type OCRAdapter struct {
	e *ocr.Extractor
}

func NewOCRAdapter(e *ocr.Extractor) *OCRAdapter {
	return &OCRAdapter{e: e}
}

func (a *OCRAdapter) Extract(ctx context.Context, path string, format constants.Format) (TextExtractionResult, error) {
	r, err := a.e.Extract(ctx, path, format)
	return TextExtractionResult{
		Text:     r.Text,
		Pages:    r.Pages,
		Format:   r.Format,
		Method:   r.Method,
		Language: r.Language,
		Duration: r.Duration,
		Warnings: r.Warnings,
	}, err
}

// RuleFieldExtractor is the deterministic pattern-rule implementation of
// FieldExtractor.
type RuleFieldExtractor struct{}

func (RuleFieldExtractor) ExtractFields(text string) map[fields.FieldName]fields.Match {
	return fields.Extract(text)
}
