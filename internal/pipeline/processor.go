// Package pipeline sequences text acquisition, field extraction and
// confidence scoring for a single document. The processor holds no mutable
// state, so one instance may serve concurrent requests.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/clinops/docintake/constants"
	"github.com/clinops/docintake/internal/extract"
	"github.com/clinops/docintake/internal/fields"
	"github.com/clinops/docintake/internal/ocr"
)

// Request identifies one document to process. The file at Path is read but
// never modified.
type Request struct {
	Path   string
	Format constants.Format
}

// Field is one extracted value with its confidence and raw-match span.
type Field struct {
	Name       fields.FieldName `json:"name"`
	Value      string           `json:"value"`
	Confidence float32          `json:"confidence"`
	Start      int              `json:"start"`
	End        int              `json:"end"`
}

// Result aggregates the raw text and scored fields for one document.
// Success is true whenever acquisition succeeded — zero extracted fields is a
// normal outcome, not an error.
type Result struct {
	Text       string        `json:"extracted_text"`
	Pages      int           `json:"pages"`
	Method     string        `json:"method"`
	Fields     []Field       `json:"fields"`
	Success    bool          `json:"success"`
	Duration   time.Duration `json:"-"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// Config holds processor behavior knobs.
type Config struct {
	AcquireTimeout time.Duration // 0 = no deadline
}

type Processor struct {
	cfg       Config
	text      extract.TextExtractor
	extractor extract.FieldExtractor
	logger    *slog.Logger
}

func NewProcessor(cfg Config, text extract.TextExtractor, fe extract.FieldExtractor, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if fe == nil {
		fe = extract.RuleFieldExtractor{}
	}
	return &Processor{cfg: cfg, text: text, extractor: fe, logger: logger}
}

// fieldOrder fixes the order fields appear in results, so repeated runs over
// the same content are bit-identical.
var fieldOrder = []fields.FieldName{
	fields.FieldFirstName,
	fields.FieldLastName,
	fields.FieldDateOfBirth,
}

// Process runs acquire -> extract -> score. Unsupported formats fail before
// acquisition is attempted; acquisition failures return an error and no
// partial result.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	if !constants.IsValidFormat(req.Format) {
		return nil, ocr.ErrUnsupportedFormat
	}

	if p.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	start := time.Now()
	acq, err := p.text.Extract(ctx, req.Path, req.Format)
	if err != nil {
		p.logger.Error("acquisition failed", "path", req.Path, "format", req.Format, "error", err)
		return nil, err
	}

	matches := p.extractor.ExtractFields(acq.Text)

	out := make([]Field, 0, len(matches))
	for _, name := range fieldOrder {
		m, ok := matches[name]
		if !ok {
			continue
		}
		out = append(out, Field{
			Name:       name,
			Value:      m.Value,
			Confidence: fields.Score(name, m),
			Start:      m.Start,
			End:        m.End,
		})
	}

	res := &Result{
		Text:     acq.Text,
		Pages:    acq.Pages,
		Method:   acq.Method,
		Fields:   out,
		Success:  true,
		Duration: time.Since(start),
		Warnings: acq.Warnings,
	}
	p.logger.Info("document processed",
		"path", req.Path,
		"format", req.Format,
		"pages", acq.Pages,
		"fields", len(out),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// IsUnsupportedFormat reports whether err is the unsupported-format failure.
func IsUnsupportedFormat(err error) bool {
	return errors.Is(err, ocr.ErrUnsupportedFormat)
}

// IsAcquisitionError reports whether err came from the decode/OCR stage.
func IsAcquisitionError(err error) bool {
	var ae *ocr.AcquisitionError
	return errors.As(err, &ae)
}
