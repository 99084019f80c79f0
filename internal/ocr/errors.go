package ocr

import (
	"context"
	"errors"
	"fmt"
)

// Common acquisition errors
var (
	// ErrUnsupportedFormat is returned when the declared format is not one of
	// PDF, IMAGE, DOCX, TEXT. No acquisition is attempted in that case.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrNoPages is returned when a PDF renders to zero page images.
	ErrNoPages = errors.New("document contains no renderable pages")
)

// AcquisitionError wraps a decode/OCR failure with the operation that failed.
type AcquisitionError struct {
	// Op is the operation that failed (e.g. "pdftoppm", "tesseract", "docx").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

func (e *AcquisitionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

func (e *AcquisitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// Timeout reports whether the acquisition failed because the caller-supplied
// deadline expired.
func (e *AcquisitionError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

func newAcquisitionError(op string, err error, details string) *AcquisitionError {
	return &AcquisitionError{Op: op, Err: err, Details: details}
}

// wrapAcquisition wraps err as an AcquisitionError unless it already is one.
// A context deadline takes precedence over whatever the failing command said.
func wrapAcquisition(ctx context.Context, op string, err error, details string) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	var ae *AcquisitionError
	if errors.As(err, &ae) {
		return err
	}
	return newAcquisitionError(op, err, details)
}
