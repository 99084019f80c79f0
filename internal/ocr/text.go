package ocr

import (
	"errors"
	"os"
	"unicode/utf8"
)

func (e *Extractor) extractText(path string) (ExtractionResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{}, newAcquisitionError("read", err, path)
	}
	if !utf8.Valid(raw) {
		return ExtractionResult{}, newAcquisitionError("decode", errors.New("not valid UTF-8"), path)
	}

	return ExtractionResult{
		Text:   string(raw),
		Pages:  1,
		Method: "plain-text",
	}, nil
}
