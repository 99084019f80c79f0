package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinops/docintake/constants"
	"github.com/clinops/docintake/internal/extract"
	"github.com/clinops/docintake/internal/fields"
	"github.com/clinops/docintake/internal/ocr"
)

type stubText struct {
	text string
	err  error
}

func (s stubText) Extract(ctx context.Context, path string, format constants.Format) (extract.TextExtractionResult, error) {
	if s.err != nil {
		return extract.TextExtractionResult{}, s.err
	}
	return extract.TextExtractionResult{Text: s.text, Pages: 1, Format: format, Method: "plain-text"}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProcessor(text stubText) *Processor {
	return NewProcessor(Config{}, text, nil, testLogger())
}

func TestProcessExtractsOrderedFields(t *testing.T) {
	p := newTestProcessor(stubText{text: "Patient Name: Jane Doe\nDOB: 01/15/1990\n"})

	res, err := p.Process(context.Background(), Request{Path: "a.txt", Format: constants.TEXT})

	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, res.Fields, 3)
	assert.Equal(t, fields.FieldFirstName, res.Fields[0].Name)
	assert.Equal(t, fields.FieldLastName, res.Fields[1].Name)
	assert.Equal(t, fields.FieldDateOfBirth, res.Fields[2].Name)
	assert.Equal(t, "Jane", res.Fields[0].Value)
	assert.Equal(t, "Doe", res.Fields[1].Value)
	assert.Equal(t, "01/15/1990", res.Fields[2].Value)
	for _, f := range res.Fields {
		assert.GreaterOrEqual(t, f.Confidence, float32(0.9))
		assert.LessOrEqual(t, f.Confidence, float32(1))
	}
}

func TestProcessEmptyTextSucceedsWithZeroFields(t *testing.T) {
	p := newTestProcessor(stubText{text: ""})

	res, err := p.Process(context.Background(), Request{Path: "blank.txt", Format: constants.TEXT})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Fields)
}

func TestProcessUnsupportedFormatFailsBeforeAcquisition(t *testing.T) {
	boom := stubText{err: errors.New("must not be called")}
	p := newTestProcessor(boom)

	res, err := p.Process(context.Background(), Request{Path: "x.bin", Format: constants.Format("BIN")})

	assert.Nil(t, res)
	assert.True(t, IsUnsupportedFormat(err))
}

func TestProcessAcquisitionErrorReturnsNoResult(t *testing.T) {
	acqErr := &ocr.AcquisitionError{Op: "tesseract", Err: errors.New("exit status 1")}
	p := newTestProcessor(stubText{err: acqErr})

	res, err := p.Process(context.Background(), Request{Path: "scan.png", Format: constants.IMAGE})

	assert.Nil(t, res)
	assert.True(t, IsAcquisitionError(err))
	assert.False(t, IsUnsupportedFormat(err))
}

func TestProcessDeterministic(t *testing.T) {
	p := newTestProcessor(stubText{text: "Patient Name: Jane Doe\nDOB: 01/15/1990\n"})

	first, err := p.Process(context.Background(), Request{Path: "a.txt", Format: constants.TEXT})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := p.Process(context.Background(), Request{Path: "a.txt", Format: constants.TEXT})
		require.NoError(t, err)
		assert.Equal(t, first.Fields, again.Fields)
		assert.Equal(t, first.Text, again.Text)
	}
}
