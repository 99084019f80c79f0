package ocr

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinops/docintake/constants"
)

// fakeRunner stands in for the pdftoppm/tesseract binaries. For pdftoppm it
// writes page images under the output prefix; for tesseract it returns canned
// text keyed by the image basename.
type fakeRunner struct {
	pages        int
	pageTexts    map[string]string
	failTessOn   string
	pdftoppmErr  error
	tesseractErr error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if strings.Contains(name, "pdftoppm") {
		if f.pdftoppmErr != nil {
			return nil, []byte("render failed"), f.pdftoppmErr
		}
		prefix := args[len(args)-1]
		for i := 1; i <= f.pages; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}

	// tesseract <file> stdout ...
	img := args[0]
	if f.tesseractErr != nil {
		return nil, []byte("ocr failed"), f.tesseractErr
	}
	if f.failTessOn != "" && strings.Contains(img, f.failTessOn) {
		return nil, []byte("unreadable page"), errors.New("exit status 1")
	}
	if txt, ok := f.pageTexts[filepath.Base(img)]; ok {
		return []byte(txt), nil, nil
	}
	return []byte("some text"), nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExtractor(t *testing.T, r Runner) *Extractor {
	t.Helper()
	return NewExtractor(Config{}, testLogger()).WithRunner(r)
}

func TestExtractPDFJoinsPagesInOrder(t *testing.T) {
	runner := &fakeRunner{
		pages: 3,
		pageTexts: map[string]string{
			"page-1.png": "Alpha",
			"page-2.png": "Beta",
			"page-3.png": "Gamma",
		},
	}
	e := newTestExtractor(t, runner)

	res, err := e.Extract(context.Background(), "in.pdf", constants.PDF)

	require.NoError(t, err)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, constants.PDF, res.Format)
	assert.Equal(t, "Alpha"+PageBreak+"Beta"+PageBreak+"Gamma", res.Text)
}

func TestExtractPDFMaxPagesCap(t *testing.T) {
	runner := &fakeRunner{
		pages: 3,
		pageTexts: map[string]string{
			"page-1.png": "Alpha",
			"page-2.png": "Beta",
			"page-3.png": "Gamma",
		},
	}
	e := NewExtractor(Config{MaxPages: 2}, testLogger()).WithRunner(runner)

	res, err := e.Extract(context.Background(), "in.pdf", constants.PDF)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "Alpha"+PageBreak+"Beta", res.Text)
}

func TestExtractPDFNoPages(t *testing.T) {
	e := newTestExtractor(t, &fakeRunner{pages: 0})

	_, err := e.Extract(context.Background(), "empty.pdf", constants.PDF)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPages))
	var ae *AcquisitionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "pdftoppm", ae.Op)
}

func TestExtractPDFOnePageFailureFailsDocument(t *testing.T) {
	runner := &fakeRunner{pages: 3, failTessOn: "page-2"}
	e := newTestExtractor(t, runner)

	_, err := e.Extract(context.Background(), "in.pdf", constants.PDF)

	require.Error(t, err)
	var ae *AcquisitionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "tesseract", ae.Op)
}

func TestExtractPDFRenderFailure(t *testing.T) {
	e := newTestExtractor(t, &fakeRunner{pdftoppmErr: errors.New("exit status 1")})

	_, err := e.Extract(context.Background(), "broken.pdf", constants.PDF)

	require.Error(t, err)
	var ae *AcquisitionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "pdftoppm", ae.Op)
	assert.Contains(t, ae.Details, "render failed")
}

func TestExtractImage(t *testing.T) {
	runner := &fakeRunner{pageTexts: map[string]string{
		"scan.png": "Patient Name: Jane Doe\n______\nDOB: 01/15/1990",
	}}
	e := newTestExtractor(t, runner)

	res, err := e.Extract(context.Background(), "scan.png", constants.IMAGE)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, "image-ocr", res.Method)
	assert.Contains(t, res.Text, "Jane Doe")
	// box-noise lines are stripped
	assert.NotContains(t, res.Text, "______")
}

func TestExtractTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	e := newTestExtractor(t, &fakeRunner{tesseractErr: context.DeadlineExceeded})

	_, err := e.Extract(ctx, "scan.png", constants.IMAGE)

	require.Error(t, err)
	var ae *AcquisitionError
	require.True(t, errors.As(err, &ae))
	assert.True(t, ae.Timeout())
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := newTestExtractor(t, &fakeRunner{})

	_, err := e.Extract(context.Background(), "sound.wav", constants.Format("WAV"))

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("Patient Name: Jane Doe\r\nDOB: 01/15/1990\r\n"), 0o644))

	e := newTestExtractor(t, &fakeRunner{})
	res, err := e.Extract(context.Background(), path, constants.TEXT)

	require.NoError(t, err)
	assert.Equal(t, "plain-text", res.Method)
	assert.Equal(t, 1, res.Pages)
	// CRLF is normalized away
	assert.Equal(t, "Patient Name: Jane Doe\nDOB: 01/15/1990", res.Text)
}

func TestExtractPlainTextInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x41}, 0o644))

	e := newTestExtractor(t, &fakeRunner{})
	_, err := e.Extract(context.Background(), path, constants.TEXT)

	require.Error(t, err)
	var ae *AcquisitionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "decode", ae.Op)
}

func TestExtractDocx(t *testing.T) {
	path := writeDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Patient Name: Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t>DOB: </w:t></w:r><w:r><w:t>01/15/1990</w:t></w:r></w:p>
    <w:p></w:p>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>Order: imaging</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
  </w:body>
</w:document>`)

	e := newTestExtractor(t, &fakeRunner{})
	res, err := e.Extract(context.Background(), path, constants.DOCX)

	require.NoError(t, err)
	assert.Equal(t, "docx-text", res.Method)
	assert.Equal(t, "Patient Name: Jane Doe\nDOB: 01/15/1990\nOrder: imaging", res.Text)
}

func TestExtractDocxMissingDocumentXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	e := newTestExtractor(t, &fakeRunner{})
	_, err = e.Extract(context.Background(), path, constants.DOCX)

	require.Error(t, err)
	var ae *AcquisitionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "docx", ae.Op)
}

func TestNormalize(t *testing.T) {
	in := "a\tb\r\nc   d  \n\n\n\n\ne"
	assert.Equal(t, "a b\nc d\n\ne", Normalize(in))
}

func writeDocx(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}
