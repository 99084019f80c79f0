package ocr

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/clinops/docintake/constants"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir string

	PSM int // 6 = uniform block of text (clinical forms scan well with it)
	OEM int // 3 = default engine mode
}

// ExtractionResult is the output of text acquisition. Either the full text of
// the document is returned or an error; there are no partial results.
type ExtractionResult struct {
	Text     string
	Pages    int
	Format   constants.Format
	Method   string // "pdf-ocr" | "image-ocr" | "docx-text" | "plain-text"
	Language string
	Duration time.Duration
	Warnings []string
}

// Extractor turns a file of a declared format into text. For PDF and IMAGE it
// shells out to pdftoppm/tesseract through the Runner; DOCX and TEXT are read
// directly.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.OEM <= 0 {
		cfg.OEM = 3
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// WithRunner replaces the command runner. Tests use this to stub the
// pdftoppm/tesseract binaries.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract acquires the full text of the file at path according to the declared
// format. It fails with ErrUnsupportedFormat for unknown formats and with an
// *AcquisitionError when decoding or OCR fails.
func (e *Extractor) Extract(ctx context.Context, path string, format constants.Format) (ExtractionResult, error) {
	start := time.Now()
	e.logger.Debug("starting text acquisition", "path", path, "format", format)

	var (
		res ExtractionResult
		err error
	)
	switch format {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	case constants.DOCX:
		res, err = e.extractDocx(path)
	case constants.TEXT:
		res, err = e.extractText(path)
	default:
		e.logger.Error("unsupported format", "format", format)
		return ExtractionResult{}, ErrUnsupportedFormat
	}
	if err != nil {
		return res, err
	}

	res.Text = Normalize(res.Text)
	res.Format = format
	res.Duration = time.Since(start)
	return res, nil
}

func (e *Extractor) tesseractArgs(path string) []string {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang,
		"--psm", strconv.Itoa(e.cfg.PSM), "--oem", strconv.Itoa(e.cfg.OEM)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}
