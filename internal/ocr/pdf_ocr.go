package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PageBreak separates page texts in the concatenated output of a multi-page
// PDF. Pages always appear in page order.
const PageBreak = "\n\f\n"

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	tmpDir, err := os.MkdirTemp("", "di-pp-*")
	if err != nil {
		return ExtractionResult{}, newAcquisitionError("mkdtemp", err, "")
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return ExtractionResult{}, wrapAcquisition(ctx, "pdftoppm", err, string(errb))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return ExtractionResult{}, newAcquisitionError("pdftoppm", ErrNoPages, "no page images rendered")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		txt, w, err := e.tesseractOCR(ctx, img)
		if err != nil {
			// One unreadable page fails the whole document: partial text
			// would silently misrepresent the source.
			return ExtractionResult{}, wrapAcquisition(ctx, "tesseract", err, img)
		}
		if b.Len() > 0 {
			b.WriteString(PageBreak)
		}
		b.WriteString(txt)
		warns = append(warns, w...)
	}

	return ExtractionResult{
		Text:     b.String(),
		Pages:    len(matches),
		Method:   "pdf-ocr",
		Language: e.cfg.TesseractLang,
		Warnings: warns,
	}, nil
}
