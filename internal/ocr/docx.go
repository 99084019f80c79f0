package ocr

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// extractDocx pulls paragraph text out of the OOXML container in document
// order. Table cell text is included because cells wrap ordinary paragraphs.
func (e *Extractor) extractDocx(path string) (ExtractionResult, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return ExtractionResult{}, newAcquisitionError("docx", err, "not a zip container")
	}
	defer r.Close()

	var doc *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return ExtractionResult{}, newAcquisitionError("docx", errors.New("word/document.xml missing"), path)
	}

	rc, err := doc.Open()
	if err != nil {
		return ExtractionResult{}, newAcquisitionError("docx", err, "open document.xml")
	}
	defer rc.Close()

	text, err := docxParagraphs(rc)
	if err != nil {
		return ExtractionResult{}, newAcquisitionError("docx", err, "parse document.xml")
	}

	return ExtractionResult{
		Text:   text,
		Pages:  1,
		Method: "docx-text",
	}, nil
}

// docxParagraphs streams document.xml and joins non-empty paragraphs with
// newlines. Only w:t (text run) and w:p (paragraph) elements matter; every
// other element is skipped.
func docxParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out  []string
		para strings.Builder
		inT  bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inT = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inT = false
			case "p":
				if s := strings.TrimSpace(para.String()); s != "" {
					out = append(out, s)
				}
				para.Reset()
			}
		case xml.CharData:
			if inT {
				para.Write(t)
			}
		}
	}
	if s := strings.TrimSpace(para.String()); s != "" {
		out = append(out, s)
	}
	return strings.Join(out, "\n"), nil
}
