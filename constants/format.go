package constants

import "strings"

// Format is the declared type of an uploaded document. It drives which
// acquisition path runs.
type Format string

const (
	PDF   Format = "PDF"
	IMAGE Format = "IMAGE"
	DOCX  Format = "DOCX"
	TEXT  Format = "TEXT"
)

// Formats holds the allowed values for the format field on documents.
var Formats = []Format{PDF, IMAGE, DOCX, TEXT}

// AllowedExtensions holds the default allowed file extensions for uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"tiff": {},
	"tif":  {},
	"docx": {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its Format.
// Returns "" for extensions outside the supported set.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "png", "jpg", "jpeg", "tiff", "tif":
		return IMAGE
	case "docx":
		return DOCX
	case "txt":
		return TEXT
	default:
		return ""
	}
}

// FormatStrings returns the supported formats as strings.
func FormatStrings() []string {
	out := make([]string, len(Formats))
	for i, f := range Formats {
		out[i] = string(f)
	}
	return out
}

// IsValidFormat reports whether f is one of the four supported formats.
func IsValidFormat(f Format) bool {
	switch f {
	case PDF, IMAGE, DOCX, TEXT:
		return true
	}
	return false
}
