package constants

import "strings"

// PDFContentTypes holds the accepted MIME types for uploaded label sheets.
var PDFContentTypes = map[string]struct{}{
	"application/pdf":   {},
	"application/x-pdf": {},
}

// SheetExtensions holds the accepted spreadsheet extensions for expected-UPC uploads.
var SheetExtensions = map[string]struct{}{
	"xlsx": {},
	"xlsm": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsPDFName reports whether the filename looks like a PDF.
func IsPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
