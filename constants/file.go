package constants

import "strings"

// PDFExtension is the only attachment type the batch considers.
const PDFExtension = ".pdf"

// Date and timestamp layouts used across extraction, routing and the dashboard.
const (
	DateLayout      = "02/01/2006"
	TimestampLayout = "02/01/2006 15:04:05"
)

// IsPDF reports whether a file name ends in the PDF extension, case-insensitively.
func IsPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), PDFExtension)
}
