package constants

import "strings"

// AllowedExtensions holds the file extensions picked up by batch ingestion.
var AllowedExtensions = map[string]struct{}{
	"csv": {},
}

// Table export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
