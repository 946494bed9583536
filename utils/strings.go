package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UpperLabel upper-cases s for display, e.g. "webp" -> "WEBP".
func UpperLabel(s string) string {
	return cases.Upper(language.Und).String(s)
}

// NameBeforeDot returns the part of filename before the first dot.
// Example: "photo.final.png" -> "photo"
func NameBeforeDot(filename string) string {
	name, _, _ := strings.Cut(filename, ".")
	return name
}

// TextAfterLastDot returns the part of filename after the last dot, or the
// whole filename when it has no dot.
// Example: "photo.final.png" -> "png", "README" -> "README"
func TextAfterLastDot(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i+1:]
	}
	return filename
}
