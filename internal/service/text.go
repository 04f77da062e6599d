package service

import (
	"strings"
)

var recognizedTextReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\x00", "", "\f", "\n")

// cleanText drops invalid UTF-8 and control bytes that OCR engines and PDF
// text layers emit, so the text is safe to parse, log and return as JSON.
func cleanText(s string) string {
	return recognizedTextReplacer.Replace(strings.ToValidUTF8(s, ""))
}
