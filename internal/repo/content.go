package repo

import (
	"encoding/base64"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UndecodableContent replaces any payload that is not valid base64 UTF-8 text,
// so one malformed file never aborts an analysis.
const UndecodableContent = "Unable to decode file content."

// DecodeContent decodes a contents-API payload. GitHub wraps the base64 body
// at 60 columns, so ASCII whitespace is ignored.
func DecodeContent(b64 string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, b64)
	raw, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return UndecodableContent
	}
	if !utf8.Valid(raw) {
		return UndecodableContent
	}
	return string(raw)
}

// EncodeContent is the inverse of DecodeContent.
func EncodeContent(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
