package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoObject is returned by ExtractObject when the text has no JSON object.
var ErrNoObject = errors.New("jsonutil: no JSON object found")

// StripCodeFence removes Markdown code fences (``` and ```json) that models
// sometimes wrap around JSON output, then trims the result.
func StripCodeFence(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ExtractObject returns the outermost {...} span of s. Leading prose such as
// "Here is the JSON:" is dropped.
func ExtractObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return "", ErrNoObject
	}
	return s[start : end+1], nil
}

// UnmarshalLLM decodes a model reply into v. It strips fences first and, if
// that is not valid JSON, retries on the extracted object.
func UnmarshalLLM(content string, v any) error {
	clean := StripCodeFence(content)
	err := json.Unmarshal([]byte(clean), v)
	if err == nil {
		return nil
	}
	obj, xerr := ExtractObject(clean)
	if xerr != nil || obj == clean {
		return err
	}
	return json.Unmarshal([]byte(obj), v)
}

// MarshalNoEscape encodes v into JSON without escaping <, >, & into \u003c, etc.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalNoEscapeIndent is MarshalNoEscape with indentation.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
