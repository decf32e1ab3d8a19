package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ErrNoJSON is returned when no JSON object or array can be located.
var ErrNoJSON = errors.New("no JSON value found")

// StripFences removes a surrounding markdown code fence (```json ... ```)
// and trims whitespace.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSON locates the first '{' or '[' and the last matching closer and
// returns that span. Prose around the value is dropped.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", ErrNoJSON
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

// DecodeObject parses a single JSON object. Numbers are kept as json.Number
// so prices and counts round-trip unchanged.
func DecodeObject(text string) (map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	if obj == nil {
		return nil, errors.New("JSON value is not an object")
	}
	return obj, nil
}

// Compact serializes v without HTML escaping, for heuristics and prompts.
func Compact(v interface{}) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}
