// Package parseutil holds small helpers shared by the per-manager parsers:
// tokenizing whitespace-column output and decoding JSON with a taxonomy
// error instead of a bare encoding/json error.
package parseutil

import (
	"encoding/json"
	"strings"

	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// Fields splits a line on runs of whitespace, matching the column layout
// most package manager CLIs emit for human-readable (non-JSON) output.
func Fields(line string) []string {
	return strings.Fields(line)
}

// Lines splits raw output into non-empty, trimmed lines.
func Lines(raw []byte) []string {
	var out []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// DecodeJSON decodes raw into v, wrapping any failure as a
// Parse.UnexpectedFormat error carrying a byte-offset when available.
func DecodeJSON(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		if se, ok := err.(*json.SyntaxError); ok {
			return pkgerr.Newf(pkgerr.KindParseUnexpectedFormat, "invalid JSON at offset %d: %v", se.Offset, err)
		}
		return pkgerr.New(pkgerr.KindParseUnexpectedFormat, err)
	}
	return nil
}

// MissingField returns a Parse.MissingField error naming the field and the
// record it was expected on, for parsers that hit a required-but-absent
// JSON/column value.
func MissingField(field, context string) error {
	return pkgerr.Newf(pkgerr.KindParseMissingField, "missing field %q in %s", field, context)
}
