// Package validate turns raw request bodies into the narrowed field sets the
// record store accepts. Create payloads reject unknown fields and enforce
// required fields and defaults; update payloads accept any subset of the
// declared fields. Store-owned fields (id, createdAt) and forced ownership
// fields are never accepted from input.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// FieldError names one offending field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a structured validation failure.
type Error struct {
	Fields []FieldError `json:"fields"`
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *Error) orNil() *Error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// decodeStrict decodes a JSON body into dst, rejecting unknown fields and
// mistyped values with per-field errors.
func decodeStrict(r io.Reader, dst any) *Error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		verr := &Error{}
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			field := typeErr.Field
			if field == "" {
				field = "(body)"
			}
			verr.add(field, fmt.Sprintf("must be of type %s", typeErr.Type))
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			name := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			verr.add(name, "unknown field")
		default:
			verr.add("(body)", "malformed JSON")
		}
		return verr
	}

	// A second document after the first is malformed input.
	if dec.More() {
		verr := &Error{}
		verr.add("(body)", "unexpected trailing data")
		return verr
	}
	return nil
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func blank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}
