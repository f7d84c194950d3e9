package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// SchemaValidator validates a parsed struct after JSON decoding.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// DecodeStrict decodes raw model output into T. The whole text must be a
// single JSON value: unknown fields, trailing data, and surrounding prose
// are rejected. Schema-constrained decoding guarantees shape on the
// server side; we check it again here because the content is untrusted.
// If validator is non-nil, the decoded value is validated before return.
func DecodeStrict[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return zero, fmt.Errorf("%w: empty content", ErrInvalidOutput)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.DisallowUnknownFields()

	var result T
	if err := dec.Decode(&result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return zero, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidOutput)
	}

	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}

	return result, nil
}
