package translate

import (
	"errors"
	"fmt"
)

// ErrNoProvider means no enabled provider matches the configured
// assignment. Translation cannot proceed until config is fixed.
var ErrNoProvider = errors.New("no enabled AI provider configured")

// ProviderError wraps an upstream LLM failure. Transient failures
// (timeouts, rate limits, 5xx) are retried; everything else surfaces
// immediately.
type ProviderError struct {
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "terminal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("provider error (%s): %v", kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StructuredOutputError means the model replied but the reply was not the
// requested JSON shape. The caller must not fall back to using the raw
// text.
type StructuredOutputError struct {
	Raw string
}

func (e *StructuredOutputError) Error() string {
	return "provider returned malformed structured output"
}
