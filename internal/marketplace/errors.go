package marketplace

import "fmt"

// ParseError represents a failure to parse a single listing card. It is logged
// and the card is dropped; it never aborts the page or the adapter.
type ParseError struct {
	Source  string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s parse error: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s parse error: %s", e.Source, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NavigationError represents an adapter-level failure: the listing page is
// unreachable or the expected container never appeared. It aborts that
// adapter's run only.
type NavigationError struct {
	Source  string
	URL     string
	Message string
	Cause   error
}

func (e *NavigationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s navigation error at %s: %s: %v", e.Source, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s navigation error at %s: %s", e.Source, e.URL, e.Message)
}

func (e *NavigationError) Unwrap() error {
	return e.Cause
}

// UnknownError is returned by the registry for identifiers that have no
// registered adapter. It is a configuration error, not a runtime fallthrough.
type UnknownError struct {
	Name string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown marketplace: %s", e.Name)
}
