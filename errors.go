package apifit

import (
	"fmt"
	"strings"
)

// DeclarationError reports an invalid endpoint declaration: an unknown
// placeholder in the URL template, a computed axis referring to an
// argument that is not declared, a duplicate endpoint name and so on.
// It is used as a panic value by NewClient and TypeOf. Declaration
// problems are never deferred to call time.
type DeclarationError struct {
	Endpoint string
	Reason   string
}

func (e *DeclarationError) Error() string {
	if e.Endpoint == "" {
		return e.Reason
	}
	return fmt.Sprintf("endpoint %s: %s", e.Endpoint, e.Reason)
}

func declErrf(endpoint, format string, args ...interface{}) *DeclarationError {
	return &DeclarationError{
		Endpoint: endpoint,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// TransportError is returned when the request could not be completed on
// the HTTP level: the transport failed or the server replied with a
// non-success status. For status errors, Err is a *errors.CodeError
// classified from the status code, so errors.As can be used to inspect
// the code.
type TransportError struct {
	// StatusCode is 0 if the request failed before a response arrived.
	StatusCode int
	Status     string

	// Body is the error message harvested from the response body,
	// may be empty.
	Body string

	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("API returned error with HTTP status %s: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("API returned error with HTTP status %s", e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) HttpCode() int {
	return e.StatusCode
}

// DecodeError is returned when the response body cannot be parsed into
// a value tree.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response body: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FitError is returned when a decoded value tree does not fit the
// declared response shape. Path points at the exact place of the
// mismatch, e.g. "user.posts[2].id". For unions, Variants holds the
// failure of every tried variant.
type FitError struct {
	Path     string
	Expected string
	Actual   string
	Variants []error
}

func (e *FitError) Error() string {
	var b strings.Builder
	b.WriteString("response does not fit")
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	fmt.Fprintf(&b, ": expected %s, got %s", e.Expected, e.Actual)
	for _, sub := range e.Variants {
		b.WriteString("\n  variant: ")
		b.WriteString(sub.Error())
	}
	return b.String()
}

func (e *FitError) Unwrap() []error {
	return e.Variants
}
