package xrpc

import "fmt"

// Error is a decoded XRPC error response.
type Error struct {
	// StatusCode is the HTTP status the service answered with.
	StatusCode int

	// Code is the machine-readable error name from the response body
	// (e.g. "InvalidRequest", "AuthRequired").
	Code string `json:"error"`

	// Message is the human-readable description from the response body.
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("xrpc error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("xrpc error %s: %s (HTTP %d)", e.Code, e.Message, e.StatusCode)
}
