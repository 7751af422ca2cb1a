package dataservice

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// ErrEmptyResponse is returned when a response carries no body at all.
var ErrEmptyResponse = errors.New("empty response received")

// NetworkError is a transport failure or a non-2xx response.
type NetworkError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
		if e.Message != "" {
			msg += ": " + e.Message
		}
		return msg
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerSide reports whether the failure should count against the remote's health.
func (e *NetworkError) ServerSide() bool {
	return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError
}

// MalformedResponseError is a body that is not a valid JSON envelope.
type MalformedResponseError struct {
	Excerpt string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response (%v): %q", e.Err, e.Excerpt)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// DomainError is a well-formed envelope reporting success=false.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return "data service reported a failure"
	}
	return e.Message
}

const excerptLimit = 120

func excerpt(body []byte) string {
	if len(body) <= excerptLimit {
		return string(body)
	}
	cut := excerptLimit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "…"
}
