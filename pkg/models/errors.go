package models

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// ErrorKind separates provider failures that end up in the same fallback report.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTransport
	KindAuth
	KindProvider
	KindEmptyResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindProvider:
		return "provider"
	case KindEmptyResponse:
		return "empty_response"
	default:
		return "unknown"
	}
}

// ProviderError wraps a failed chat-completion call.
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s error (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindOf reports the kind of the first ProviderError in err's chain.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

var errEmptyResponse = errors.New("no response choices")

func newProviderError(provider string, status int, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{
		Provider:   provider,
		Kind:       classify(status, err),
		StatusCode: status,
		Err:        err,
	}
}

func classify(status int, err error) ErrorKind {
	switch {
	case errors.Is(err, errEmptyResponse):
		return KindEmptyResponse
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status > 0:
		return KindProvider
	case isTransport(err):
		return KindTransport
	default:
		return KindUnknown
	}
}

func isTransport(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
