package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorKind classifies provider failures. The kind is persisted as the
// discriminant prefix of IAResponse.error_message.
type ErrorKind string

const (
	KindTimeout        ErrorKind = "timeout"
	KindRateLimited    ErrorKind = "rate_limited"
	KindAuth           ErrorKind = "auth"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindUpstream       ErrorKind = "upstream"
	KindUnknown        ErrorKind = "unknown"
)

type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

// Discriminant is the stable form stored on IAResponse.error_message.
func (e *ProviderError) Discriminant() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Redacted strips the upstream message, leaving only kind and provider.
// This is the form the moderator is allowed to see.
func (e *ProviderError) Redacted() string {
	return fmt.Sprintf("%s (%s)", e.Kind, e.Provider)
}

// Retryable reports whether another attempt can reasonably succeed.
// Auth and request-shape errors never heal on retry.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindRateLimited, KindUpstream:
		return true
	default:
		return false
	}
}

// ClassifyStatus maps an HTTP status to an ErrorKind.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindUpstream
	case status >= 400:
		return KindInvalidRequest
	default:
		return KindUnknown
	}
}

// Classify normalizes an arbitrary transport error into a ProviderError.
// Already-classified errors pass through with the provider name filled in.
func Classify(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Provider == "" {
			pe.Provider = provider
		}
		return pe
	}

	kind := KindUnknown
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindTimeout
	default:
		var netErr net.Error
		if errors.As(err, &netErr) {
			if netErr.Timeout() {
				kind = KindTimeout
			} else {
				kind = KindUpstream
			}
		} else if strings.Contains(err.Error(), "connection refused") {
			kind = KindUpstream
		}
	}

	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Message:  err.Error(),
	}
}

// StatusError carries an HTTP status and body for classification by the
// hand-rolled adapters.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// FromStatus builds a classified ProviderError from an HTTP status response.
func FromStatus(provider string, status int, body string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     ClassifyStatus(status),
		Message:  fmt.Sprintf("status %d: %s", status, truncate(body, 300)),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
