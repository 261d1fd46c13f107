package apperrors

import (
	"errors"
	"fmt"
)

// Kind is the stable error discriminant surfaced to API clients.
type Kind string

const (
	KindValidation           Kind = "ValidationError"
	KindNotFound             Kind = "NotFound"
	KindAuthRequired         Kind = "AuthRequired"
	KindEmbeddingUnavailable Kind = "EmbeddingUnavailable"
	KindUpstreamTimeout      Kind = "UpstreamTimeout"
	KindUpstreamRateLimited  Kind = "UpstreamRateLimited"
	KindUpstreamUnavailable  Kind = "UpstreamUnavailable"
	KindUpstreamBusy         Kind = "UpstreamBusy"
	KindPersistence          Kind = "Persistence"
	KindCancelled            Kind = "Cancelled"
	KindInternal             Kind = "Internal"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return New(KindValidation, message)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}

func AuthRequired(message string) *AppError {
	return New(KindAuthRequired, message)
}

// KindOf extracts the kind of an error chain; unclassified errors are Internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
