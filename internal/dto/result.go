package dto

import (
	"errors"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
)

// Result is the envelope every API response is wrapped in.
type Result struct {
	Success   bool           `json:"success"`
	ErrorKind apperrors.Kind `json:"errorKind,omitempty"`
	Message   string         `json:"message,omitempty"`
	Data      any            `json:"data,omitempty"`
}

// OK wraps data in a successful Result.
func OK(data any) Result {
	return Result{Success: true, Data: data}
}

// Failure classifies err into a failed Result and the HTTP status to send it with.
// Internal and consistency failures never leak their cause; it stays in the logs.
func Failure(err error) (Result, int) {
	kind, status := apperrors.Classify(err)
	msg := err.Error()
	var appErr *apperrors.AppError
	hasMessage := errors.As(err, &appErr)
	if hasMessage {
		msg = appErr.Message
	}
	switch kind {
	case apperrors.KindInternal:
		msg = "internal server error"
	case apperrors.KindConsistency:
		if !hasMessage {
			msg = apperrors.ErrConsistency.Error()
		}
	}
	return Result{Success: false, ErrorKind: kind, Message: msg}, status
}
