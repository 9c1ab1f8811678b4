package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found or is not owned by the caller.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrTypeMismatch indicates that a category direction does not match the transaction type.
var ErrTypeMismatch = errors.New("type mismatch")

// ErrConflict indicates the current state of a resource forbids the operation.
var ErrConflict = errors.New("state conflict")

// ErrForbidden indicates the actor lacks the membership or role required for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConsistency indicates an atomic unit could not be completed as a whole.
// Callers should re-check state and retry rather than change their input.
var ErrConsistency = errors.New("consistency failure")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal is the fallback for unexpected failures.
var ErrInternal = errors.New("internal error")

// Named errors. Each wraps one of the kinds above so errors.Is works on both.
var (
	ErrWalletNotFound          = fmt.Errorf("%w: wallet", ErrNotFound)
	ErrCategoryNotFound        = fmt.Errorf("%w: category", ErrNotFound)
	ErrTransactionNotFound     = fmt.Errorf("%w: transaction", ErrNotFound)
	ErrInvalidTransfer         = fmt.Errorf("%w: invalid transfer", ErrValidation)
	ErrInvalidAmount           = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrCategoryCycle           = fmt.Errorf("%w: category parent cycle", ErrValidation)
	ErrInsufficientGoalBalance = fmt.Errorf("%w: insufficient goal balance", ErrConflict)
	ErrAlreadyPaidThisPeriod   = fmt.Errorf("%w: already paid this period", ErrConflict)
	ErrBillInactive            = fmt.Errorf("%w: recurring bill is inactive or expired", ErrConflict)
	ErrNotDeleted              = fmt.Errorf("%w: transaction is not deleted", ErrConflict)
)

// AppError carries an HTTP-ish status code and a message alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an AppError wrapping ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

// NewValidationError returns an AppError wrapping ErrValidation.
func NewValidationError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

// NewConflictError returns an AppError wrapping ErrConflict.
func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrConflict)
}

// NewConsistencyError marks cause as a failed atomic unit.
func NewConsistencyError(message string, cause error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message, errors.Join(ErrConsistency, cause))
}

// Kind is the externally visible error category of a failed operation.
type Kind string

const (
	KindNotFound     Kind = "NotFound"
	KindValidation   Kind = "ValidationError"
	KindTypeMismatch Kind = "TypeMismatchError"
	KindConflict     Kind = "StateConflict"
	KindForbidden    Kind = "AuthorizationError"
	KindUnauthorized Kind = "Unauthorized"
	KindConsistency  Kind = "ConsistencyFailure"
	KindDuplicate    Kind = "Duplicate"
	KindRateLimited  Kind = "RateLimited"
	KindInternal     Kind = "InternalError"
)

// Classify maps err onto its Kind and the HTTP status a transport should use.
// ErrConsistency is checked first: a failed compensation may also carry the
// original domain error.
func Classify(err error) (Kind, int) {
	switch {
	case err == nil:
		return "", http.StatusOK
	case errors.Is(err, ErrConsistency):
		return KindConsistency, http.StatusServiceUnavailable
	case errors.Is(err, ErrTypeMismatch):
		return KindTypeMismatch, http.StatusUnprocessableEntity
	case errors.Is(err, ErrValidation):
		return KindValidation, http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return KindNotFound, http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict, http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return KindForbidden, http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized, http.StatusUnauthorized
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate, http.StatusConflict
	default:
		return KindInternal, http.StatusInternalServerError
	}
}

// IsDomainError reports whether err belongs to the caller-facing taxonomy, i.e. it
// describes the request rather than a storage failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrConsistency)
}
