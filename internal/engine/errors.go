package engine

import (
	"errors"
	"fmt"

	"infinite-experiment/clanledger/internal/constants"
)

// LedgerError is the typed rejection returned by every ledger operation.
// Current and Limit carry the values a caller needs to explain the rejection.
type LedgerError struct {
	Code    string
	Message string
	Current int64
	Limit   int64
	Err     error
}

func (e *LedgerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = constants.GetErrorMessage(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// Is matches on code so errors.Is(err, ErrClanCapExceeded) works for any instance.
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Retryable reports whether the caller may retry. Only persistence failures are transient.
func (e *LedgerError) Retryable() bool {
	return e.Code == constants.ErrCodePersistenceFailure
}

var (
	ErrRateLimited        = &LedgerError{Code: constants.ErrCodeRateLimited}
	ErrDailyCapExceeded   = &LedgerError{Code: constants.ErrCodeDailyCapExceeded}
	ErrClanCapExceeded    = &LedgerError{Code: constants.ErrCodeClanCapExceeded}
	ErrMessageIgnored     = &LedgerError{Code: constants.ErrCodeMessageIgnored}
	ErrClanNotFound       = &LedgerError{Code: constants.ErrCodeClanNotFound}
	ErrUserNotInClan      = &LedgerError{Code: constants.ErrCodeUserNotInClan}
	ErrDuplicateClan      = &LedgerError{Code: constants.ErrCodeDuplicateClan}
	ErrNotFound           = &LedgerError{Code: constants.ErrCodeNotFound}
	ErrDuplicate          = &LedgerError{Code: constants.ErrCodeDuplicate}
	ErrInvalidAmount      = &LedgerError{Code: constants.ErrCodeInvalidAmount}
	ErrInvalidClanName    = &LedgerError{Code: constants.ErrCodeInvalidClanName}
	ErrInvalidInput       = &LedgerError{Code: constants.ErrCodeInvalidInput}
	ErrForbidden          = &LedgerError{Code: constants.ErrCodeForbidden}
	ErrPersistenceFailure = &LedgerError{Code: constants.ErrCodePersistenceFailure}
)

// NewError builds a rejection with the default message for code.
func NewError(code string) *LedgerError {
	return &LedgerError{Code: code, Message: constants.GetErrorMessage(code)}
}

// NewLimitError builds a rejection carrying the observed value and the limit it hit.
func NewLimitError(code string, current, limit int64) *LedgerError {
	return &LedgerError{Code: code, Message: constants.GetErrorMessage(code), Current: current, Limit: limit}
}

// Errorf builds a rejection with a custom message.
func Errorf(code string, format string, args ...any) *LedgerError {
	return &LedgerError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a store failure. Already-typed ledger errors pass through.
func PersistenceError(err error) error {
	if err == nil {
		return nil
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return le
	}
	return &LedgerError{
		Code:    constants.ErrCodePersistenceFailure,
		Message: constants.GetErrorMessage(constants.ErrCodePersistenceFailure),
		Err:     err,
	}
}

// CodeOf returns the ledger code for err, or "" for foreign errors.
func CodeOf(err error) string {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}
