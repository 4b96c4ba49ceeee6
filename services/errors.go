package services

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrorKind classifies a failure for the transport layer.
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "invalid_input"
	KindInvalidScenario    ErrorKind = "invalid_scenario"
	KindInvalidDate        ErrorKind = "invalid_date"
	KindTickerNotFound     ErrorKind = "ticker_not_found"
	KindKPINotFound        ErrorKind = "kpi_not_found"
	KindNoValue            ErrorKind = "no_value"
	KindSubmissionNotFound ErrorKind = "submission_not_found"
	KindStorage            ErrorKind = "storage_error"
)

// Error is returned by every service operation. Not-found kinds carry the valid alternatives when
// they are cheap to compute.
type Error struct {
	Kind             ErrorKind
	Message          string
	Field            string
	AvailableTickers []string
	AvailableKPIs    []string
	Err              error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err; anything that is not an *Error counts as a storage failure.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStorage
}

func invalidInput(field, message string) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Message: message}
}

func storageError(log *zap.Logger, op string, err error) *Error {
	log.Error("datastore failure", zap.String("op", op), zap.Error(err))
	return &Error{
		Kind:    KindStorage,
		Message: "Database error while " + op,
		Err:     errors.Wrap(err, op),
	}
}

func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
