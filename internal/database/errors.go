package database

import (
	"errors"
	"fmt"

	"github.com/nfrund/eventhub/internal/domain"
)

// Errors returned by the store layer. They can be checked with errors.Is.
var (
	// ErrNotFound and ErrAlreadyExists are domain sentinels so handlers need
	// a single mapping.
	ErrNotFound = domain.ErrNotFound

	ErrAlreadyExists = domain.ErrConflict

	ErrInvalidID    = errors.New("invalid record id")
	ErrInvalidInput = errors.New("invalid input data")
	ErrNotConnected = errors.New("database not connected")
)

// DBError carries the failing operation and query alongside the driver error.
type DBError struct {
	err     error
	context string
	query   string
	params  map[string]any
}

// NewDBError creates a DBError describing the operation that failed.
func NewDBError(err error, context string) *DBError {
	return &DBError{err: err, context: context}
}

// WithQuery attaches the query being executed.
func (e *DBError) WithQuery(query string) *DBError {
	e.query = query
	return e
}

// WithParams attaches the query parameters.
func (e *DBError) WithParams(params map[string]any) *DBError {
	e.params = params
	return e
}

func (e *DBError) Error() string {
	msg := e.context
	if e.query != "" {
		msg = fmt.Sprintf("%s (query: %s)", msg, e.query)
	}
	if len(e.params) > 0 {
		msg = fmt.Sprintf("%s (params: %v)", msg, e.params)
	}
	if e.err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.err)
	}
	return msg
}

func (e *DBError) Unwrap() error {
	return e.err
}

// WrapError adds context to err. An existing DBError is extended in place.
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.context != "" {
			context = context + ": " + dbErr.context
		}
		dbErr.context = context
		return dbErr
	}
	return NewDBError(err, context)
}
