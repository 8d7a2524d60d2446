// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. This enables better error categorization, logging,
// and user experience by providing context-aware error information.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import "fmt"

// Kind is a machine-readable error category.
type Kind string

const (
	// ConnectFailed indicates the database connection could not be established or verified.
	ConnectFailed Kind = "connect_failed"
	// QueryFailed indicates a statement was rejected by the database.
	QueryFailed Kind = "query_failed"
	// EditDisabled indicates cell editing is unavailable for a result set.
	EditDisabled Kind = "edit_disabled"
	// UpdateFailed indicates a reconciliation UPDATE was rejected by the database.
	UpdateFailed Kind = "update_failed"
	// ConnectionNotFound indicates a named connection does not exist in the store.
	ConnectionNotFound Kind = "connection_not_found"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error for errors.Is/As chains.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }
