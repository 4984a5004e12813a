package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind is the stable category of a scoring error.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindState       Kind = "state"
	KindTransaction Kind = "transaction"
)

// Error is returned by every Service operation.
type Error struct {
	Kind    Kind
	Message string
	// Fields lists every violated input field of a validation error.
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Fields, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func stateError(format string, args ...any) *Error {
	return &Error{Kind: KindState, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(what string, id primitive.ObjectID) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", what, id.Hex())}
}

func transactionError(err error) *Error {
	return &Error{Kind: KindTransaction, Message: "persisting scoring update failed", Err: err}
}

// classify turns an error coming out of a transaction into an *Error. Errors that already carry a
// kind pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, database.ErrNotFound) {
		return &Error{Kind: KindNotFound, Message: "referenced document not found", Err: err}
	}
	return transactionError(err)
}

// lookup maps a missing document to a not-found error naming it.
func lookup(err error, what string, id primitive.ObjectID) error {
	if errors.Is(err, database.ErrNotFound) {
		return notFoundError(what, id)
	}
	return err
}

// KindOf returns the kind of err, or "" when err is not a scoring error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }
func IsState(err error) bool       { return KindOf(err) == KindState }
func IsTransaction(err error) bool { return KindOf(err) == KindTransaction }
