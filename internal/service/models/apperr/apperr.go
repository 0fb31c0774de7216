package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of the order pipeline.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindItemNotFound
	KindPersistence
	KindMalformedRequest
)

// Code returns the stable machine-readable code of the kind.
func (k Kind) Code() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindItemNotFound:
		return "item_not_found"
	case KindPersistence:
		return "persistence_error"
	case KindMalformedRequest:
		return "malformed_request"
	default:
		return "internal_error"
	}
}

func (k Kind) String() string {
	return k.Code()
}

// Error is a pipeline error with a kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized reports a missing, malformed or rejected credential.
// The cause is kept for logs only.
func Unauthorized(cause error) *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized", Err: cause}
}

// ItemNotFound reports a requested item absent from the catalog.
func ItemNotFound(itemID string) *Error {
	return &Error{Kind: KindItemNotFound, Message: fmt.Sprintf("Item %s not found", itemID)}
}

// Persistence reports a failed store read or write.
func Persistence(op string, cause error) *Error {
	msg := op
	if cause != nil {
		msg = op + ": " + cause.Error()
	}

	return &Error{Kind: KindPersistence, Message: msg, Err: cause}
}

// MalformedRequest reports a request body that does not match the schema.
func MalformedRequest(msg string, cause error) *Error {
	return &Error{Kind: KindMalformedRequest, Message: msg, Err: cause}
}

// KindOf returns the kind carried by err, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}
