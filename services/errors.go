package services

import (
	"errors"
	"fmt"

	"bodoge-manager/repository"

	"github.com/sirupsen/logrus"
)

// Error is a structured error that carries the HTTP status to answer with.
type Error struct {
	HTTP    int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %v: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%v: %v", e.Code, e.Message)
}

// Is matches any *Error with the same Code, so errors.Is(err, ErrNotFound)
// holds for every not-found message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) Unwrap() error { return e.cause }

var (
	ErrNotAuthenticated error = &Error{HTTP: 401, Code: "NotAuthenticated", Message: "please sign in"}
	ErrForbidden        error = &Error{HTTP: 403, Code: "Forbidden", Message: "you are not allowed to do that"}
	ErrNotFound         error = &Error{HTTP: 404, Code: "NotFound", Message: "not found"}
	ErrConflict         error = &Error{HTTP: 409, Code: "Conflict", Message: "already exists"}
	ErrValidation       error = &Error{HTTP: 400, Code: "ValidationFailure", Message: "invalid input"}
	ErrStoreFailure     error = &Error{HTTP: 500, Code: "StoreFailure", Message: "fetch failed"}
)

func notFound(what string) error {
	return &Error{HTTP: 404, Code: "NotFound", Message: what + " not found"}
}

func invalid(format string, args ...any) error {
	return &Error{HTTP: 400, Code: "ValidationFailure", Message: fmt.Sprintf(format, args...)}
}

func conflict(msg string) error {
	return &Error{HTTP: 409, Code: "Conflict", Message: msg}
}

// storeFailure logs cause and returns a generic failure that keeps it for Unwrap.
func storeFailure(op string, cause error) error {
	logrus.WithError(cause).WithField("op", op).Error("[STORE] operation failed")
	return &Error{HTTP: 500, Code: "StoreFailure", Message: "fetch failed", cause: cause}
}

// fromStore maps repository sentinels and wraps anything else as a store failure.
func fromStore(op, what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound(what)
	case errors.Is(err, repository.ErrDuplicateEntry):
		return conflict(what + " already exists")
	}
	return storeFailure(op, err)
}
