package services

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrValidation = errors.New("validation error")
	ErrGateway    = errors.New("payment gateway error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// serviceError carries one of the sentinels above as its kind, so callers
// match it with errors.Is while Error() keeps a readable message.
type serviceError struct {
	kind  error
	msg   string
	cause error
}

func (e *serviceError) Error() string        { return e.msg }
func (e *serviceError) Is(target error) bool { return target == e.kind }
func (e *serviceError) Unwrap() error        { return e.cause }

func newError(kind error, format string, args ...interface{}) error {
	return &serviceError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// wrapError keeps the cause message, so gateway messages reach the caller.
func wrapError(kind error, cause error) error {
	return &serviceError{kind: kind, msg: cause.Error(), cause: cause}
}
