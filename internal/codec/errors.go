package codec

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// ErrOpen means the input could not be opened or decoded.
	ErrOpen ErrorKind = iota + 1
	// ErrProcessing is an engine failure on an image that did open.
	ErrProcessing
)

type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("codec %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func OpenError(op string, err error) *Error {
	return &Error{Kind: ErrOpen, Op: op, Err: err}
}

func ProcessingError(op string, err error) *Error {
	return &Error{Kind: ErrProcessing, Op: op, Err: err}
}

// IsOpenError reports whether err is a codec failure to open the input.
func IsOpenError(err error) bool {
	var codecErr *Error
	return errors.As(err, &codecErr) && codecErr.Kind == ErrOpen
}
