package db

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection means the store could not be reached or refused the credentials.
	ErrConnection = errors.New("connection error")
	// ErrStatement means the store rejected a statement.
	ErrStatement = errors.New("statement error")
	// ErrInvalidInput means the request was rejected before reaching the store.
	ErrInvalidInput = errors.New("invalid input")
)

// ConnectionError wraps err so that errors.Is(err, ErrConnection) holds.
func ConnectionError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrConnection, op, err)
}

// StatementError wraps err so that errors.Is(err, ErrStatement) holds.
func StatementError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStatement, op, err)
}

// InvalidInput builds an ErrInvalidInput with a formatted reason.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
