package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references a story that does not exist.
var ErrNotFound = errors.New("story not found")

// ErrStorage matches every *StorageError via errors.Is.
var ErrStorage = errors.New("storage failure")

// StorageError reports a backend failure. The operation did not persist and
// previously stored state is unchanged.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorage) true for any StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// wrap turns a backend error into a *StorageError. Errors that already carry
// a meaning for callers pass through untouched.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.Is(err, ErrNotFound) || errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
