package store

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord is returned when a quiz record breaks its invariants
// (empty user or topic, total <= 0, score < 0 or score > total).
var ErrInvalidRecord = errors.New("invalid quiz record")

// ErrPersistence indicates a write to durable storage failed.
type ErrPersistence struct {
	Op  string
	Err error
}

func (e *ErrPersistence) Error() string {
	return fmt.Sprintf("persistence failure (%s): %v", e.Op, e.Err)
}

func (e *ErrPersistence) Unwrap() error { return e.Err }

// IsPersistence reports whether err is or wraps an *ErrPersistence.
func IsPersistence(err error) bool {
	var pe *ErrPersistence
	return errors.As(err, &pe)
}
