package session

import (
	"errors"
	"fmt"
)

// Phase is the lifecycle position of a quiz session.
type Phase int

const (
	PhaseIdle       Phase = iota // Created, not started
	PhaseRequesting              // Waiting for generated questions
	PhaseInProgress              // Accepting answers
	PhaseGrading                 // Grading the current answer
	PhaseFinished                // All questions answered, record written
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequesting:
		return "requesting"
	case PhaseInProgress:
		return "in_progress"
	case PhaseGrading:
		return "grading"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

var (
	// ErrInvalidState is returned for operations not allowed in the current
	// phase or for a question other than the current one.
	ErrInvalidState = errors.New("invalid session state")

	// ErrInvalidInput is returned by Start for unusable arguments.
	ErrInvalidInput = errors.New("invalid session input")
)

// InvalidStateError describes a rejected operation. Want and Got are the
// expected and submitted question indexes when the index was wrong.
type InvalidStateError struct {
	Op    string
	Phase Phase
	Want  int
	Got   int
}

func (e *InvalidStateError) Error() string {
	if e.Phase == PhaseInProgress && e.Want != e.Got {
		return fmt.Sprintf("%s: question %d is not current (current is %d)", e.Op, e.Got, e.Want)
	}
	return fmt.Sprintf("%s: not allowed while %s", e.Op, e.Phase)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }
