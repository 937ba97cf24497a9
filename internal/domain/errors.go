package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when a catalog index is outside [0, Len()).
	ErrIndexOutOfRange = errors.New("question index out of range")
	// ErrUnknownQuestion indicates an answer for a key the catalog does not define.
	ErrUnknownQuestion = errors.New("question not found")
	// ErrAnswerKindMismatch indicates an answer variant that does not fit the question kind.
	ErrAnswerKindMismatch = errors.New("answer does not match question kind")
	// ErrSessionComplete is returned by mutations other than reset once the quiz is complete.
	ErrSessionComplete = errors.New("quiz already complete")
	// ErrNotComplete is returned when results are requested before the last step.
	ErrNotComplete = errors.New("quiz not complete")
	// ErrRecordNotFound is returned by storage adapters for an absent record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrMalformedData marks persisted data that could not be decoded.
	ErrMalformedData = errors.New("malformed persisted data")
)

// AnswerRequired is the reason given when the current question has no usable answer.
const AnswerRequired = "answer required before continuing"

// NumberNotFinite is the reason given for NaN or infinite numeric input.
const NumberNotFinite = "must be a finite number"

// ValidationError reports a missing or invalid answer for the current question.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

// IncompleteInputError names the first required key missing from an answer set.
type IncompleteInputError struct {
	Key string
}

func (e *IncompleteInputError) Error() string {
	return fmt.Sprintf("incomplete input: %s is required", e.Key)
}

// PersistenceError wraps a storage failure. Op is "save" or "load".
type PersistenceError struct {
	Op     string
	Record string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("could not %s %s: %v", e.Op, e.Record, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
