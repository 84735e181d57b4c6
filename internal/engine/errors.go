package engine

import (
	"errors"
	"fmt"
	"time"
)

// Errors surfaced by the assessment engine. All are recoverable from the
// trainee's perspective except ErrAlreadyCertified.
var (
	ErrUnknownTrainee       = errors.New("trainee not found")
	ErrAlreadyCertified     = errors.New("final exam already passed")
	ErrEmptyBank            = errors.New("no questions available for this chapter")
	ErrInsufficientBank     = errors.New("final question bank is too small")
	ErrDuplicateSubmission  = errors.New("session was already submitted")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionNotInProgress = errors.New("session is not in progress")
	ErrQuestionNotInSession = errors.New("question is not part of this session")
	ErrInvalidOption        = errors.New("option is not present on this question")
	ErrNotGraded            = errors.New("session has no graded score to persist")
)

// CooldownError denies a quiz start because the chapter was passed within the
// retake cooldown window.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("chapter already passed, retake available in %.1f hours", e.Remaining.Hours())
}

// PersistError reports a Result Store failure after grading. The graded score
// is kept in the session, so persistence can be retried without re-grading.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return "persist result: " + e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
