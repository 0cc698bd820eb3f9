// Package assign generates per-student question sets for an exam: it picks
// a difficulty distribution, draws concrete questions with usage-weighted
// sampling, and persists the result as a write-once assignment.
package assign

import "errors"

// Sentinel errors the HTTP layer maps to client-facing responses. Anything
// else coming out of this package is a storage fault.
var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrInsufficientPool   = errors.New("insufficient question pool")
	ErrAlreadySubmitted   = errors.New("assignment already submitted")
)
