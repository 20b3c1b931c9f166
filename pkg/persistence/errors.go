// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrInstanceNotFound indicates no instance exists for the pair.
	ErrInstanceNotFound = errors.New("workflow instance not found")

	// ErrInstanceAlreadyExists indicates an active instance already exists
	// for the pair.
	ErrInstanceAlreadyExists = errors.New("workflow instance already exists")

	// ErrDefinitionNotFound indicates an unknown workflow definition id.
	ErrDefinitionNotFound = errors.New("workflow definition not found")

	// ErrCandidateNotFound indicates an unknown candidate id.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrJobPostingNotFound indicates an unknown job posting id.
	ErrJobPostingNotFound = errors.New("job posting not found")

	// ErrCompanyNotFound indicates an unknown company id.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrInterviewNotFound indicates no interview record exists.
	ErrInterviewNotFound = errors.New("interview not found")

	// ErrAssessmentNotFound indicates no assessment record exists.
	ErrAssessmentNotFound = errors.New("assessment not found")

	// ErrApprovalNotFound indicates no approval record exists.
	ErrApprovalNotFound = errors.New("approval not found")
)

// InstanceError wraps instance-related errors with operation context.
type InstanceError struct {
	Op          string
	CandidateID string
	JobID       string
	Err         error
}

func (e *InstanceError) Error() string {
	return fmt.Sprintf("%s operation failed for instance (%s, %s): %v", e.Op, e.CandidateID, e.JobID, e.Err)
}

func (e *InstanceError) Unwrap() error {
	return e.Err
}

func (e *InstanceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewInstanceError creates an instance error with context.
func NewInstanceError(op, candidateID, jobID string, err error) *InstanceError {
	return &InstanceError{
		Op:          op,
		CandidateID: candidateID,
		JobID:       jobID,
		Err:         err,
	}
}

// IsInstanceNotFound checks if an error indicates a missing instance.
func IsInstanceNotFound(err error) bool {
	return errors.Is(err, ErrInstanceNotFound)
}

// IsInstanceAlreadyExists checks if an error indicates a pair conflict.
func IsInstanceAlreadyExists(err error) bool {
	return errors.Is(err, ErrInstanceAlreadyExists)
}

// IsDefinitionNotFound checks if an error indicates a missing definition.
func IsDefinitionNotFound(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound)
}

// IsNotFound checks if an error is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInstanceNotFound) ||
		errors.Is(err, ErrDefinitionNotFound) ||
		errors.Is(err, ErrCandidateNotFound) ||
		errors.Is(err, ErrJobPostingNotFound) ||
		errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrInterviewNotFound) ||
		errors.Is(err, ErrAssessmentNotFound) ||
		errors.Is(err, ErrApprovalNotFound)
}
