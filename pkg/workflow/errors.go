package workflow

import "errors"

var (
	// ErrAlreadyActive indicates a start call while an active (or paused)
	// instance already exists for the pair.
	ErrAlreadyActive = errors.New("an active workflow instance already exists for this candidate and job")

	// ErrNoActiveInstance indicates a transition against a pair with no
	// active instance, including terminal ones.
	ErrNoActiveInstance = errors.New("no active workflow instance for this candidate and job")

	// ErrStageNotFound indicates a transition target absent from the
	// definition bound to the instance.
	ErrStageNotFound = errors.New("stage not found in workflow definition")

	// ErrInvalidOrder indicates a transition that would move the candidate
	// backwards without skip validation.
	ErrInvalidOrder = errors.New("target stage order must be greater than the current stage order")

	// ErrNotPaused indicates a resume call on an instance that is not
	// paused.
	ErrNotPaused = errors.New("workflow instance is not paused")

	// ErrRequirementsNotMet indicates an advance off a required stage whose
	// requirements do not all hold, without skip validation.
	ErrRequirementsNotMet = errors.New("current stage requirements are not satisfied")
)
