package clients

import "context"

// MatchResult is the AI matching verdict for a candidate against a job.
type MatchResult struct {
	OverallScore float64
	Breakdown    map[string]float64
	Reasons      []string
}

// AIService is the AI matching/screening collaborator. It is consumed only by
// processors and requirement predicates, never by the state machine itself.
type AIService interface {
	MatchCandidateToJob(ctx context.Context, candidateID, jobID string) (MatchResult, error)
	ParseResume(ctx context.Context, rawResume []byte) (map[string]any, error)
}
