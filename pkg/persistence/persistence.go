// Package persistence provides the storage abstraction consumed by the
// workflow engine: instances, definitions, and the domain read models the
// processors and requirement predicates need.
package persistence

import (
	"context"

	"github.com/hireflow/hireflow/pkg/models"
)

// Persistence is the storage contract. Instances are keyed by the
// (candidateID, jobID) pair with at most one active instance per pair;
// history is append-only and instances are never physically deleted.
type Persistence interface {
	// Instances.
	InstanceByPair(ctx context.Context, candidateID, jobID string) (*models.WorkflowInstance, error)
	SaveInstance(ctx context.Context, instance *models.WorkflowInstance) error
	UpdateInstance(ctx context.Context, instance *models.WorkflowInstance) error

	// Workflow definitions.
	DefinitionByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	SaveDefinition(ctx context.Context, definition *models.WorkflowDefinition) error

	// Read models.
	CandidateByID(ctx context.Context, id string) (*models.Candidate, error)
	SaveCandidate(ctx context.Context, candidate *models.Candidate) error
	JobPostingByID(ctx context.Context, id string) (*models.JobPosting, error)
	SaveJobPosting(ctx context.Context, posting *models.JobPosting) error
	CompanyByID(ctx context.Context, id string) (*models.Company, error)
	SaveCompany(ctx context.Context, company *models.Company) error

	// Interview records, owned by the schedule_interview processor.
	SaveInterview(ctx context.Context, interview *models.Interview) error
	UpdateInterview(ctx context.Context, interview *models.Interview) error
	InterviewsByPair(ctx context.Context, candidateID, jobID string) ([]*models.Interview, error)

	// Assessment records, owned by the assign_assessment processor.
	SaveAssessment(ctx context.Context, assessment *models.Assessment) error
	UpdateAssessment(ctx context.Context, assessment *models.Assessment) error
	AssessmentByPair(ctx context.Context, candidateID, jobID string) (*models.Assessment, error)

	// Approvals, written by the outer application and only read here.
	SaveApproval(ctx context.Context, approval *models.Approval) error
	ApprovalByStage(ctx context.Context, candidateID, jobID, stageID string) (*models.Approval, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
