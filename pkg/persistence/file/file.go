// Package file provides a file-based persistence implementation storing one
// JSON document per record, suitable for development and small deployments.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system. Records
// live under <root>/<collection>/<key>.json. A process-wide mutex serializes
// writes; the engine's per-pair locking keeps instance writes single-writer.
type Persistence struct {
	root string
	mu   sync.Mutex
}

func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) path(collection, key string) string {
	return filepath.Join(p.root, collection, key+".json")
}

func (p *Persistence) read(collection, key string, dst any, notFound error) error {
	raw, err := os.ReadFile(p.path(collection, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound
		}

		return fmt.Errorf("failed to read %s/%s: %w", collection, key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, key, err)
	}

	return nil
}

func (p *Persistence) write(collection, key string, src any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	dir := filepath.Join(p.root, collection)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	raw, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, key, err)
	}

	// Write-then-rename keeps readers from seeing partial documents.
	tmp := p.path(collection, key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", collection, key, err)
	}

	return os.Rename(tmp, p.path(collection, key))
}

func pairKey(candidateID, jobID string) string {
	return candidateID + "_" + jobID
}

func (p *Persistence) InstanceByPair(_ context.Context, candidateID, jobID string) (*models.WorkflowInstance, error) {
	instance := &models.WorkflowInstance{}
	if err := p.read("instances", pairKey(candidateID, jobID), instance, persistence.ErrInstanceNotFound); err != nil {
		return nil, persistence.NewInstanceError("InstanceByPair", candidateID, jobID, err)
	}

	return instance, nil
}

func (p *Persistence) SaveInstance(ctx context.Context, instance *models.WorkflowInstance) error {
	existing, err := p.InstanceByPair(ctx, instance.CandidateID, instance.JobID)
	if err != nil && !persistence.IsInstanceNotFound(err) {
		return err
	}

	if existing != nil && existing.Status == models.InstanceStatusActive {
		return persistence.NewInstanceError("SaveInstance", instance.CandidateID, instance.JobID, persistence.ErrInstanceAlreadyExists)
	}

	return p.write("instances", pairKey(instance.CandidateID, instance.JobID), instance)
}

func (p *Persistence) UpdateInstance(ctx context.Context, instance *models.WorkflowInstance) error {
	if _, err := p.InstanceByPair(ctx, instance.CandidateID, instance.JobID); err != nil {
		return err
	}

	return p.write("instances", pairKey(instance.CandidateID, instance.JobID), instance)
}

func (p *Persistence) DefinitionByID(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	definition := &models.WorkflowDefinition{}
	if err := p.read("definitions", id, definition, persistence.ErrDefinitionNotFound); err != nil {
		return nil, err
	}

	return definition, nil
}

func (p *Persistence) SaveDefinition(_ context.Context, definition *models.WorkflowDefinition) error {
	return p.write("definitions", definition.ID, definition)
}

func (p *Persistence) CandidateByID(_ context.Context, id string) (*models.Candidate, error) {
	candidate := &models.Candidate{}
	if err := p.read("candidates", id, candidate, persistence.ErrCandidateNotFound); err != nil {
		return nil, err
	}

	return candidate, nil
}

func (p *Persistence) SaveCandidate(_ context.Context, candidate *models.Candidate) error {
	return p.write("candidates", candidate.ID, candidate)
}

func (p *Persistence) JobPostingByID(_ context.Context, id string) (*models.JobPosting, error) {
	posting := &models.JobPosting{}
	if err := p.read("postings", id, posting, persistence.ErrJobPostingNotFound); err != nil {
		return nil, err
	}

	return posting, nil
}

func (p *Persistence) SaveJobPosting(_ context.Context, posting *models.JobPosting) error {
	return p.write("postings", posting.ID, posting)
}

func (p *Persistence) CompanyByID(_ context.Context, id string) (*models.Company, error) {
	company := &models.Company{}
	if err := p.read("companies", id, company, persistence.ErrCompanyNotFound); err != nil {
		return nil, err
	}

	return company, nil
}

func (p *Persistence) SaveCompany(_ context.Context, company *models.Company) error {
	return p.write("companies", company.ID, company)
}

func (p *Persistence) SaveInterview(ctx context.Context, interview *models.Interview) error {
	interviews, err := p.InterviewsByPair(ctx, interview.CandidateID, interview.JobID)
	if err != nil {
		return err
	}

	interviews = append(interviews, interview)

	return p.write("interviews", pairKey(interview.CandidateID, interview.JobID), interviews)
}

func (p *Persistence) UpdateInterview(ctx context.Context, interview *models.Interview) error {
	interviews, err := p.InterviewsByPair(ctx, interview.CandidateID, interview.JobID)
	if err != nil {
		return err
	}

	for i, existing := range interviews {
		if existing.ID == interview.ID {
			interviews[i] = interview

			return p.write("interviews", pairKey(interview.CandidateID, interview.JobID), interviews)
		}
	}

	return persistence.ErrInterviewNotFound
}

func (p *Persistence) InterviewsByPair(_ context.Context, candidateID, jobID string) ([]*models.Interview, error) {
	interviews := []*models.Interview{}

	err := p.read("interviews", pairKey(candidateID, jobID), &interviews, persistence.ErrInterviewNotFound)
	if err != nil && !errors.Is(err, persistence.ErrInterviewNotFound) {
		return nil, err
	}

	return interviews, nil
}

func (p *Persistence) SaveAssessment(_ context.Context, assessment *models.Assessment) error {
	return p.write("assessments", pairKey(assessment.CandidateID, assessment.JobID), assessment)
}

func (p *Persistence) UpdateAssessment(ctx context.Context, assessment *models.Assessment) error {
	if _, err := p.AssessmentByPair(ctx, assessment.CandidateID, assessment.JobID); err != nil {
		return err
	}

	return p.SaveAssessment(ctx, assessment)
}

func (p *Persistence) AssessmentByPair(_ context.Context, candidateID, jobID string) (*models.Assessment, error) {
	assessment := &models.Assessment{}
	if err := p.read("assessments", pairKey(candidateID, jobID), assessment, persistence.ErrAssessmentNotFound); err != nil {
		return nil, err
	}

	return assessment, nil
}

func (p *Persistence) SaveApproval(_ context.Context, approval *models.Approval) error {
	key := pairKey(approval.CandidateID, approval.JobID) + "_" + approval.StageID

	return p.write("approvals", key, approval)
}

func (p *Persistence) ApprovalByStage(_ context.Context, candidateID, jobID, stageID string) (*models.Approval, error) {
	approval := &models.Approval{}

	key := pairKey(candidateID, jobID) + "_" + stageID
	if err := p.read("approvals", key, approval, persistence.ErrApprovalNotFound); err != nil {
		return nil, err
	}

	return approval, nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}
