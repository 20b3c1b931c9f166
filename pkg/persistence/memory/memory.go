// Package memory provides an in-memory persistence implementation for tests
// and local development.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
)

// Persistence implements persistence.Persistence with process-local maps.
// All reads return deep copies so callers cannot mutate stored state.
type Persistence struct {
	mu          sync.RWMutex
	instances   map[string]*models.WorkflowInstance
	definitions map[string]*models.WorkflowDefinition
	candidates  map[string]*models.Candidate
	postings    map[string]*models.JobPosting
	companies   map[string]*models.Company
	interviews  map[string][]*models.Interview
	assessments map[string]*models.Assessment
	approvals   map[string]*models.Approval
}

func NewPersistence() *Persistence {
	return &Persistence{
		instances:   make(map[string]*models.WorkflowInstance),
		definitions: make(map[string]*models.WorkflowDefinition),
		candidates:  make(map[string]*models.Candidate),
		postings:    make(map[string]*models.JobPosting),
		companies:   make(map[string]*models.Company),
		interviews:  make(map[string][]*models.Interview),
		assessments: make(map[string]*models.Assessment),
		approvals:   make(map[string]*models.Approval),
	}
}

func pairKey(candidateID, jobID string) string {
	return candidateID + ":" + jobID
}

func stageKey(candidateID, jobID, stageID string) string {
	return candidateID + ":" + jobID + ":" + stageID
}

func deepCopy[T any](src *T) *T {
	raw, err := json.Marshal(src)
	if err != nil {
		return src
	}

	dst := new(T)
	if err := json.Unmarshal(raw, dst); err != nil {
		return src
	}

	return dst
}

func (p *Persistence) InstanceByPair(_ context.Context, candidateID, jobID string) (*models.WorkflowInstance, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	instance, ok := p.instances[pairKey(candidateID, jobID)]
	if !ok {
		return nil, persistence.NewInstanceError("InstanceByPair", candidateID, jobID, persistence.ErrInstanceNotFound)
	}

	return deepCopy(instance), nil
}

func (p *Persistence) SaveInstance(_ context.Context, instance *models.WorkflowInstance) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := pairKey(instance.CandidateID, instance.JobID)
	if existing, ok := p.instances[key]; ok && existing.Status == models.InstanceStatusActive {
		return persistence.NewInstanceError("SaveInstance", instance.CandidateID, instance.JobID, persistence.ErrInstanceAlreadyExists)
	}

	p.instances[key] = deepCopy(instance)

	return nil
}

func (p *Persistence) UpdateInstance(_ context.Context, instance *models.WorkflowInstance) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := pairKey(instance.CandidateID, instance.JobID)
	if _, ok := p.instances[key]; !ok {
		return persistence.NewInstanceError("UpdateInstance", instance.CandidateID, instance.JobID, persistence.ErrInstanceNotFound)
	}

	p.instances[key] = deepCopy(instance)

	return nil
}

func (p *Persistence) DefinitionByID(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	definition, ok := p.definitions[id]
	if !ok {
		return nil, persistence.ErrDefinitionNotFound
	}

	return deepCopy(definition), nil
}

func (p *Persistence) SaveDefinition(_ context.Context, definition *models.WorkflowDefinition) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.definitions[definition.ID] = deepCopy(definition)

	return nil
}

func (p *Persistence) CandidateByID(_ context.Context, id string) (*models.Candidate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	candidate, ok := p.candidates[id]
	if !ok {
		return nil, persistence.ErrCandidateNotFound
	}

	return deepCopy(candidate), nil
}

func (p *Persistence) SaveCandidate(_ context.Context, candidate *models.Candidate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.candidates[candidate.ID] = deepCopy(candidate)

	return nil
}

func (p *Persistence) JobPostingByID(_ context.Context, id string) (*models.JobPosting, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	posting, ok := p.postings[id]
	if !ok {
		return nil, persistence.ErrJobPostingNotFound
	}

	return deepCopy(posting), nil
}

func (p *Persistence) SaveJobPosting(_ context.Context, posting *models.JobPosting) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.postings[posting.ID] = deepCopy(posting)

	return nil
}

func (p *Persistence) CompanyByID(_ context.Context, id string) (*models.Company, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	company, ok := p.companies[id]
	if !ok {
		return nil, persistence.ErrCompanyNotFound
	}

	return deepCopy(company), nil
}

func (p *Persistence) SaveCompany(_ context.Context, company *models.Company) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.companies[company.ID] = deepCopy(company)

	return nil
}

func (p *Persistence) SaveInterview(_ context.Context, interview *models.Interview) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := pairKey(interview.CandidateID, interview.JobID)
	p.interviews[key] = append(p.interviews[key], deepCopy(interview))

	return nil
}

func (p *Persistence) UpdateInterview(_ context.Context, interview *models.Interview) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := pairKey(interview.CandidateID, interview.JobID)
	for i, existing := range p.interviews[key] {
		if existing.ID == interview.ID {
			p.interviews[key][i] = deepCopy(interview)

			return nil
		}
	}

	return persistence.ErrInterviewNotFound
}

func (p *Persistence) InterviewsByPair(_ context.Context, candidateID, jobID string) ([]*models.Interview, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stored := p.interviews[pairKey(candidateID, jobID)]
	interviews := make([]*models.Interview, 0, len(stored))

	for _, interview := range stored {
		interviews = append(interviews, deepCopy(interview))
	}

	return interviews, nil
}

func (p *Persistence) SaveAssessment(_ context.Context, assessment *models.Assessment) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.assessments[pairKey(assessment.CandidateID, assessment.JobID)] = deepCopy(assessment)

	return nil
}

func (p *Persistence) UpdateAssessment(_ context.Context, assessment *models.Assessment) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := pairKey(assessment.CandidateID, assessment.JobID)
	if _, ok := p.assessments[key]; !ok {
		return persistence.ErrAssessmentNotFound
	}

	p.assessments[key] = deepCopy(assessment)

	return nil
}

func (p *Persistence) AssessmentByPair(_ context.Context, candidateID, jobID string) (*models.Assessment, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	assessment, ok := p.assessments[pairKey(candidateID, jobID)]
	if !ok {
		return nil, persistence.ErrAssessmentNotFound
	}

	return deepCopy(assessment), nil
}

func (p *Persistence) SaveApproval(_ context.Context, approval *models.Approval) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.approvals[stageKey(approval.CandidateID, approval.JobID, approval.StageID)] = deepCopy(approval)

	return nil
}

func (p *Persistence) ApprovalByStage(_ context.Context, candidateID, jobID, stageID string) (*models.Approval, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	approval, ok := p.approvals[stageKey(candidateID, jobID, stageID)]
	if !ok {
		return nil, persistence.ErrApprovalNotFound
	}

	return deepCopy(approval), nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}
