// Package postgresql provides the PostgreSQL persistence implementation.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/persistence/sqlbase"
)

// Persistence implements persistence.Persistence on PostgreSQL. Aggregates are
// stored as JSONB documents keyed by their natural identifiers.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence connects, pings and migrates the database.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())
	if err := migrationManager.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{db: database, logger: logger}, nil
}

func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func scanDocument[T any](row *sql.Row, notFound error) (*T, error) {
	var raw []byte

	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}

		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	dst := new(T)
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	return dst, nil
}

func (p *Persistence) InstanceByPair(ctx context.Context, candidateID, jobID string) (*models.WorkflowInstance, error) {
	row := p.db.QueryRowContext(ctx,
		"SELECT document FROM workflow_instances WHERE candidate_id = $1 AND job_id = $2",
		candidateID, jobID,
	)

	instance, err := scanDocument[models.WorkflowInstance](row, persistence.ErrInstanceNotFound)
	if err != nil {
		return nil, persistence.NewInstanceError("InstanceByPair", candidateID, jobID, err)
	}

	return instance, nil
}

func (p *Persistence) SaveInstance(ctx context.Context, instance *models.WorkflowInstance) error {
	document, err := json.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to encode instance: %w", err)
	}

	// Only replace a row whose instance is terminal; an active row wins.
	result, err := p.db.ExecContext(ctx, `
		INSERT INTO workflow_instances (candidate_id, job_id, status, document, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (candidate_id, job_id) DO UPDATE
		SET status = EXCLUDED.status, document = EXCLUDED.document, updated_at = NOW()
		WHERE workflow_instances.status IN ('completed', 'rejected')`,
		instance.CandidateID, instance.JobID, string(instance.Status), document,
	)
	if err != nil {
		return persistence.NewInstanceError("SaveInstance", instance.CandidateID, instance.JobID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewInstanceError("SaveInstance", instance.CandidateID, instance.JobID, err)
	}

	if affected == 0 {
		return persistence.NewInstanceError("SaveInstance", instance.CandidateID, instance.JobID, persistence.ErrInstanceAlreadyExists)
	}

	return nil
}

func (p *Persistence) UpdateInstance(ctx context.Context, instance *models.WorkflowInstance) error {
	document, err := json.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to encode instance: %w", err)
	}

	result, err := p.db.ExecContext(ctx, `
		UPDATE workflow_instances
		SET status = $3, document = $4, updated_at = NOW()
		WHERE candidate_id = $1 AND job_id = $2`,
		instance.CandidateID, instance.JobID, string(instance.Status), document,
	)
	if err != nil {
		return persistence.NewInstanceError("UpdateInstance", instance.CandidateID, instance.JobID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewInstanceError("UpdateInstance", instance.CandidateID, instance.JobID, err)
	}

	if affected == 0 {
		return persistence.NewInstanceError("UpdateInstance", instance.CandidateID, instance.JobID, persistence.ErrInstanceNotFound)
	}

	return nil
}

func (p *Persistence) upsertDocument(ctx context.Context, table, id string, src any) error {
	document, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", table, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document`, table)

	if _, err := p.db.ExecContext(ctx, query, id, document); err != nil {
		return fmt.Errorf("failed to save %s document %s: %w", table, id, err)
	}

	return nil
}

func documentByID[T any](ctx context.Context, p *Persistence, table, id string, notFound error) (*T, error) {
	query := fmt.Sprintf("SELECT document FROM %s WHERE id = $1", table)

	return scanDocument[T](p.db.QueryRowContext(ctx, query, id), notFound)
}

func (p *Persistence) DefinitionByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return documentByID[models.WorkflowDefinition](ctx, p, "workflow_definitions", id, persistence.ErrDefinitionNotFound)
}

func (p *Persistence) SaveDefinition(ctx context.Context, definition *models.WorkflowDefinition) error {
	return p.upsertDocument(ctx, "workflow_definitions", definition.ID, definition)
}

func (p *Persistence) CandidateByID(ctx context.Context, id string) (*models.Candidate, error) {
	return documentByID[models.Candidate](ctx, p, "candidates", id, persistence.ErrCandidateNotFound)
}

func (p *Persistence) SaveCandidate(ctx context.Context, candidate *models.Candidate) error {
	return p.upsertDocument(ctx, "candidates", candidate.ID, candidate)
}

func (p *Persistence) JobPostingByID(ctx context.Context, id string) (*models.JobPosting, error) {
	return documentByID[models.JobPosting](ctx, p, "job_postings", id, persistence.ErrJobPostingNotFound)
}

func (p *Persistence) SaveJobPosting(ctx context.Context, posting *models.JobPosting) error {
	return p.upsertDocument(ctx, "job_postings", posting.ID, posting)
}

func (p *Persistence) CompanyByID(ctx context.Context, id string) (*models.Company, error) {
	return documentByID[models.Company](ctx, p, "companies", id, persistence.ErrCompanyNotFound)
}

func (p *Persistence) SaveCompany(ctx context.Context, company *models.Company) error {
	return p.upsertDocument(ctx, "companies", company.ID, company)
}

func (p *Persistence) SaveInterview(ctx context.Context, interview *models.Interview) error {
	document, err := json.Marshal(interview)
	if err != nil {
		return fmt.Errorf("failed to encode interview: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO interviews (id, candidate_id, job_id, document) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document`,
		interview.ID, interview.CandidateID, interview.JobID, document,
	)
	if err != nil {
		return fmt.Errorf("failed to save interview %s: %w", interview.ID, err)
	}

	return nil
}

func (p *Persistence) UpdateInterview(ctx context.Context, interview *models.Interview) error {
	document, err := json.Marshal(interview)
	if err != nil {
		return fmt.Errorf("failed to encode interview: %w", err)
	}

	result, err := p.db.ExecContext(ctx,
		"UPDATE interviews SET document = $2 WHERE id = $1",
		interview.ID, document,
	)
	if err != nil {
		return fmt.Errorf("failed to update interview %s: %w", interview.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update interview %s: %w", interview.ID, err)
	}

	if affected == 0 {
		return persistence.ErrInterviewNotFound
	}

	return nil
}

func (p *Persistence) InterviewsByPair(ctx context.Context, candidateID, jobID string) ([]*models.Interview, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT document FROM interviews WHERE candidate_id = $1 AND job_id = $2",
		candidateID, jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query interviews for (%s, %s): %w", candidateID, jobID, err)
	}
	defer func() { _ = rows.Close() }()

	interviews := make([]*models.Interview, 0)

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}

		interview := &models.Interview{}
		if err := json.Unmarshal(raw, interview); err != nil {
			return nil, fmt.Errorf("failed to decode interview: %w", err)
		}

		interviews = append(interviews, interview)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interviews: %w", err)
	}

	return interviews, nil
}

func (p *Persistence) SaveAssessment(ctx context.Context, assessment *models.Assessment) error {
	document, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO assessments (candidate_id, job_id, document) VALUES ($1, $2, $3)
		ON CONFLICT (candidate_id, job_id) DO UPDATE SET document = EXCLUDED.document`,
		assessment.CandidateID, assessment.JobID, document,
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment %s: %w", assessment.ID, err)
	}

	return nil
}

func (p *Persistence) UpdateAssessment(ctx context.Context, assessment *models.Assessment) error {
	if _, err := p.AssessmentByPair(ctx, assessment.CandidateID, assessment.JobID); err != nil {
		return err
	}

	return p.SaveAssessment(ctx, assessment)
}

func (p *Persistence) AssessmentByPair(ctx context.Context, candidateID, jobID string) (*models.Assessment, error) {
	row := p.db.QueryRowContext(ctx,
		"SELECT document FROM assessments WHERE candidate_id = $1 AND job_id = $2",
		candidateID, jobID,
	)

	return scanDocument[models.Assessment](row, persistence.ErrAssessmentNotFound)
}

func (p *Persistence) SaveApproval(ctx context.Context, approval *models.Approval) error {
	document, err := json.Marshal(approval)
	if err != nil {
		return fmt.Errorf("failed to encode approval: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO approvals (candidate_id, job_id, stage_id, document) VALUES ($1, $2, $3, $4)
		ON CONFLICT (candidate_id, job_id, stage_id) DO UPDATE SET document = EXCLUDED.document`,
		approval.CandidateID, approval.JobID, approval.StageID, document,
	)
	if err != nil {
		return fmt.Errorf("failed to save approval: %w", err)
	}

	return nil
}

func (p *Persistence) ApprovalByStage(ctx context.Context, candidateID, jobID, stageID string) (*models.Approval, error) {
	row := p.db.QueryRowContext(ctx,
		"SELECT document FROM approvals WHERE candidate_id = $1 AND job_id = $2 AND stage_id = $3",
		candidateID, jobID, stageID,
	)

	return scanDocument[models.Approval](row, persistence.ErrApprovalNotFound)
}
