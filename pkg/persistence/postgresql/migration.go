package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Workflow instances, one row per (candidate, job) pair. The full
			-- instance document including append-only history lives in JSONB;
			-- the status column exists for the active-instance conflict check
			-- and operator queries.
			CREATE TABLE workflow_instances (
				candidate_id VARCHAR(255) NOT NULL,
				job_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('active', 'completed', 'paused', 'rejected')),
				document JSONB NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (candidate_id, job_id)
			);

			CREATE INDEX idx_workflow_instances_status ON workflow_instances(status);

			CREATE TABLE workflow_definitions (
				id VARCHAR(255) PRIMARY KEY,
				document JSONB NOT NULL
			);

			CREATE TABLE candidates (
				id VARCHAR(255) PRIMARY KEY,
				document JSONB NOT NULL
			);

			CREATE TABLE job_postings (
				id VARCHAR(255) PRIMARY KEY,
				document JSONB NOT NULL
			);

			CREATE TABLE companies (
				id VARCHAR(255) PRIMARY KEY,
				document JSONB NOT NULL
			);

			CREATE TABLE interviews (
				id VARCHAR(255) PRIMARY KEY,
				candidate_id VARCHAR(255) NOT NULL,
				job_id VARCHAR(255) NOT NULL,
				document JSONB NOT NULL
			);

			CREATE INDEX idx_interviews_pair ON interviews(candidate_id, job_id);

			CREATE TABLE assessments (
				candidate_id VARCHAR(255) NOT NULL,
				job_id VARCHAR(255) NOT NULL,
				document JSONB NOT NULL,
				PRIMARY KEY (candidate_id, job_id)
			);

			CREATE TABLE approvals (
				candidate_id VARCHAR(255) NOT NULL,
				job_id VARCHAR(255) NOT NULL,
				stage_id VARCHAR(255) NOT NULL,
				document JSONB NOT NULL,
				PRIMARY KEY (candidate_id, job_id, stage_id)
			);
		`,
	}
}
