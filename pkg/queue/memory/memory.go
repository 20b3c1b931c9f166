// Package memory provides an in-memory queue store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/queue"
)

type lane struct {
	jobs []*models.ActionJob
}

// Store keeps all jobs in process memory. Waiting jobs live in FIFO lanes per
// (queue, priority); finished jobs are retained until Cleanup.
type Store struct {
	mu        sync.Mutex
	waiting   map[string]map[models.JobPriority]*lane
	active    map[string]*models.ActionJob
	completed []*models.ActionJob
	failed    []*models.ActionJob
}

func NewStore() *Store {
	return &Store{
		waiting: make(map[string]map[models.JobPriority]*lane),
		active:  make(map[string]*models.ActionJob),
	}
}

func (s *Store) laneFor(queueName string, priority models.JobPriority) *lane {
	lanes, ok := s.waiting[queueName]
	if !ok {
		lanes = make(map[models.JobPriority]*lane)
		s.waiting[queueName] = lanes
	}

	l, ok := lanes[priority]
	if !ok {
		l = &lane{}
		lanes[priority] = l
	}

	return l
}

func (s *Store) Enqueue(_ context.Context, job *models.ActionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job.Status = models.JobStatusWaiting
	l := s.laneFor(job.Queue, job.Priority)
	l.jobs = append(l.jobs, job)

	return nil
}

func (s *Store) Dequeue(_ context.Context, queueName string, priorities []models.JobPriority) (*models.ActionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	for _, priority := range priorities {
		l := s.laneFor(queueName, priority)
		for i, job := range l.jobs {
			if job.AvailableAt.After(now) {
				continue
			}

			l.jobs = append(l.jobs[:i], l.jobs[i+1:]...)
			job.Status = models.JobStatusActive
			startedAt := now
			job.StartedAt = &startedAt
			s.active[job.ID] = job

			return job, nil
		}
	}

	return nil, nil
}

func (s *Store) Complete(_ context.Context, job *models.ActionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[job.ID]; !ok {
		return queue.ErrJobNotFound
	}

	delete(s.active, job.ID)

	job.Status = models.JobStatusCompleted
	finishedAt := time.Now()
	job.FinishedAt = &finishedAt
	s.completed = append(s.completed, job)

	return nil
}

func (s *Store) Retry(_ context.Context, job *models.ActionJob, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[job.ID]; !ok {
		return queue.ErrJobNotFound
	}

	delete(s.active, job.ID)

	job.Status = models.JobStatusWaiting
	job.AvailableAt = at
	job.StartedAt = nil
	l := s.laneFor(job.Queue, job.Priority)
	l.jobs = append(l.jobs, job)

	return nil
}

func (s *Store) Fail(_ context.Context, job *models.ActionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[job.ID]; !ok {
		return queue.ErrJobNotFound
	}

	delete(s.active, job.ID)

	job.Status = models.JobStatusFailed
	finishedAt := time.Now()
	job.FinishedAt = &finishedAt
	s.failed = append(s.failed, job)

	return nil
}

func (s *Store) Stats(_ context.Context, queueName string) (queue.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := queue.Stats{Queue: queueName}

	for _, l := range s.waiting[queueName] {
		stats.Waiting += len(l.jobs)
	}

	for _, job := range s.active {
		if job.Queue == queueName {
			stats.Active++
		}
	}

	for _, job := range s.completed {
		if job.Queue == queueName {
			stats.Completed++
		}
	}

	for _, job := range s.failed {
		if job.Queue == queueName {
			stats.Failed++
		}
	}

	return stats, nil
}

func (s *Store) Cleanup(_ context.Context, completedBefore, failedBefore time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	s.completed, removed = retain(s.completed, completedBefore, removed)
	s.failed, removed = retain(s.failed, failedBefore, removed)

	return removed, nil
}

func retain(jobs []*models.ActionJob, before time.Time, removed int) ([]*models.ActionJob, int) {
	kept := jobs[:0]

	for _, job := range jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(before) {
			removed++

			continue
		}

		kept = append(kept, job)
	}

	return kept, removed
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
