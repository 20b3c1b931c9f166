// Package redis provides the Redis-backed queue store used in deployments
// where jobs must survive worker restarts.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/queue"
)

const keyPrefix = "hireflow:queue"

// Store keeps waiting jobs in FIFO lists per (queue, priority), delayed jobs
// in a sorted set scored by availability time, active jobs in a hash, and
// finished jobs in sorted sets scored by finish time so cleanup is a range
// removal.
type Store struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewStore connects to Redis using the connection map (addr, password, db).
func NewStore(ctx context.Context, logger *slog.Logger, connection map[string]string) (*Store, error) {
	addr := connection["addr"]
	if addr == "" {
		addr = "localhost:6379"
	}

	db := 0

	if dbStr := connection["db"]; dbStr != "" {
		parsed, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid db value: %w", err)
		}

		db = parsed
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: connection["password"],
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", addr, "db", db)

	return &Store{client: client, logger: logger.With("module", "redis_queue_store")}, nil
}

func laneKey(queueName string, priority models.JobPriority) string {
	return fmt.Sprintf("%s:%s:waiting:%s", keyPrefix, queueName, priority)
}

func delayedKey(queueName string) string {
	return fmt.Sprintf("%s:%s:delayed", keyPrefix, queueName)
}

func activeKey(queueName string) string {
	return fmt.Sprintf("%s:%s:active", keyPrefix, queueName)
}

func finishedKey(queueName string, status models.JobStatus) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, queueName, status)
}

func encodeJob(job *models.ActionJob) (string, error) {
	raw, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}

	return string(raw), nil
}

func (s *Store) Enqueue(ctx context.Context, job *models.ActionJob) error {
	job.Status = models.JobStatusWaiting

	raw, err := encodeJob(job)
	if err != nil {
		return err
	}

	if job.AvailableAt.After(time.Now()) {
		err = s.client.ZAdd(ctx, delayedKey(job.Queue), redis.Z{
			Score:  float64(job.AvailableAt.UnixMilli()),
			Member: raw,
		}).Err()
	} else {
		err = s.client.RPush(ctx, laneKey(job.Queue, job.Priority), raw).Err()
	}

	if err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}

	return nil
}

// promoteDelayed moves jobs whose availability time has passed from the
// delayed set into their priority lane.
func (s *Store) promoteDelayed(ctx context.Context, queueName string) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)

	members, err := s.client.ZRangeByScore(ctx, delayedKey(queueName), &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read delayed jobs: %w", err)
	}

	for _, member := range members {
		removed, err := s.client.ZRem(ctx, delayedKey(queueName), member).Result()
		if err != nil {
			return fmt.Errorf("failed to promote delayed job: %w", err)
		}

		// Another worker promoted it first.
		if removed == 0 {
			continue
		}

		job := &models.ActionJob{}
		if err := json.Unmarshal([]byte(member), job); err != nil {
			s.logger.ErrorContext(ctx, "Dropping undecodable delayed job", "error", err)

			continue
		}

		if err := s.client.RPush(ctx, laneKey(queueName, job.Priority), member).Err(); err != nil {
			return fmt.Errorf("failed to requeue delayed job %s: %w", job.ID, err)
		}
	}

	return nil
}

func (s *Store) Dequeue(ctx context.Context, queueName string, priorities []models.JobPriority) (*models.ActionJob, error) {
	if err := s.promoteDelayed(ctx, queueName); err != nil {
		return nil, err
	}

	for _, priority := range priorities {
		raw, err := s.client.LPop(ctx, laneKey(queueName, priority)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}

			return nil, fmt.Errorf("failed to pop job from queue %s: %w", queueName, err)
		}

		job := &models.ActionJob{}
		if err := json.Unmarshal([]byte(raw), job); err != nil {
			return nil, fmt.Errorf("failed to decode job: %w", err)
		}

		job.Status = models.JobStatusActive
		startedAt := time.Now()
		job.StartedAt = &startedAt

		activeRaw, err := encodeJob(job)
		if err != nil {
			return nil, err
		}

		if err := s.client.HSet(ctx, activeKey(queueName), job.ID, activeRaw).Err(); err != nil {
			return nil, fmt.Errorf("failed to mark job %s active: %w", job.ID, err)
		}

		return job, nil
	}

	return nil, nil
}

func (s *Store) removeActive(ctx context.Context, job *models.ActionJob) error {
	removed, err := s.client.HDel(ctx, activeKey(job.Queue), job.ID).Result()
	if err != nil {
		return fmt.Errorf("failed to remove active job %s: %w", job.ID, err)
	}

	if removed == 0 {
		return queue.ErrJobNotFound
	}

	return nil
}

func (s *Store) finish(ctx context.Context, job *models.ActionJob, status models.JobStatus) error {
	if err := s.removeActive(ctx, job); err != nil {
		return err
	}

	job.Status = status
	finishedAt := time.Now()
	job.FinishedAt = &finishedAt

	raw, err := encodeJob(job)
	if err != nil {
		return err
	}

	err = s.client.ZAdd(ctx, finishedKey(job.Queue, status), redis.Z{
		Score:  float64(finishedAt.UnixMilli()),
		Member: raw,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to record finished job %s: %w", job.ID, err)
	}

	return nil
}

func (s *Store) Complete(ctx context.Context, job *models.ActionJob) error {
	return s.finish(ctx, job, models.JobStatusCompleted)
}

func (s *Store) Fail(ctx context.Context, job *models.ActionJob) error {
	return s.finish(ctx, job, models.JobStatusFailed)
}

func (s *Store) Retry(ctx context.Context, job *models.ActionJob, at time.Time) error {
	if err := s.removeActive(ctx, job); err != nil {
		return err
	}

	job.Status = models.JobStatusWaiting
	job.AvailableAt = at
	job.StartedAt = nil

	raw, err := encodeJob(job)
	if err != nil {
		return err
	}

	err = s.client.ZAdd(ctx, delayedKey(job.Queue), redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: raw,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to reschedule job %s: %w", job.ID, err)
	}

	return nil
}

func (s *Store) Stats(ctx context.Context, queueName string) (queue.Stats, error) {
	stats := queue.Stats{Queue: queueName}

	for _, priority := range models.PrioritiesDescending() {
		length, err := s.client.LLen(ctx, laneKey(queueName, priority)).Result()
		if err != nil {
			return stats, fmt.Errorf("failed to count waiting jobs: %w", err)
		}

		stats.Waiting += int(length)
	}

	delayed, err := s.client.ZCard(ctx, delayedKey(queueName)).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to count delayed jobs: %w", err)
	}

	stats.Waiting += int(delayed)

	active, err := s.client.HLen(ctx, activeKey(queueName)).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to count active jobs: %w", err)
	}

	stats.Active = int(active)

	completed, err := s.client.ZCard(ctx, finishedKey(queueName, models.JobStatusCompleted)).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to count completed jobs: %w", err)
	}

	stats.Completed = int(completed)

	failed, err := s.client.ZCard(ctx, finishedKey(queueName, models.JobStatusFailed)).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to count failed jobs: %w", err)
	}

	stats.Failed = int(failed)

	return stats, nil
}

func (s *Store) Cleanup(ctx context.Context, completedBefore, failedBefore time.Time) (int, error) {
	removed := 0

	for _, queueName := range queue.QueueNames() {
		completed, err := s.client.ZRemRangeByScore(ctx,
			finishedKey(queueName, models.JobStatusCompleted),
			"-inf", strconv.FormatInt(completedBefore.UnixMilli(), 10),
		).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to clean completed jobs: %w", err)
		}

		failed, err := s.client.ZRemRangeByScore(ctx,
			finishedKey(queueName, models.JobStatusFailed),
			"-inf", strconv.FormatInt(failedBefore.UnixMilli(), 10),
		).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to clean failed jobs: %w", err)
		}

		removed += int(completed + failed)
	}

	return removed, nil
}

func (s *Store) Close(_ context.Context) error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	return nil
}
