package batches

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisBatchTTL = 24 * time.Hour

// RedisStore persists batch state in Redis so status polls can be served
// by any process. Batches are owned by a single orchestration, so
// read-modify-write on the job key does not race with other writers.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store over an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromURL dials Redis using a redis:// URL and verifies
// connectivity.
func NewRedisStoreFromURL(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client), nil
}

func jobKey(batchID string) string { return "batch:" + batchID + ":job" }
func resultsKey(batchID string) string { return "batch:" + batchID + ":results" }

// Create registers a new batch job.
func (s *RedisStore) Create(ctx context.Context, job Job) error {
	if job.Errors == nil {
		job.Errors = []string{}
	}
	return s.setJob(ctx, job)
}

// Get returns the current state of a batch job.
func (s *RedisStore) Get(ctx context.Context, batchID string) (Job, error) {
	payload, err := s.client.Get(ctx, jobKey(batchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("redis get job: %w", err)
	}
	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return Job{}, fmt.Errorf("unmarshal job: %w", err)
	}
	return job, nil
}

// AppendProgress advances the processed counter and accumulates errors.
func (s *RedisStore) AppendProgress(ctx context.Context, batchID string, processed int, errs []string) error {
	job, err := s.Get(ctx, batchID)
	if err != nil {
		return err
	}
	job.ProcessedRecords += processed
	if job.ProcessedRecords > job.TotalRecords {
		job.ProcessedRecords = job.TotalRecords
	}
	job.Errors = append(job.Errors, errs...)
	return s.setJob(ctx, job)
}

// SetResults stores the finished result set for a batch.
func (s *RedisStore) SetResults(ctx context.Context, batchID string, rs ResultSet) error {
	if _, err := s.Get(ctx, batchID); err != nil {
		return err
	}
	payload, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := s.client.Set(ctx, resultsKey(batchID), payload, redisBatchTTL).Err(); err != nil {
		return fmt.Errorf("redis set results: %w", err)
	}
	return nil
}

// Complete transitions a batch to its terminal status.
func (s *RedisStore) Complete(ctx context.Context, batchID string, status string) error {
	job, err := s.Get(ctx, batchID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	job.Status = status
	job.CompletedAt = &now
	return s.setJob(ctx, job)
}

// Results returns the stored result set, or ErrNotReady while the batch
// is still processing.
func (s *RedisStore) Results(ctx context.Context, batchID string) (ResultSet, error) {
	if _, err := s.Get(ctx, batchID); err != nil {
		return ResultSet{}, err
	}
	payload, err := s.client.Get(ctx, resultsKey(batchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ResultSet{}, ErrNotReady
	}
	if err != nil {
		return ResultSet{}, fmt.Errorf("redis get results: %w", err)
	}
	var rs ResultSet
	if err := json.Unmarshal(payload, &rs); err != nil {
		return ResultSet{}, fmt.Errorf("unmarshal results: %w", err)
	}
	return rs, nil
}

func (s *RedisStore) setJob(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := s.client.Set(ctx, jobKey(job.BatchID), payload, redisBatchTTL).Err(); err != nil {
		return fmt.Errorf("redis set job: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
