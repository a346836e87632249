package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/admin-auth/internal/model"
)

// ErrQueueEmpty is returned by Dequeue when no job arrived within the wait.
var ErrQueueEmpty = errors.New("mail queue empty")

// ErrQueueFull is returned by LocalMailQueue when the buffer is exhausted.
var ErrQueueFull = errors.New("mail queue full")

// MailQueue carries reset mail jobs from the request path to ResetMailWorker.
type MailQueue interface {
	Enqueue(ctx context.Context, job model.ResetMailJob) error
	// Dequeue blocks up to wait for the next job.
	Dequeue(ctx context.Context, wait time.Duration) (model.ResetMailJob, error)
	// TryDequeue returns the next job without blocking.
	TryDequeue(ctx context.Context) (model.ResetMailJob, error)
}

// RedisMailQueue is a FIFO list in Redis: RPUSH to enqueue, BLPOP to consume.
// The list expires with its newest job so codes do not outlive their TTL there.
type RedisMailQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisMailQueue creates a queue on the given list key.
func NewRedisMailQueue(rdb *redis.Client, key string) *RedisMailQueue {
	return &RedisMailQueue{rdb: rdb, key: key}
}

func (q *RedisMailQueue) Enqueue(ctx context.Context, job model.ResetMailJob) error {
	data, err := encodeJob(job)
	if err != nil {
		return err
	}
	// Codes share one TTL, so the newest job's expiry bounds every job in the list.
	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, q.key, data)
		pipe.ExpireAt(ctx, q.key, job.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("push mail job: %w", err)
	}
	return nil
}

func (q *RedisMailQueue) Dequeue(ctx context.Context, wait time.Duration) (model.ResetMailJob, error) {
	result, err := q.rdb.BLPop(ctx, wait, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ResetMailJob{}, ErrQueueEmpty
		}
		return model.ResetMailJob{}, err
	}
	if len(result) < 2 {
		return model.ResetMailJob{}, ErrQueueEmpty
	}
	return decodeJob(result[1])
}

func (q *RedisMailQueue) TryDequeue(ctx context.Context) (model.ResetMailJob, error) {
	data, err := q.rdb.LPop(ctx, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ResetMailJob{}, ErrQueueEmpty
		}
		return model.ResetMailJob{}, err
	}
	return decodeJob(data)
}

// LocalMailQueue is an in-process buffered queue used when Redis is not configured.
// Jobs are lost if the process exits before the worker drains them.
type LocalMailQueue struct {
	jobs chan model.ResetMailJob
}

// NewLocalMailQueue creates a queue holding up to size jobs.
func NewLocalMailQueue(size int) *LocalMailQueue {
	if size <= 0 {
		size = 1
	}
	return &LocalMailQueue{jobs: make(chan model.ResetMailJob, size)}
}

// Enqueue never blocks; a full buffer returns ErrQueueFull.
func (q *LocalMailQueue) Enqueue(ctx context.Context, job model.ResetMailJob) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *LocalMailQueue) Dequeue(ctx context.Context, wait time.Duration) (model.ResetMailJob, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case job := <-q.jobs:
		return job, nil
	case <-timer.C:
		return model.ResetMailJob{}, ErrQueueEmpty
	case <-ctx.Done():
		return model.ResetMailJob{}, ctx.Err()
	}
}

func (q *LocalMailQueue) TryDequeue(ctx context.Context) (model.ResetMailJob, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	default:
		return model.ResetMailJob{}, ErrQueueEmpty
	}
}

func encodeJob(job model.ResetMailJob) (string, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("encode mail job: %w", err)
	}
	return string(data), nil
}

func decodeJob(data string) (model.ResetMailJob, error) {
	var job model.ResetMailJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return model.ResetMailJob{}, fmt.Errorf("decode mail job: %w", err)
	}
	return job, nil
}
