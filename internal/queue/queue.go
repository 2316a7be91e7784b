// Package queue moves background jobs from the API to the worker.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobNotify asks the worker to fan a notification out to an audience.
const JobNotify = "notify"

// Job represents work to be processed.
type Job struct {
	Type string          `json:"type"`
	Body json.RawMessage `json:"body,omitempty"`
}

// NewJob marshals payload into a job body.
func NewJob(jobType string, payload any) (Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Job{}, err
	}
	return Job{Type: jobType, Body: body}, nil
}

// Queue is the abstraction over different backends.
type Queue interface {
	Publish(ctx context.Context, job Job) error
	Consume(ctx context.Context) (<-chan Job, error)
}

// InMemory is a minimal channel-backed queue for dev/testing.
type InMemory struct {
	ch chan Job
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan Job, size)}
}

// Publish enqueues a job.
func (q *InMemory) Publish(ctx context.Context, job Job) error {
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns a channel for workers.
func (q *InMemory) Consume(ctx context.Context) (<-chan Job, error) {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			select {
			case job := <-q.ch:
				out <- job
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue implements a simple Redis list-backed queue.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue using LPUSH/BRPOP semantics.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "eduonline:jobs"
	}
	return &RedisQueue{client: client, key: key}
}

// Publish enqueues a job.
func (q *RedisQueue) Publish(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, data).Err()
}

// Consume streams jobs using BRPOP.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan Job, error) {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if len(res) == 2 {
				var job Job
				if err := json.Unmarshal([]byte(res[1]), &job); err == nil {
					out <- job
				}
			}
		}
	}()
	return out, nil
}
