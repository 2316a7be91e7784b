package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestInMemoryPublishConsume(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	job, err := NewJob(JobNotify, map[string]string{"title": "hello"})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if err := q.Publish(ctx, job); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	jobs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}

	select {
	case got := <-jobs:
		if got.Type != JobNotify {
			t.Fatalf("job type = %q, want %q", got.Type, JobNotify)
		}
		var payload map[string]string
		if err := json.Unmarshal(got.Body, &payload); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if payload["title"] != "hello" {
			t.Fatalf("payload = %v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no job delivered")
	}
}

func TestInMemoryPublishRespectsCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := NewInMemory(0)
	if err := q.Publish(ctx, Job{Type: JobNotify}); err == nil {
		t.Fatal("expected publish on cancelled context to fail")
	}
}
