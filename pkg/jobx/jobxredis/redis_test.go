package jobxredis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Abraxas-365/saenggibu/pkg/jobx"
	"github.com/Abraxas-365/saenggibu/pkg/jobx/jobxredis"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Runs against a live server only: JOBX_TEST_REDIS_ADDR=localhost:6379.
func newQueue(t *testing.T) *jobxredis.RedisQueue {
	t.Helper()
	addr := os.Getenv("JOBX_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("JOBX_TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	return jobxredis.NewRedisQueue(rdb, jobxredis.WithPrefix("test:"+uuid.NewString()))
}

func TestRedisQueue_Lifecycle(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()

	id, err := q.Enqueue(ctx, jobx.Job{Type: "record.parse", Queue: "default", MaxRetries: 2})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	info, err := q.Dequeue(ctx, []string{"default"}, time.Second)
	if err != nil || info == nil || info.ID != id {
		t.Fatalf("Dequeue = %+v, %v", info, err)
	}
	if info.Status != jobx.JobStatusActive || info.Attempts != 1 {
		t.Errorf("dequeued = %+v", info)
	}

	retry, err := q.Fail(ctx, id, "boom")
	if err != nil || !retry {
		t.Fatalf("Fail = %v, %v", retry, err)
	}
	if err := q.Retry(ctx, id, 0); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if err := q.PromoteScheduled(ctx, []string{"default"}); err != nil {
		t.Fatalf("PromoteScheduled: %v", err)
	}

	info, err = q.Dequeue(ctx, []string{"default"}, time.Second)
	if err != nil || info == nil {
		t.Fatalf("second Dequeue = %+v, %v", info, err)
	}
	if err := q.Complete(ctx, id, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	got, err := q.GetJob(ctx, id)
	if err != nil || got.Status != jobx.JobStatusCompleted || got.Attempts != 2 {
		t.Errorf("final = %+v, %v", got, err)
	}
}

func TestRedisQueue_GetJobNotFound(t *testing.T) {
	q := newQueue(t)
	if _, err := q.GetJob(context.Background(), "missing"); err == nil {
		t.Fatal("expected not found")
	}
}
