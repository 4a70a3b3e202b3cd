package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string             { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool       { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string       { return "analysis" }
func (c testSchedulerConfig) GetAsynqConcurrency() int        { return 2 }
func (c testSchedulerConfig) GetSweepInterval() time.Duration { return time.Minute }
func (c testSchedulerConfig) GetSweepBatchSize() int          { return 20 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestEnqueueSweep(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if err := client.EnqueueSweep(context.Background(), SweepPendingPayload{Limit: 20}); err != nil {
		t.Fatalf("EnqueueSweep: %v", err)
	}

	// asynq stores pending tasks under asynq:{<queue>}:pending.
	if ids, err := srv.List("asynq:{analysis}:pending"); err != nil || len(ids) != 1 {
		t.Fatalf("pending list = %v (err %v), want one task", ids, err)
	}
}

func TestSweepPendingPayloadRoundTrip(t *testing.T) {
	task, err := NewSweepPendingTask(SweepPendingPayload{Limit: 7})
	if err != nil {
		t.Fatalf("NewSweepPendingTask: %v", err)
	}
	if task.Type() != TaskSweepPending {
		t.Errorf("task type = %s", task.Type())
	}
	payload, err := ParseSweepPendingPayload(task)
	if err != nil {
		t.Fatalf("ParseSweepPendingPayload: %v", err)
	}
	if payload.Limit != 7 {
		t.Errorf("limit = %d, want 7", payload.Limit)
	}
}
