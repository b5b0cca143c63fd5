package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string                     { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool               { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string               { return "terraflow" }
func (c testSchedulerConfig) GetAsynqConcurrency() int                { return 1 }
func (c testSchedulerConfig) GetAttentionScanInterval() time.Duration { return time.Hour }

func newTestClient(t *testing.T) (*Client, *asynq.Inspector) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := testSchedulerConfig{redisURL: "redis://" + mr.Addr()}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { inspector.Close() })

	return client, inspector
}

func TestEnqueueHotLeadNotify(t *testing.T) {
	client, inspector := newTestClient(t)

	payload := HotLeadNotifyPayload{
		LeadID:   uuid.NewString(),
		UserID:   uuid.NewString(),
		LeadName: "Hot Prospect",
		AIScore:  91,
	}
	if err := client.EnqueueHotLeadNotify(context.Background(), payload); err != nil {
		t.Fatalf("EnqueueHotLeadNotify: %v", err)
	}

	tasks, err := inspector.ListPendingTasks("terraflow")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("pending tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Type != TaskHotLeadNotify {
		t.Errorf("task type = %q, want %q", tasks[0].Type, TaskHotLeadNotify)
	}

	got, err := ParseHotLeadNotifyPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("ParseHotLeadNotifyPayload: %v", err)
	}
	if got != payload {
		t.Errorf("payload round-trip = %+v, want %+v", got, payload)
	}
}

func TestEnqueueAttentionScan(t *testing.T) {
	client, inspector := newTestClient(t)

	if err := client.EnqueueAttentionScan(context.Background()); err != nil {
		t.Fatalf("EnqueueAttentionScan: %v", err)
	}

	tasks, err := inspector.ListPendingTasks("terraflow")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Type != TaskAttentionScan {
		t.Fatalf("expected one pending %s task, got %d tasks", TaskAttentionScan, len(tasks))
	}
}

func TestNilClientEnqueueIsNoOp(t *testing.T) {
	var client *Client

	if err := client.EnqueueAttentionScan(context.Background()); err != nil {
		t.Fatalf("nil client enqueue: %v", err)
	}
	if err := client.EnqueueHotLeadNotify(context.Background(), HotLeadNotifyPayload{}); err != nil {
		t.Fatalf("nil client enqueue: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("nil client close: %v", err)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected an error for a missing redis url")
	}
}
