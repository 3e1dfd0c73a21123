package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/platform/config"
)

func schedulerConfig(addr string) *config.Config {
	return &config.Config{
		RedisURL:           "redis://" + addr,
		AsynqQueueName:     "leads",
		AsynqConcurrency:   2,
		OutboxPollInterval: 10 * time.Millisecond,
		OutboxBatchSize:    10,
	}
}

func TestEnqueueOutboxDelivery(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(schedulerConfig(mr.Addr()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	err = client.EnqueueOutboxDelivery(context.Background(), uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	found := false
	for _, key := range mr.Keys() {
		if strings.HasPrefix(key, "asynq") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("no asynq keys written, keys = %v", mr.Keys())
	}
}

func TestRedisConnOptRejectsBadURL(t *testing.T) {
	cfg := schedulerConfig("localhost:6379")
	cfg.RedisURL = "not a url"
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("expected error for malformed redis url")
	}
}

func TestTaskPayloadRoundTrip(t *testing.T) {
	id := uuid.New()
	task, err := NewOutboxDeliverTask(id)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskOutboxDeliver {
		t.Fatalf("task type = %s", task.Type())
	}
	payload, err := ParseOutboxDeliverPayload(task)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.RecordID != id {
		t.Fatalf("record id = %s, want %s", payload.RecordID, id)
	}
}
