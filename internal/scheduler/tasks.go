// Package scheduler moves outbox records through Redis-backed delivery.
// The poller claims due records and enqueues asynq tasks; the worker
// consumes them and sends the mail.
package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskOutboxDeliver = "notification:outbox_deliver"

type OutboxDeliverPayload struct {
	RecordID uuid.UUID `json:"recordId"`
}

func NewOutboxDeliverTask(recordID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(OutboxDeliverPayload{RecordID: recordID})
	if err != nil {
		return nil, fmt.Errorf("marshal outbox task payload: %w", err)
	}
	return asynq.NewTask(TaskOutboxDeliver, payload), nil
}

func ParseOutboxDeliverPayload(t *asynq.Task) (OutboxDeliverPayload, error) {
	var payload OutboxDeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return OutboxDeliverPayload{}, fmt.Errorf("unmarshal outbox task payload: %w", err)
	}
	return payload, nil
}
