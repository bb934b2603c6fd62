package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/pqui/archstudio/internal/model"
)

const (
	// ArchiveLeadTask is scheduled each time a contact form is submitted.
	ArchiveLeadTask = "contact:archive"
)

// ArchivePayload is serialized into the task payload so the worker can write
// the lead to object storage without reading it back from the data source.
type ArchivePayload struct {
	Submission model.ContactSubmission `json:"submission"`
}

// NewArchiveTask builds the asynq task for a submission.
func NewArchiveTask(sub model.ContactSubmission) (*asynq.Task, error) {
	data, err := json.Marshal(ArchivePayload{Submission: sub})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(ArchiveLeadTask, data, asynq.MaxRetry(5), asynq.TaskID(sub.ID)), nil
}

// DecodeArchive reads the payload of an ArchiveLeadTask.
func DecodeArchive(task *asynq.Task) (ArchivePayload, error) {
	var payload ArchivePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}

// Enqueuer is the part of *asynq.Client the dispatcher uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher hands lead archives to the asynq worker.
type Dispatcher struct {
	client Enqueuer
}

// NewDispatcher wraps an asynq client.
func NewDispatcher(client Enqueuer) *Dispatcher {
	return &Dispatcher{client: client}
}

// Dispatch enqueues an archive job for sub.
func (d *Dispatcher) Dispatch(ctx context.Context, sub model.ContactSubmission) error {
	task, err := NewArchiveTask(sub)
	if err != nil {
		return err
	}
	if _, err := d.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue archive task: %w", err)
	}
	return nil
}

// RedisOpt builds the asynq connection options shared by client and worker.
func RedisOpt(addr, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: addr, Password: password, DB: db}
}
