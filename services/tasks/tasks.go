package tasks

import (
	"context"
	"encoding/json"
	"time"

	"pawcare/models"

	"github.com/hibiken/asynq"
)

const (
	TypeSendReminder  = "appointment:reminder"
	TypeExpirePending = "appointment:expire_pending"
)

// NewReminderTask builds a scheduled appointment-reminder task.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// NewExpirePendingTask builds a scheduled reap task for a pending
// appointment whose checkout was never completed.
func NewExpirePendingTask(payload models.ExpirePendingPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeExpirePending, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// Scheduler enqueues durable scheduled tasks onto the redis-backed queue.
// It satisfies scheduling.TaskScheduler.
type Scheduler struct {
	client *asynq.Client
}

// NewScheduler creates a Scheduler over the given redis connection options.
func NewScheduler(redisOpt asynq.RedisClientOpt) *Scheduler {
	return &Scheduler{client: asynq.NewClient(redisOpt)}
}

func (s *Scheduler) ScheduleReminder(ctx context.Context, p models.ReminderPayload, fireAt time.Time) error {
	task, opts, err := NewReminderTask(p, fireAt)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, opts...)
	return err
}

func (s *Scheduler) ScheduleExpirePending(ctx context.Context, p models.ExpirePendingPayload, fireAt time.Time) error {
	task, opts, err := NewExpirePendingTask(p, fireAt)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, opts...)
	return err
}

// Close releases the underlying queue client.
func (s *Scheduler) Close() error {
	return s.client.Close()
}
