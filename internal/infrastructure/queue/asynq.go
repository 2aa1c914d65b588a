package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
)

const (
	TypeEventDeliver = "event:deliver"
	TypeOverdueScan  = "project:overdue_scan"
)

// QueueEvents holds event deliveries; scans run on the default queue.
const QueueEvents = "events"

type TaskEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisConnOpt, log zerolog.Logger) *TaskEnqueuer {
	return &TaskEnqueuer{client: asynq.NewClient(redisOpt), log: log}
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

// EnqueueEvent queues event for delivery. The event ID doubles as the task ID so a retried
// enqueue does not deliver twice.
func (q *TaskEnqueuer) EnqueueEvent(ctx context.Context, event ports.DomainEvent) error {
	task, err := newEventTask(event)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, task, asynq.TaskID(event.ID), asynq.Queue(QueueEvents), asynq.MaxRetry(10))
	if err != nil {
		q.log.Warn().Err(err).Str("event", event.Type).Str("event_id", event.ID).Msg("enqueue event failed")
		return err
	}
	return nil
}

// EnqueueOverdueScan queues one overdue scan. Scans already pending in the last minute are merged.
func (q *TaskEnqueuer) EnqueueOverdueScan(ctx context.Context) error {
	_, err := q.client.EnqueueContext(ctx, newOverdueScanTask(), asynq.Unique(time.Minute))
	if err != nil {
		q.log.Warn().Err(err).Msg("enqueue overdue scan failed")
		return err
	}
	return nil
}

func newEventTask(event ports.DomainEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEventDeliver, payload), nil
}

func newOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TypeOverdueScan, nil)
}

var _ ports.TaskEnqueuer = (*TaskEnqueuer)(nil)
