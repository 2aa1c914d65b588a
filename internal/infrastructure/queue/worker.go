package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/gestproj/internal/application/overdue"
	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
)

// Worker runs Asynq task handlers: event delivery to sink and the overdue scan.
type Worker struct {
	srv      *asynq.Server
	mux      *asynq.ServeMux
	sink     ports.EventEmitter
	projects ports.ProjectRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewWorker creates an Asynq server and registers handlers. Call Run() to start.
// Overdue events found by a scan go straight to sink.
func NewWorker(redisOpt asynq.RedisConnOpt, sink ports.EventEmitter, projects ports.ProjectRepository, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{QueueEvents: 3, "default": 1},
		LogLevel:    asynq.WarnLevel,
	})
	w := newWorker(sink, projects, log)
	w.srv = srv
	return w
}

func newWorker(sink ports.EventEmitter, projects ports.ProjectRepository, log zerolog.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{mux: mux, sink: sink, projects: projects, log: log, now: time.Now}
	mux.HandleFunc(TypeEventDeliver, w.handleEvent)
	mux.HandleFunc(TypeOverdueScan, w.handleOverdueScan)
	return w
}

func (w *Worker) handleEvent(ctx context.Context, t *asynq.Task) error {
	var ev ports.DomainEvent
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		w.log.Error().Err(err).Msg("event task payload invalid")
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if err := w.sink.Emit(ctx, ev); err != nil {
		w.log.Warn().Err(err).Str("event", ev.Type).Str("event_id", ev.ID).Msg("event delivery failed")
		return err
	}
	w.log.Debug().Str("event", ev.Type).Str("event_id", ev.ID).Msg("event delivered")
	return nil
}

func (w *Worker) handleOverdueScan(ctx context.Context, t *asynq.Task) error {
	n, err := overdue.RunOverdueScan(ctx, w.projects, w.sink, overdue.DefaultPageSize, w.now())
	if err != nil {
		w.log.Error().Err(err).Int("emitted", n).Msg("overdue scan failed")
		return err
	}
	w.log.Info().Int("overdue", n).Msg("overdue scan done")
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
