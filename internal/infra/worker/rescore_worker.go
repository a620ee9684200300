package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/edureach360/leads-api/internal/usecase"
)

const DefaultRescoreSchedule = "0 2 * * *"

// BatchRescorer is satisfied by *usecase.RescoreAllUseCase.
type BatchRescorer interface {
	Execute(ctx context.Context) (usecase.RescoreResult, error)
}

// RescoreWorker runs the batch rescoring on a cron schedule. Runs never
// overlap; a tick that fires while a run is in progress is skipped.
type RescoreWorker struct {
	rescorer BatchRescorer
	schedule string
	logger   *slog.Logger
	onRun    func(result usecase.RescoreResult, err error)

	mu      sync.Mutex
	running bool
}

func NewRescoreWorker(rescorer BatchRescorer, schedule string, logger *slog.Logger) *RescoreWorker {
	if schedule == "" {
		schedule = DefaultRescoreSchedule
	}
	return &RescoreWorker{rescorer: rescorer, schedule: schedule, logger: logger}
}

// OnRun registers a hook called after every completed run (metrics).
func (w *RescoreWorker) OnRun(fn func(result usecase.RescoreResult, err error)) {
	w.onRun = fn
}

// Start blocks until ctx is done, then waits for an in-flight run to finish.
func (w *RescoreWorker) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid rescore schedule %q: %w", w.schedule, err)
	}

	w.logger.Info("rescore worker started", slog.String("schedule", w.schedule))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	w.logger.Info("rescore worker stopped")
	return nil
}

func (w *RescoreWorker) RunOnce(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Warn("previous rescore run still in progress, skipping")
		return
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	result, err := w.rescorer.Execute(ctx)
	if err != nil {
		w.logger.Error("scheduled rescore failed", slog.String("error", err.Error()))
	}
	if w.onRun != nil {
		w.onRun(result, err)
	}
}
