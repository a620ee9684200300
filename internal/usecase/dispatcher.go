package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultTaskTimeout = 30 * time.Second

// NotificationTask is a unit of best-effort work detached from the request.
type NotificationTask struct {
	Name   string
	LeadID string
	Run    func(ctx context.Context) error
}

// Dispatcher schedules notification tasks. Dispatch never blocks on the task
// and never reports its outcome to the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, task NotificationTask)
}

// AsyncDispatcher runs each task on its own goroutine with a context that
// survives request cancellation but is bounded by a timeout.
type AsyncDispatcher struct {
	logger   *slog.Logger
	timeout  time.Duration
	onResult func(task string, err error)
	wg       sync.WaitGroup
}

func NewAsyncDispatcher(logger *slog.Logger, timeout time.Duration) *AsyncDispatcher {
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	return &AsyncDispatcher{logger: logger, timeout: timeout}
}

// OnResult registers a hook observing every finished task (metrics).
func (d *AsyncDispatcher) OnResult(fn func(task string, err error)) {
	d.onResult = fn
}

func (d *AsyncDispatcher) Dispatch(ctx context.Context, task NotificationTask) {
	if task.Run == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		err := d.run(taskCtx, task)
		if err != nil {
			d.logger.Error("notification task failed",
				slog.String("task", task.Name),
				slog.String("lead_id", task.LeadID),
				slog.String("error", err.Error()),
			)
		} else {
			d.logger.Debug("notification task done",
				slog.String("task", task.Name),
				slog.String("lead_id", task.LeadID),
			)
		}
		if d.onResult != nil {
			d.onResult(task.Name, err)
		}
	}()
}

func (d *AsyncDispatcher) run(ctx context.Context, task NotificationTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task.Run(ctx)
}

// Wait blocks until every dispatched task has finished.
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}
