package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/metrics"
)

const dequeueErrorBackoff = time.Second

// Handler executes one task.
type Handler func(ctx context.Context, task Task) error

type queueReader interface {
	Dequeue(ctx context.Context, queue string, timeout time.Duration) ([]byte, error)
}

// WorkerParams configures a Worker.
type WorkerParams struct {
	Store       queueReader
	Queue       string
	Concurrency int
	PollTimeout time.Duration
	TaskTimeout time.Duration
	Logger      *logger.Logger
	Metrics     *metrics.TaskMetrics
}

// Worker pops tasks and dispatches them to registered handlers. Failed tasks
// are logged and dropped.
type Worker struct {
	store       queueReader
	queue       string
	concurrency int
	pollTimeout time.Duration
	taskTimeout time.Duration
	logg        *logger.Logger
	metrics     *metrics.TaskMetrics
	handlers    map[enums.TaskType]Handler
}

func NewWorker(params WorkerParams) (*Worker, error) {
	if params.Store == nil {
		return nil, errors.New("queue store is required")
	}
	if params.Queue == "" {
		return nil, errors.New("queue name is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	poll := params.PollTimeout
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &Worker{
		store:       params.Store,
		queue:       params.Queue,
		concurrency: concurrency,
		pollTimeout: poll,
		taskTimeout: params.TaskTimeout,
		logg:        params.Logger,
		metrics:     params.Metrics,
		handlers:    make(map[enums.TaskType]Handler),
	}, nil
}

// Register binds a handler to a task type. Call before Run.
func (w *Worker) Register(taskType enums.TaskType, h Handler) {
	w.handlers[taskType] = h
}

// Run consumes the queue until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			w.loop(w.logg.WithField(ctx, "worker_slot", slot))
		}(i)
	}
	wg.Wait()
	return nil
}

func (w *Worker) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		raw, err := w.store.Dequeue(ctx, w.queue, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logg.Error(ctx, "dequeue failed", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(dequeueErrorBackoff):
			}
			continue
		}
		if raw == nil {
			continue
		}
		w.Process(ctx, raw)
	}
}

// Process decodes and runs a single raw task. It never returns an error: the
// outcome is logged and counted.
func (w *Worker) Process(ctx context.Context, raw []byte) {
	var task Task
	if err := json.Unmarshal(raw, &task); err != nil {
		w.logg.Error(ctx, "dropping undecodable task", err)
		w.metrics.IncFailure("unknown")
		return
	}
	logCtx := w.logg.WithFields(ctx, map[string]any{"task_id": task.ID, "task_type": task.Type.String()})

	handler, ok := w.handlers[task.Type]
	if !ok {
		w.logg.Warn(logCtx, "no handler registered for task type")
		w.metrics.IncFailure(task.Type.String())
		return
	}

	runCtx := logCtx
	if w.taskTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(logCtx, w.taskTimeout)
		defer cancel()
	}

	started := time.Now()
	err := runHandler(runCtx, handler, task)
	w.metrics.ObserveDuration(task.Type.String(), time.Since(started))
	if err != nil {
		w.metrics.IncFailure(task.Type.String())
		w.logg.Error(logCtx, "task failed", err)
		return
	}
	w.metrics.IncSuccess(task.Type.String())
	w.logg.Info(logCtx, "task completed")
}

func runHandler(ctx context.Context, h Handler, task Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task panic: %v", rec)
		}
	}()
	return h(ctx, task)
}
