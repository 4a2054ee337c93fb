package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// Handler executes one task type. The payload is the raw JSON the
// task was enqueued with.
type Handler func(ctx context.Context, payload json.RawMessage) error

// RunnerConfig sizes the per-category worker pools and tunes polling
// and retry behavior.
type RunnerConfig struct {
	// GenerationWorkers bounds concurrent generation tasks.
	GenerationWorkers int

	// PublishingWorkers bounds concurrent publish tasks.
	PublishingWorkers int

	// TrackingWorkers bounds concurrent tracking tasks.
	TrackingWorkers int

	// PollInterval is how long an idle worker waits between queue
	// polls.
	PollInterval time.Duration

	// MaxAttempts is the total number of execution attempts for a
	// task whose handler reports a retryable failure.
	MaxAttempts int

	// RetryBase is the initial backoff between attempts; it doubles
	// per retry.
	RetryBase time.Duration
}

// DefaultRunnerConfig returns the reference pool sizes and retry
// settings.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		GenerationWorkers: 5,
		PublishingWorkers: 3,
		TrackingWorkers:   2,
		PollInterval:      time.Second,
		MaxAttempts:       3,
		RetryBase:         500 * time.Millisecond,
	}
}

func (c RunnerConfig) workersFor(category Category) int {
	switch category {
	case CategoryGeneration:
		return c.GenerationWorkers
	case CategoryPublishing:
		return c.PublishingWorkers
	case CategoryTracking:
		return c.TrackingWorkers
	default:
		return 0
	}
}

// Runner drains the delayed queues with one worker pool per category
// and dispatches claimed tasks to their registered handlers.
type Runner struct {
	queue     *Queue
	config    RunnerConfig
	logger    *slog.Logger
	retryable func(error) bool

	mu       sync.RWMutex
	handlers map[string]Handler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a Runner. Handlers must be registered before
// Start; the retryable classifier defaults to never retrying.
func NewRunner(queue *Queue, config RunnerConfig, logger *slog.Logger) *Runner {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.RetryBase <= 0 {
		config.RetryBase = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		queue:     queue,
		config:    config,
		logger:    logger.With("component", "task_runner"),
		retryable: func(error) bool { return false },
		handlers:  make(map[string]Handler),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Register binds a handler to a task type. Registering the same type
// twice replaces the earlier handler.
func (r *Runner) Register(taskType string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[taskType] = handler
}

// SetRetryClassifier installs the predicate that decides whether a
// handler error is transient and worth retrying.
func (r *Runner) SetRetryClassifier(classify func(error) bool) {
	if classify != nil {
		r.retryable = classify
	}
}

// Start launches the worker pools.
func (r *Runner) Start() {
	for _, category := range Categories() {
		count := r.config.workersFor(category)
		for i := 0; i < count; i++ {
			r.wg.Add(1)
			go r.worker(category, i)
		}
		r.logger.Info("started worker pool", "category", category, "worker_count", count)
	}
}

// Stop signals all workers to finish their current task and waits for
// them to exit.
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
}

func (r *Runner) worker(category Category, id int) {
	defer r.wg.Done()

	logger := r.logger.With("category", category, "worker_id", id)
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		claimed, err := r.queue.ClaimDue(r.ctx, category, 1, time.Now())
		if err != nil {
			if r.ctx.Err() != nil {
				return
			}
			logger.Error("failed to poll task queue", "error", err)
		}
		for _, t := range claimed {
			r.execute(t, category, logger)
		}

		if len(claimed) > 0 {
			// More work may be due; skip the idle wait.
			continue
		}

		select {
		case <-r.ctx.Done():
			logger.Debug("stopping worker")
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) execute(t *QueuedTask, category Category, logger *slog.Logger) {
	logger = logger.With("task_id", t.ID, "task_type", t.Type)

	r.mu.RLock()
	handler, ok := r.handlers[t.Type]
	r.mu.RUnlock()
	if !ok {
		logger.Error("no handler registered for task type")
		r.acknowledge(t, category, logger)
		return
	}

	backoff := retry.WithMaxRetries(uint64(r.config.MaxAttempts-1),
		retry.NewExponential(r.config.RetryBase))

	attempt := 0
	err := retry.Do(r.ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := handler(ctx, t.Payload); err != nil {
			if r.retryable(err) {
				logger.Warn("task attempt failed, will retry",
					"attempt", attempt, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		// Keep the lease; the queue redelivers the task once it
		// expires.
		logger.Error("task failed, awaiting redelivery", "attempts", attempt, "error", err)
		return
	}
	r.acknowledge(t, category, logger)
	logger.Info("task completed", "attempts", attempt)
}

func (r *Runner) acknowledge(t *QueuedTask, category Category, logger *slog.Logger) {
	if err := r.queue.Complete(context.WithoutCancel(r.ctx), category, t.ID); err != nil {
		logger.Warn("failed to acknowledge task, it will be redelivered", "error", err)
	}
}

// EnqueueAfter wraps payload construction and scheduling into one
// call: the task becomes due delay from now.
func EnqueueAfter(ctx context.Context, queue *Queue, taskType string, payload interface{}, delay time.Duration) (*QueuedTask, error) {
	category, err := CategoryForType(taskType)
	if err != nil {
		return nil, err
	}
	t, err := NewQueuedTask(taskType, payload)
	if err != nil {
		return nil, err
	}
	if err := queue.Enqueue(ctx, category, t, time.Now().Add(delay)); err != nil {
		return nil, fmt.Errorf("failed to schedule %s task: %w", taskType, err)
	}
	return t, nil
}
