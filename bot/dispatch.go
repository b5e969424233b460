package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrDispatcherStopped is returned by Submit once Stop has been called.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

// Task is one unit of event work.
type Task struct {
	Name string
	Run  func(ctx context.Context)
}

// Dispatcher runs gateway event work on a fixed pool of workers so the
// gateway read loop never blocks on REST calls.
type Dispatcher struct {
	workers int
	tasks   chan Task
	logger  *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	closing  chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewDispatcher creates a dispatcher with the given number of workers and a
// queue of queueSize pending tasks.
func NewDispatcher(workers, queueSize int, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		workers: workers,
		tasks:   make(chan Task, queueSize),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		closing: make(chan struct{}),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	d.wg.Add(d.workers)
	for i := 0; i < d.workers; i++ {
		go d.worker(i)
	}
	d.logger.Debug("Dispatcher started", zap.Int("workers", d.workers))
}

// Submit queues a task. It blocks while the queue is full.
func (d *Dispatcher) Submit(t Task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}
	select {
	case d.tasks <- t:
		return nil
	case <-d.closing:
		return ErrDispatcherStopped
	}
}

// Stop closes the queue and waits for queued tasks to finish or for ctx to
// expire, whichever happens first. Tasks still running when ctx expires
// see their context cancelled.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.stopOnce.Do(func() { close(d.closing) })

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.tasks)
	started := d.started
	d.mu.Unlock()

	if !started {
		d.cancel()
		return nil
	}

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-drained
		return fmt.Errorf("drain dispatcher: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for t := range d.tasks {
		d.run(id, t)
	}
}

func (d *Dispatcher) run(id int, t Task) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Task panicked",
				zap.Int("worker", id),
				zap.String("task", t.Name),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	t.Run(d.ctx)
}
