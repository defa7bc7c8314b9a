package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/resource-management/internal/metrics"
	"golang.org/x/time/rate"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrClosed    = errors.New("notification dispatcher is shut down")
)

type Job struct {
	Alert    Alert
	Enqueued time.Time
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

// Start registers the worker's job channel with the pool each time it is idle.
func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing alert", "worker_id", w.ID, "employee_id", job.Alert.EmployeeID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type Config struct {
	MaxWorkers     int
	JobQueueSize   int
	WorkerPoolSize int
	RatePerMinute  int
	Burst          int
	MaxAttempts    int
	RetryBackoff   time.Duration
}

// Dispatcher delivers alerts through a bounded queue and a fixed pool of
// workers, throttled by a shared rate limiter.
type Dispatcher struct {
	sender  Sender
	limiter *rate.Limiter
	logger  *slog.Logger

	maxAttempts  int
	retryBackoff time.Duration

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	pending    sync.WaitGroup
	once       sync.Once
	closeOnce  sync.Once
	mu         sync.RWMutex
	closed     bool
}

func NewDispatcher(config Config, sender Sender, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	limit := rate.Inf
	if config.RatePerMinute > 0 {
		limit = rate.Limit(float64(config.RatePerMinute) / 60)
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	d := &Dispatcher{
		sender:       sender,
		limiter:      rate.NewLimiter(limit, burst),
		logger:       logger,
		maxAttempts:  maxAttempts,
		retryBackoff: config.RetryBackoff,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan Job, jobQueueSize),
		workerPool: make(chan chan Job, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	d.startWorkerPool()

	return d
}

func (d *Dispatcher) startWorkerPool() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.process)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("notification worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobQueue:
			metrics.NotificationQueueDepth.Set(float64(len(d.jobQueue)))

			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- job:
				case <-d.ctx.Done():
					d.pending.Done()
					d.logger.Info("dispatcher shutting down")
					return
				}
			case <-d.ctx.Done():
				d.pending.Done()
				d.logger.Info("dispatcher shutting down")
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("dispatcher shutting down")
			return
		}
	}
}

// Enqueue never blocks. It returns ErrQueueFull when the queue is at capacity.
func (d *Dispatcher) Enqueue(alert Alert) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	d.pending.Add(1)
	select {
	case d.jobQueue <- Job{Alert: alert, Enqueued: time.Now()}:
		metrics.NotificationQueueDepth.Set(float64(len(d.jobQueue)))
		d.logger.Debug("alert queued",
			"employee_id", alert.EmployeeID,
			"queue_length", len(d.jobQueue))
		return nil
	default:
		d.pending.Done()
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.logger.Warn("notification queue full, dropping alert",
			"employee_id", alert.EmployeeID,
			"queue_capacity", cap(d.jobQueue))
		return ErrQueueFull
	}
}

// Shutdown stops the workers and waits for in-flight deliveries to return.
// Alerts still queued are dropped.
func (d *Dispatcher) Shutdown() {
	d.closeOnce.Do(func() {
		d.logger.Info("shutting down notification dispatcher")

		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		d.cancel()
		d.wg.Wait()

		dropped := 0
		for len(d.jobQueue) > 0 {
			<-d.jobQueue
			d.pending.Done()
			dropped++
		}
		if dropped > 0 {
			metrics.NotificationsTotal.WithLabelValues("dropped").Add(float64(dropped))
			d.logger.Warn("alerts dropped at shutdown", "count", dropped)
		}
		metrics.NotificationQueueDepth.Set(0)
		d.logger.Info("notification dispatcher shutdown complete")
	})
}

// Drain blocks until every accepted alert has been delivered or given up on,
// or ctx is done.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) process(job Job) {
	defer d.pending.Done()
	alert := job.Alert

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err := d.limiter.Wait(d.ctx); err != nil {
			d.logger.Info("alert delivery cancelled", "employee_id", alert.EmployeeID)
			return
		}

		err := d.sender.Send(d.ctx, alert)
		if err == nil {
			metrics.NotificationsTotal.WithLabelValues("sent").Inc()
			d.logger.Info("over-allocation alert delivered",
				"employee_id", alert.EmployeeID,
				"severity", alert.Severity,
				"attempt", attempt,
				"latency_ms", time.Since(job.Enqueued).Milliseconds())
			return
		}

		var statusErr *StatusError
		retryable := !errors.As(err, &statusErr) || statusErr.Retryable()
		if !retryable || attempt == d.maxAttempts || d.ctx.Err() != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			d.logger.Error("over-allocation alert delivery failed",
				"employee_id", alert.EmployeeID,
				"attempt", attempt,
				"error", err)
			return
		}

		d.logger.Warn("retrying alert delivery",
			"employee_id", alert.EmployeeID,
			"attempt", attempt,
			"error", err)

		select {
		case <-time.After(d.retryBackoff * time.Duration(attempt)):
		case <-d.ctx.Done():
			d.logger.Info("alert delivery cancelled", "employee_id", alert.EmployeeID)
			return
		}
	}
}
