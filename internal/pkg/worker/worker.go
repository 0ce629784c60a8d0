package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrPoolClosed is returned by Submit after Stop.
var ErrPoolClosed = errors.New("worker pool is closed")

// ErrQueueFull is returned by Submit when the task queue has no room.
var ErrQueueFull = errors.New("worker pool queue is full")

// Task is a unit of background work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

type job struct {
	task  Task
	retry int
}

// Options 协程池参数
type Options struct {
	Workers    int
	QueueSize  int
	MaxRetry   int
	RetryDelay time.Duration
	// OnDrop is called for tasks that exhausted retries or found the queue full.
	OnDrop func(task Task, err error)
}

type WorkerPool struct {
	taskQueue  chan job
	retryQueue chan job
	opts       Options
	log        *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	inflight atomic.Int64
}

func NewWorkerPool(opts Options, log *zap.Logger) *WorkerPool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	retrySize := opts.QueueSize / 2
	if retrySize == 0 {
		retrySize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		taskQueue:  make(chan job, opts.QueueSize),
		retryQueue: make(chan job, retrySize),
		opts:       opts,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	// 启动重试处理协程
	p.wg.Add(1)
	go p.retryWorker()
	p.log.Info("worker pool started", zap.Int("workers", p.opts.Workers))
}

// Submit enqueues a task without blocking.
func (p *WorkerPool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.inflight.Add(1)
	select {
	case p.taskQueue <- job{task: task}:
		return nil
	default:
		p.inflight.Add(-1)
		p.drop(task, ErrQueueFull)
		return ErrQueueFull
	}
}

// Stop stops accepting tasks, waits for queued work until ctx ends, then shuts the workers down.
func (p *WorkerPool) Stop(ctx context.Context) {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

wait:
	for p.inflight.Load() > 0 {
		select {
		case <-ctx.Done():
			p.log.Warn("worker pool stopped with pending tasks", zap.Int64("pending", p.inflight.Load()))
			break wait
		case <-ticker.C:
		}
	}

	p.cancel()
	p.wg.Wait()
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case j := <-p.taskQueue:
			p.process(id, j)
		}
	}
}

func (p *WorkerPool) process(id int, j job) {
	err := j.task.Run(p.ctx)
	if err == nil {
		p.inflight.Add(-1)
		return
	}

	p.log.Warn("task failed",
		zap.Int("worker", id),
		zap.String("task", j.task.Name()),
		zap.Int("retry", j.retry),
		zap.Error(err),
	)

	// 如果未达到最大重试次数，加入重试队列
	if j.retry < p.opts.MaxRetry {
		j.retry++
		select {
		case p.retryQueue <- j:
			return
		default:
		}
	}

	p.inflight.Add(-1)
	p.drop(j.task, err)
}

func (p *WorkerPool) retryWorker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case j := <-p.retryQueue:
			// 延迟重试，避免立即重试
			timer := time.NewTimer(time.Duration(j.retry) * p.opts.RetryDelay)
			select {
			case <-p.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			select {
			case p.taskQueue <- j:
			default:
				p.inflight.Add(-1)
				p.drop(j.task, ErrQueueFull)
			}
		}
	}
}

func (p *WorkerPool) drop(task Task, err error) {
	p.log.Error("task dropped", zap.String("task", task.Name()), zap.Error(err))
	if p.opts.OnDrop != nil {
		p.opts.OnDrop(task, err)
	}
}
