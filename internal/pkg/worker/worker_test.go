package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type funcTask struct {
	name string
	fn   func(ctx context.Context) error
}

func (t funcTask) Name() string                  { return t.name }
func (t funcTask) Run(ctx context.Context) error { return t.fn(ctx) }

func newPool(t *testing.T, opts Options) *WorkerPool {
	t.Helper()
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Millisecond
	}
	p := NewWorkerPool(opts, zaptest.NewLogger(t))
	p.Start()
	return p
}

func stop(p *WorkerPool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p.Stop(ctx)
}

func TestWorkerPoolRunsTasks(t *testing.T) {
	p := newPool(t, Options{Workers: 3, QueueSize: 16})

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(funcTask{name: "count", fn: func(context.Context) error {
			count.Add(1)
			return nil
		}}))
	}

	stop(p)
	assert.Equal(t, int32(10), count.Load())
}

func TestWorkerPoolRetries(t *testing.T) {
	p := newPool(t, Options{Workers: 1, QueueSize: 4, MaxRetry: 3})

	var attempts atomic.Int32
	require.NoError(t, p.Submit(funcTask{name: "flaky", fn: func(context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}}))

	stop(p)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestWorkerPoolDropsAfterMaxRetry(t *testing.T) {
	var mu sync.Mutex
	var dropped []string

	p := newPool(t, Options{
		Workers:  1,
		MaxRetry: 2,
		OnDrop: func(task Task, err error) {
			mu.Lock()
			defer mu.Unlock()
			dropped = append(dropped, task.Name())
		},
	})

	var attempts atomic.Int32
	require.NoError(t, p.Submit(funcTask{name: "broken", fn: func(context.Context) error {
		attempts.Add(1)
		return errors.New("permanent")
	}}))

	stop(p)
	assert.Equal(t, int32(3), attempts.Load())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"broken"}, dropped)
}

func TestWorkerPoolRejectsAfterStop(t *testing.T) {
	p := newPool(t, Options{Workers: 1})
	stop(p)

	err := p.Submit(funcTask{name: "late", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrPoolClosed)
}
