package events

import (
	"context"

	"coursehub/internal/pkg/worker"

	"go.uber.org/zap"
)

// Dispatcher turns each published event into one worker task per sink.
type Dispatcher struct {
	pool  *worker.WorkerPool
	sinks []Sink
	log   *zap.Logger
}

func NewDispatcher(pool *worker.WorkerPool, log *zap.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{pool: pool, sinks: sinks, log: log}
}

func (d *Dispatcher) Publish(e Event) {
	for _, s := range d.sinks {
		if err := d.pool.Submit(&deliveryTask{sink: s, event: e}); err != nil {
			d.log.Warn("event not queued",
				zap.String("sink", s.Name()),
				zap.String("type", string(e.Type)),
				zap.Error(err),
			)
		}
	}
}

// Sinks returns the configured sink names.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}

type deliveryTask struct {
	sink  Sink
	event Event
}

func (t *deliveryTask) Name() string {
	return t.sink.Name() + ":" + string(t.event.Type)
}

func (t *deliveryTask) Run(ctx context.Context) error {
	return t.sink.Deliver(ctx, t.event)
}
