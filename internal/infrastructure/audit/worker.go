package audit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/marketplace/metronome/internal/domain/event"
	"github.com/marketplace/metronome/internal/infrastructure/bus"
)

// Worker subscribes to every inventory event, writes an audit log line and
// counts the event by name.
type Worker struct {
	bus    *bus.Bus
	log    *zap.Logger
	events *prometheus.CounterVec
}

var auditedEvents = []string{
	"inventory.product_created",
	"inventory.stock_added",
	"inventory.stock_decreased",
	"inventory.stock_reserved",
	"inventory.stock_released",
	"inventory.product_deleted",
}

func New(b *bus.Bus, logger *zap.Logger, events *prometheus.CounterVec) *Worker {
	if logger == nil {
		logger = zap.L()
	}
	return &Worker{
		bus:    b,
		log:    logger.With(zap.String("component", "audit")),
		events: events,
	}
}

func (w *Worker) Start() {
	for _, name := range auditedEvents {
		w.bus.Subscribe(name, w.handle)
	}
}

func (w *Worker) handle(ctx context.Context, e event.Event) error {
	_ = ctx
	w.log.Info("inventory_event",
		zap.String("event", e.EventName()),
		zap.Any("payload", e),
	)
	if w.events != nil {
		w.events.WithLabelValues(e.EventName()).Inc()
	}
	return nil
}
