package bus

import (
	"context"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/marketplace/metronome/internal/domain/event"
)

// Bus is an in-memory event bus for in-process fanout. It is not durable;
// events are dropped on shutdown.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string][]event.Handler
	queue     chan event.Event
	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
	log       *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.L()
	}
	return &Bus{
		subs:  make(map[string][]event.Handler),
		queue: make(chan event.Event, 256),
		done:  make(chan struct{}),
		log:   logger.With(zap.String("component", "bus")),
	}
}

func (b *Bus) Subscribe(eventName string, h event.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
		b.cancel = cancel
		go b.dispatchLoop(bg)
		b.log.Info("event_bus_started")
	})
}

func (b *Bus) Stop(ctx context.Context) {
	_ = ctx
	b.stopOnce.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}
		close(b.queue)
		<-b.done
		b.log.Info("event_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e event.Event) error {
	if e == nil {
		return nil
	}
	select {
	case b.queue <- e:
		return nil
	case <-ctx.Done():
		b.log.Warn("event_enqueue_aborted",
			zap.String("event", e.EventName()),
			zap.Error(ctx.Err()),
		)
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for e := range b.queue {
		b.dispatch(ctx, e)
	}
}

func (b *Bus) dispatch(ctx context.Context, e event.Event) {
	b.mu.RLock()
	handlers := b.subs[e.EventName()]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(ctx, e, h)
	}
}

// invoke shields the dispatch loop from panicking handlers.
func (b *Bus) invoke(ctx context.Context, e event.Event, h event.Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event_handler_panic",
				zap.String("event", e.EventName()),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	if err := h(ctx, e); err != nil {
		b.log.Warn("event_handler_error",
			zap.String("event", e.EventName()),
			zap.Error(err),
		)
	}
}
