package event

import "context"

// Event is anything that can be dispatched on the in-process bus.
type Event interface {
	EventName() string
}

type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
