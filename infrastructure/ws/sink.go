package ws

import (
	"context"

	"community-hub/domain/event"
)

// Sink is one connection's outbound queue. The engine publishes into it;
// the connection's write pump drains it.
type Sink struct {
	Events chan event.Event
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Events: make(chan event.Event, bufferSize)}
}

// Consume is called by the engine's broadcast path. A full buffer means
// the client cannot keep up; the event is dropped rather than stalling
// the dispatch loop.
func (s *Sink) Consume(ctx context.Context, e event.Event) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
