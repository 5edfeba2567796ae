package event

import "context"

// Sink consumes events delivered by the Hub. Implementations must honor ctx
// deadlines and tolerate repeated Close calls.
type Sink interface {
	Consume(ctx context.Context, evt Event) error
	Close(ctx context.Context) error
}

// Emitter publishes individual events; Hub satisfies this interface so the
// controller stays agnostic about how events are buffered or consumed.
type Emitter interface {
	Emit(evt Event)
}
