package metrics

import (
	"context"
	"sync"

	"github.com/devscout/research-agent/internal/event"
)

// Sink translates lifecycle events into Prometheus metrics. It tracks which
// generations entered flight so pre-flight validation failures never
// decrement the in-flight gauge.
type Sink struct {
	mu       sync.Mutex
	inFlight map[uint64]struct{}
}

// NewSink constructs a Sink. Init must have been called.
func NewSink() *Sink {
	return &Sink{inFlight: make(map[uint64]struct{})}
}

// Consume records the metric for one lifecycle event.
func (s *Sink) Consume(_ context.Context, evt event.Event) error {
	switch evt.Kind {
	case event.KindSearchStart:
		s.mu.Lock()
		s.inFlight[evt.Generation] = struct{}{}
		s.mu.Unlock()
		IncInFlight()
	case event.KindSearchProgress:
		ObserveProgressEvent()
	case event.KindSearchDone:
		s.finish(evt, "success")
	case event.KindSearchError:
		s.finish(evt, "failure")
	}
	return nil
}

// Close is a no-op; collectors are process-global.
func (s *Sink) Close(context.Context) error {
	return nil
}

func (s *Sink) finish(evt event.Event, outcome string) {
	s.mu.Lock()
	_, started := s.inFlight[evt.Generation]
	if started {
		delete(s.inFlight, evt.Generation)
	}
	s.mu.Unlock()
	if started {
		DecInFlight()
	}
	ObserveSearch(outcome, evt.Dur)
}
