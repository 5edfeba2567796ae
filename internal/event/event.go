// Package event defines the lifecycle events emitted by the search
// controller and the Hub that fans them out to registered sinks. The Hub
// replaces any ambient notification channel: components that care about
// lifecycle activity register a Sink instead of sharing global state.
package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/devscout/research-agent/internal/research"
)

// Kind denotes the lifecycle milestone represented by an Event.
type Kind string

// Supported event kinds.
const (
	KindSearchStart    Kind = "SEARCH_START"
	KindSearchProgress Kind = "SEARCH_PROGRESS"
	KindSearchDone     Kind = "SEARCH_DONE"
	KindSearchError    Kind = "SEARCH_ERROR"
)

// Event captures a single milestone of a research submission.
type Event struct {
	// RequestID identifies the originating submission.
	RequestID string
	// Generation is the controller generation the event belongs to.
	Generation uint64
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Kind denotes which milestone occurred.
	Kind Kind
	// Query is the sanitized query text for start events.
	Query string
	// Percent carries the simulated progress for progress events.
	Percent float64
	// StageLabel carries the simulated stage label for progress events.
	StageLabel string
	// Message is a human-readable summary for done/error events.
	Message string
	// Category is the presentation severity for done/error events.
	Category research.Category
	// Dur captures total submission latency on terminal events.
	Dur time.Duration
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RequestID == "" {
		return errors.New("request id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Kind {
	case KindSearchStart:
		if e.Query == "" {
			return errors.New("start event requires query")
		}
	case KindSearchProgress:
		if e.StageLabel == "" {
			return errors.New("progress event requires stage label")
		}
		if e.Percent < 0 || e.Percent > 100 {
			return fmt.Errorf("progress percent %v out of range", e.Percent)
		}
	case KindSearchDone, KindSearchError:
		if e.Message == "" {
			return errors.New("terminal event requires message")
		}
		if e.Category == "" {
			return errors.New("terminal event requires category")
		}
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
