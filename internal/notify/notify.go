// Package notify reduces terminal lifecycle events to user-facing notices
// and suppresses duplicates arriving within a short window, preventing
// notification flooding when the same failure repeats.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/devscout/research-agent/internal/event"
	"github.com/devscout/research-agent/internal/research"
)

// Notice is one deduplicated user-facing notification.
type Notice struct {
	Message  string            `json:"message"`
	Category research.Category `json:"category"`
	TS       time.Time         `json:"ts"`
}

// Config controls deduplication and retention.
type Config struct {
	// DedupWindow suppresses identical (message, category) pairs arriving
	// within this span (default 5s).
	DedupWindow time.Duration
	// Capacity bounds the retained notice history (default 50).
	Capacity int
	// Clock supplies timestamps (defaults to the wall clock).
	Clock research.Clock
	// OnDeduped, when set, is invoked once per suppressed notice.
	OnDeduped func()
}

const (
	defaultDedupWindow = 5 * time.Second
	defaultCapacity    = 50
)

type dedupKey struct {
	message  string
	category research.Category
}

// Recorder implements event.Sink, retaining recent notices for the API.
type Recorder struct {
	cfg Config

	mu       sync.Mutex
	recent   []Notice
	lastSeen map[dedupKey]time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now().UTC() }

// New constructs a Recorder.
func New(cfg Config) *Recorder {
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = defaultDedupWindow
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultCapacity
	}
	if cfg.Clock == nil {
		cfg.Clock = wallClock{}
	}
	return &Recorder{
		cfg:      cfg,
		lastSeen: make(map[dedupKey]time.Time),
	}
}

// Consume records a notice for terminal events; start and progress events
// pass through silently.
func (r *Recorder) Consume(_ context.Context, evt event.Event) error {
	if evt.Kind != event.KindSearchDone && evt.Kind != event.KindSearchError {
		return nil
	}
	now := r.cfg.Clock.Now()
	key := dedupKey{message: evt.Message, category: evt.Category}

	r.mu.Lock()
	defer r.mu.Unlock()
	if last, ok := r.lastSeen[key]; ok && now.Sub(last) < r.cfg.DedupWindow {
		if r.cfg.OnDeduped != nil {
			r.cfg.OnDeduped()
		}
		return nil
	}
	r.lastSeen[key] = now
	r.prune(now)

	r.recent = append(r.recent, Notice{Message: evt.Message, Category: evt.Category, TS: now})
	if len(r.recent) > r.cfg.Capacity {
		r.recent = r.recent[len(r.recent)-r.cfg.Capacity:]
	}
	return nil
}

// Close releases the dedup state.
func (r *Recorder) Close(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSeen = make(map[dedupKey]time.Time)
	return nil
}

// Recent returns the retained notices, newest last.
func (r *Recorder) Recent() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.recent))
	copy(out, r.recent)
	return out
}

// prune drops dedup entries older than the window so the map stays bounded.
func (r *Recorder) prune(now time.Time) {
	for k, seen := range r.lastSeen {
		if now.Sub(seen) >= r.cfg.DedupWindow {
			delete(r.lastSeen, k)
		}
	}
}
