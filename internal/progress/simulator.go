package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/devscout/research-agent/internal/research"
)

const defaultInterval = 150 * time.Millisecond

// Simulator evaluates a Table on a periodic tick and hands each snapshot to
// a publish callback. It owns no lifecycle state: generation gating and the
// monotone clamp belong to the caller, which makes the simulator reusable
// across submissions.
type Simulator struct {
	table    Table
	interval time.Duration
	clock    research.Clock
}

// New constructs a Simulator after validating the table. A zero interval
// selects the 150ms default.
func New(table Table, interval time.Duration, clk research.Clock) (*Simulator, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("validate stage table: %w", err)
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	if clk == nil {
		return nil, fmt.Errorf("clock is required")
	}
	return &Simulator{table: table, interval: interval, clock: clk}, nil
}

// Interval reports the configured tick period.
func (s *Simulator) Interval() time.Duration {
	return s.interval
}

// At exposes the pure curve for a submission that started at start.
func (s *Simulator) At(start, now time.Time) Snapshot {
	return s.table.At(now.Sub(start))
}

// Run ticks until ctx is cancelled, publishing one snapshot per tick.
// Cancelling ctx is the only way to stop the loop; the caller must cancel on
// every terminal transition and on supersession. Run never publishes after
// it observes cancellation, but a snapshot already in flight can still be
// delivered, so publish must tolerate (and discard) stale calls.
func (s *Simulator) Run(ctx context.Context, publish func(Snapshot)) {
	start := s.clock.Now()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			publish(s.At(start, s.clock.Now()))
		}
	}
}
