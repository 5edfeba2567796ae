// Package progress synthesizes a believable, monotonically advancing
// progress percentage and stage label for a backend request of unknown
// duration. The curve is a pure function of elapsed time and a fixed stage
// table; the Simulator evaluates it on a periodic tick.
package progress

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Stage is one labeled phase of the simulated timeline. Threshold is the
// elapsed time at which the stage completes; the stage is active from the
// previous stage's threshold (or zero) up to its own.
type Stage struct {
	Threshold  time.Duration
	Label      string
	MinPercent float64
	MaxPercent float64
}

// CapStep raises the final stage's effective maximum once total elapsed time
// passes Beyond, so the bar keeps creeping on slow requests without ever
// reaching 100.
type CapStep struct {
	Beyond  time.Duration
	Percent float64
}

// Table is the fixed stage configuration. It is never mutated at runtime.
type Table struct {
	Stages []Stage
	// FinalCaps replaces the last stage's MaxPercent with a value that
	// steps up as elapsed time grows. Entries must be ordered by Beyond.
	FinalCaps []CapStep
}

// Default returns the stage table used for research submissions.
func Default() Table {
	return Table{
		Stages: []Stage{
			{Threshold: 800 * time.Millisecond, Label: "Analyzing query and extracting tools…", MinPercent: 5, MaxPercent: 25},
			{Threshold: 2500 * time.Millisecond, Label: "Researching individual tools…", MinPercent: 25, MaxPercent: 65},
			{Threshold: 4500 * time.Millisecond, Label: "Evaluating and ranking results…", MinPercent: 65, MaxPercent: 85},
			{Threshold: 6500 * time.Millisecond, Label: "Generating recommendations…", MinPercent: 85, MaxPercent: 99},
		},
		FinalCaps: []CapStep{
			{Beyond: 0, Percent: 92},
			{Beyond: 10 * time.Second, Percent: 95},
			{Beyond: 18 * time.Second, Percent: 97},
			{Beyond: 28 * time.Second, Percent: 99},
		},
	}
}

// CompleteLabel is published when the controller signals completion.
const CompleteLabel = "Research complete"

// Validate enforces that the table is well formed: ascending thresholds,
// percentages within [0,100), and contiguous min/max ranges.
func (t Table) Validate() error {
	if len(t.Stages) == 0 {
		return errors.New("stage table must not be empty")
	}
	prev := time.Duration(0)
	for i, s := range t.Stages {
		if s.Threshold <= prev {
			return fmt.Errorf("stage %d: threshold %v must exceed previous %v", i, s.Threshold, prev)
		}
		if s.MinPercent < 0 || s.MaxPercent >= 100 || s.MinPercent > s.MaxPercent {
			return fmt.Errorf("stage %d: percent range [%v,%v] invalid", i, s.MinPercent, s.MaxPercent)
		}
		prev = s.Threshold
	}
	capPrev := time.Duration(-1)
	for i, c := range t.FinalCaps {
		if c.Beyond <= capPrev {
			return fmt.Errorf("final cap %d: steps must be ordered by elapsed time", i)
		}
		if c.Percent >= 100 {
			return fmt.Errorf("final cap %d: percent %v must stay below 100", i, c.Percent)
		}
		capPrev = c.Beyond
	}
	return nil
}

// Snapshot is one evaluated point on the progress curve.
type Snapshot struct {
	Percent float64
	Label   string
}

// At evaluates the curve for the given elapsed time. The result is strictly
// below 100 for every input.
func (t Table) At(elapsed time.Duration) Snapshot {
	if elapsed < 0 {
		elapsed = 0
	}
	idx := len(t.Stages) - 1
	for i, s := range t.Stages {
		if elapsed < s.Threshold {
			idx = i
			break
		}
	}
	stage := t.Stages[idx]
	start := time.Duration(0)
	if idx > 0 {
		start = t.Stages[idx-1].Threshold
	}
	ratio := clamp(float64(elapsed-start)/float64(stage.Threshold-start), 0, 1)
	eased := 1 - math.Pow(1-ratio, 3)

	max := stage.MaxPercent
	if idx == len(t.Stages)-1 {
		if c, ok := t.finalCap(elapsed); ok {
			max = c
		}
	}
	return Snapshot{
		Percent: stage.MinPercent + (max-stage.MinPercent)*eased,
		Label:   stage.Label,
	}
}

// finalCap returns the dynamic cap for the final stage, stepping up with
// total elapsed time.
func (t Table) finalCap(elapsed time.Duration) (float64, bool) {
	found := false
	pct := 0.0
	for _, c := range t.FinalCaps {
		if elapsed >= c.Beyond {
			pct = c.Percent
			found = true
		}
	}
	return pct, found
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
