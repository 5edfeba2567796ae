package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultTableValid ensures the shipped configuration passes validation.
func TestDefaultTableValid(t *testing.T) {
	t.Parallel()

	require.NoError(t, Default().Validate())
}

// TestTableValidateRejectsBadConfig covers the malformed-table cases.
func TestTableValidateRejectsBadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		table Table
	}{
		{"empty", Table{}},
		{"non-ascending thresholds", Table{Stages: []Stage{
			{Threshold: time.Second, Label: "a", MinPercent: 0, MaxPercent: 10},
			{Threshold: time.Second, Label: "b", MinPercent: 10, MaxPercent: 20},
		}}},
		{"max at 100", Table{Stages: []Stage{
			{Threshold: time.Second, Label: "a", MinPercent: 0, MaxPercent: 100},
		}}},
		{"min above max", Table{Stages: []Stage{
			{Threshold: time.Second, Label: "a", MinPercent: 50, MaxPercent: 10},
		}}},
		{"unordered caps", Table{
			Stages:    []Stage{{Threshold: time.Second, Label: "a", MinPercent: 0, MaxPercent: 10}},
			FinalCaps: []CapStep{{Beyond: time.Second, Percent: 90}, {Beyond: 0, Percent: 95}},
		}},
		{"cap at 100", Table{
			Stages:    []Stage{{Threshold: time.Second, Label: "a", MinPercent: 0, MaxPercent: 10}},
			FinalCaps: []CapStep{{Beyond: 0, Percent: 100}},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Error(t, tc.table.Validate())
		})
	}
}

// TestAtStageSelection checks the label and bounds for each phase of the
// default timeline.
func TestAtStageSelection(t *testing.T) {
	t.Parallel()

	table := Default()
	tests := []struct {
		elapsed time.Duration
		label   string
	}{
		{0, "Analyzing query and extracting tools…"},
		{500 * time.Millisecond, "Analyzing query and extracting tools…"},
		{time.Second, "Researching individual tools…"},
		{3 * time.Second, "Evaluating and ranking results…"},
		{5 * time.Second, "Generating recommendations…"},
		{time.Minute, "Generating recommendations…"},
	}
	for _, tc := range tests {
		snap := table.At(tc.elapsed)
		assert.Equal(t, tc.label, snap.Label, "elapsed %v", tc.elapsed)
		assert.GreaterOrEqual(t, snap.Percent, 0.0)
		assert.Less(t, snap.Percent, 100.0)
	}
}

// TestAtEasing verifies the cubic ease-out within a stage front-loads
// perceived progress.
func TestAtEasing(t *testing.T) {
	t.Parallel()

	table := Default()
	// Halfway through the first stage: ratio 0.5, eased 0.875,
	// so 5 + 20*0.875 = 22.5.
	snap := table.At(400 * time.Millisecond)
	assert.InDelta(t, 22.5, snap.Percent, 0.01)

	// The stage boundary lands exactly on the configured max.
	snap = table.At(800 * time.Millisecond)
	assert.InDelta(t, 25, snap.Percent, 0.01)
}

// TestAtDynamicCap checks the final stage's stepwise cap schedule.
func TestAtDynamicCap(t *testing.T) {
	t.Parallel()

	table := Default()
	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{8 * time.Second, 92},
		{12 * time.Second, 95},
		{20 * time.Second, 97},
		{40 * time.Second, 99},
	}
	for _, tc := range tests {
		snap := table.At(tc.elapsed)
		assert.InDelta(t, tc.want, snap.Percent, 0.01, "elapsed %v", tc.elapsed)
	}
}

// TestAtMonotone samples the whole curve densely and asserts it never
// decreases and never reaches 100.
func TestAtMonotone(t *testing.T) {
	t.Parallel()

	table := Default()
	prev := -1.0
	for elapsed := time.Duration(0); elapsed <= 45*time.Second; elapsed += 50 * time.Millisecond {
		snap := table.At(elapsed)
		require.GreaterOrEqual(t, snap.Percent, prev, "regression at elapsed %v", elapsed)
		require.Less(t, snap.Percent, 100.0, "elapsed %v", elapsed)
		prev = snap.Percent
	}
}

// TestAtNegativeElapsed clamps pre-start evaluation to the curve origin.
func TestAtNegativeElapsed(t *testing.T) {
	t.Parallel()

	table := Default()
	assert.Equal(t, table.At(0), table.At(-time.Second))
}
