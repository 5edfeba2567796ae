// Package controller orchestrates the search lifecycle: it validates
// queries, drives the progress simulator while the backend call is in
// flight, and applies exactly one terminal transition per submission. A
// generation counter makes superseded work inert: stale ticks and stale
// backend resolutions never touch published state.
package controller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devscout/research-agent/internal/event"
	"github.com/devscout/research-agent/internal/progress"
	"github.com/devscout/research-agent/internal/research"
	"github.com/devscout/research-agent/internal/validate"
)

// State is the controller's published lifecycle snapshot.
type State struct {
	Phase      research.Phase  `json:"phase"`
	Pending    bool            `json:"pending"`
	Progress   float64         `json:"progress"`
	StageLabel string          `json:"stage_label"`
	LastError  *research.Error `json:"last_error,omitempty"`
	Generation uint64          `json:"generation"`
}

// Controller owns the single mutable lifecycle state. All mutation happens
// under mu; the generation token is compared under the same lock at the
// start of every tick publish and every gateway resolution.
type Controller struct {
	gateway research.Gateway
	sim     *progress.Simulator
	emitter event.Emitter
	clock   research.Clock
	ids     research.IDGenerator
	logger  *zap.Logger

	mu         sync.Mutex
	state      State
	gen        uint64
	cancelTick context.CancelFunc
}

// New constructs a Controller in the idle state at generation zero.
func New(
	gw research.Gateway,
	sim *progress.Simulator,
	emitter event.Emitter,
	clk research.Clock,
	ids research.IDGenerator,
	logger *zap.Logger,
) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		gateway: gw,
		sim:     sim,
		emitter: emitter,
		clock:   clk,
		ids:     ids,
		logger:  logger,
		state:   State{Phase: research.PhaseIdle},
	}
}

// Submit runs one full validate→pending→terminal cycle and blocks until the
// backend call resolves. Invalid queries fail synchronously without any
// network traffic. A Submit arriving while an earlier one is pending
// supersedes it: the earlier call's eventual resolution is discarded and it
// returns research.ErrSuperseded.
func (c *Controller) Submit(ctx context.Context, rawQuery string) (*research.Result, error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.stopTickLocked()
	c.state = State{Phase: research.PhaseValidating, Generation: gen}
	c.mu.Unlock()

	requestID := c.newRequestID()

	if err := validate.Check(rawQuery); err != nil {
		se := research.AsError(err)
		c.applyValidationFailure(gen, requestID, se)
		return nil, se
	}
	query := validate.Sanitize(rawQuery)

	started := c.clock.Now()
	tickCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		cancel()
		return nil, research.ErrSuperseded
	}
	c.state = State{Phase: research.PhasePending, Pending: true, Generation: gen}
	c.cancelTick = cancel
	c.mu.Unlock()

	c.emit(event.Event{
		RequestID:  requestID,
		Generation: gen,
		Kind:       event.KindSearchStart,
		Query:      query,
	})
	go c.sim.Run(tickCtx, func(snap progress.Snapshot) {
		c.applyTick(gen, requestID, snap)
	})

	result, err := c.gateway.Send(ctx, query)
	dur := c.clock.Now().Sub(started)
	if err != nil {
		se := research.AsError(err)
		if se == nil {
			se = research.NewNetworkError(err)
		}
		if !c.applyFailure(gen, requestID, se, dur) {
			return nil, research.ErrSuperseded
		}
		return nil, se
	}
	if !c.applySuccess(gen, requestID, dur) {
		return nil, research.ErrSuperseded
	}
	return result, nil
}

// Snapshot returns a copy of the published state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsPending reports whether a submission is in flight.
func (c *Controller) IsPending() bool {
	return c.Snapshot().Pending
}

// ProgressPercent returns the current simulated progress in [0,100].
func (c *Controller) ProgressPercent() float64 {
	return c.Snapshot().Progress
}

// StageLabel returns the current simulated stage label.
func (c *Controller) StageLabel() string {
	return c.Snapshot().StageLabel
}

// LastError returns the most recent structured error, or nil.
func (c *Controller) LastError() *research.Error {
	return c.Snapshot().LastError
}

// applyTick folds one simulator snapshot into published state. Ticks from a
// superseded generation, or arriving after a terminal transition, are
// no-ops. Published progress only ever moves forward.
func (c *Controller) applyTick(gen uint64, requestID string, snap progress.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.state.Phase != research.PhasePending {
		return
	}
	if snap.Percent > c.state.Progress {
		c.state.Progress = snap.Percent
	}
	c.state.StageLabel = snap.Label

	// Emitting under the lock keeps the event stream ordered with respect
	// to terminal transitions; hub emission is non-blocking.
	c.emit(event.Event{
		RequestID:  requestID,
		Generation: gen,
		Kind:       event.KindSearchProgress,
		Percent:    c.state.Progress,
		StageLabel: snap.Label,
	})
}

// applyValidationFailure records a pre-flight validation error. The state
// returns to idle with the error set; no scheduler ever started.
func (c *Controller) applyValidationFailure(gen uint64, requestID string, se *research.Error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = State{Phase: research.PhaseIdle, LastError: se, Generation: gen}
	c.mu.Unlock()

	c.logger.Debug("query rejected before flight", zap.String("reason", se.Message))
	c.emit(event.Event{
		RequestID:  requestID,
		Generation: gen,
		Kind:       event.KindSearchError,
		Message:    se.Message,
		Category:   se.Category(),
	})
}

// applySuccess publishes the succeeded terminal state. It reports false when
// the generation went stale, in which case nothing was mutated.
func (c *Controller) applySuccess(gen uint64, requestID string, dur time.Duration) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	c.stopTickLocked()
	c.state = State{
		Phase:      research.PhaseSucceeded,
		Progress:   100,
		StageLabel: progress.CompleteLabel,
		Generation: gen,
	}
	c.mu.Unlock()

	c.logger.Info("research completed", zap.Duration("dur", dur))
	c.emit(event.Event{
		RequestID:  requestID,
		Generation: gen,
		Kind:       event.KindSearchDone,
		Message:    progress.CompleteLabel,
		Category:   research.CategorySuccess,
		Dur:        dur,
	})
	return true
}

// applyFailure publishes the failed terminal state, clearing progress and
// stage so no partial state survives. Reports false when stale.
func (c *Controller) applyFailure(gen uint64, requestID string, se *research.Error, dur time.Duration) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	c.stopTickLocked()
	c.state = State{
		Phase:      research.PhaseFailed,
		LastError:  se,
		Generation: gen,
	}
	c.mu.Unlock()

	c.logger.Warn("research failed", zap.String("kind", string(se.Kind)), zap.Duration("dur", dur))
	c.emit(event.Event{
		RequestID:  requestID,
		Generation: gen,
		Kind:       event.KindSearchError,
		Message:    se.Message,
		Category:   se.Category(),
		Dur:        dur,
	})
	return true
}

// stopTickLocked destroys the active tick loop. Callers must hold mu, which
// guarantees the cancellation is ordered before any later tick acquires the
// lock and observes the new generation or phase.
func (c *Controller) stopTickLocked() {
	if c.cancelTick != nil {
		c.cancelTick()
		c.cancelTick = nil
	}
}

func (c *Controller) newRequestID() string {
	id, err := c.ids.NewID()
	if err != nil {
		c.logger.Warn("request id generation failed", zap.Error(err))
		return "unknown"
	}
	return id
}

func (c *Controller) emit(evt event.Event) {
	if c.emitter == nil {
		return
	}
	evt.TS = c.clock.Now()
	c.emitter.Emit(evt)
}
