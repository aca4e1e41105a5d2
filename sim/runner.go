package sim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// pauseCheckInterval is how often the real-time loop re-checks the paused
// flag while the runner is paused.
const pauseCheckInterval = 10 * time.Millisecond

// RunnerStatus is a read-only view of a runner's state.
type RunnerStatus struct {
	TickCount        uint64     `json:"tick_count"`
	ElapsedSeconds   VTimeInSec `json:"elapsed_seconds"`
	StepSeconds      VTimeInSec `json:"step_seconds"`
	Paused           bool       `json:"paused"`
	Running          bool       `json:"running"`
	LateTicks        uint64     `json:"late_ticks"`
	MaxBehindSeconds float64    `json:"max_behind_seconds"`
}

// A Runner drives a pipeline. It supports deterministic manual stepping and a
// best-effort real-time loop that paces ticks to wall-clock time.
type Runner struct {
	clock    *Clock
	pipeline *Pipeline
	logger   *zap.Logger

	stepLock sync.Mutex

	listenerLock  sync.Mutex
	tickListeners []func(SimTime)

	paused        atomic.Bool
	running       atomic.Bool
	lateTicks     atomic.Uint64
	maxBehindBits atomic.Uint64
}

// NewRunner creates a Runner over a pipeline with a fixed, positive step
// size.
func NewRunner(pipeline *Pipeline, step VTimeInSec) (*Runner, error) {
	clock, err := NewClock(step)
	if err != nil {
		return nil, err
	}

	return &Runner{
		clock:    clock,
		pipeline: pipeline,
		logger:   zap.NewNop(),
	}, nil
}

// WithLogger sets the logger used by the real-time loop.
func (r *Runner) WithLogger(logger *zap.Logger) *Runner {
	r.logger = logger
	return r
}

// RegisterTickListener registers a function invoked synchronously after each
// successfully completed tick. Listeners must not block.
func (r *Runner) RegisterTickListener(l func(SimTime)) {
	r.listenerLock.Lock()
	defer r.listenerLock.Unlock()

	r.tickListeners = append(r.tickListeners, l)
}

// Now returns the current simulation time.
func (r *Runner) Now() SimTime {
	return r.clock.Now()
}

// Pipeline returns the pipeline driven by the runner.
func (r *Runner) Pipeline() *Pipeline {
	return r.pipeline
}

// StepOnce advances the clock by one tick and runs the pipeline once. It
// steps even while the runner is paused; pausing only affects the real-time
// loop.
func (r *Runner) StepOnce() error {
	r.stepLock.Lock()
	defer r.stepLock.Unlock()

	return r.stepOnce()
}

func (r *Runner) stepOnce() error {
	now := r.clock.Advance()

	if err := r.pipeline.Tick(now, r.clock.StepSize()); err != nil {
		return err
	}

	r.notifyTick(now)

	return nil
}

func (r *Runner) notifyTick(now SimTime) {
	r.listenerLock.Lock()
	listeners := make([]func(SimTime), len(r.tickListeners))
	copy(listeners, r.tickListeners)
	r.listenerLock.Unlock()

	for _, l := range listeners {
		l(now)
	}
}

// Step calls StepOnce n times in strict sequence.
func (r *Runner) Step(n int) error {
	if n < 1 {
		return fmt.Errorf(
			"%w: step count must be at least 1, got %d",
			ErrInvalidArgument, n)
	}

	r.stepLock.Lock()
	defer r.stepLock.Unlock()

	for i := 0; i < n; i++ {
		if err := r.stepOnce(); err != nil {
			return err
		}
	}

	return nil
}

// Pause suspends the real-time loop. Manual stepping is not affected.
func (r *Runner) Pause() {
	r.paused.Store(true)
}

// Resume lets a paused real-time loop continue.
func (r *Runner) Resume() {
	r.paused.Store(false)
}

// Paused returns whether the runner is paused.
func (r *Runner) Paused() bool {
	return r.paused.Load()
}

// Status returns a snapshot of the runner's state. It is safe to call
// concurrently with the real-time loop.
func (r *Runner) Status() RunnerStatus {
	now := r.clock.Now()

	return RunnerStatus{
		TickCount:        now.TickCount,
		ElapsedSeconds:   now.ElapsedSeconds,
		StepSeconds:      r.clock.StepSize(),
		Paused:           r.paused.Load(),
		Running:          r.running.Load(),
		LateTicks:        r.lateTicks.Load(),
		MaxBehindSeconds: math.Float64frombits(r.maxBehindBits.Load()),
	}
}

// Run paces ticks to wall-clock time until the context is cancelled. A tick
// that misses its deadline is recorded as late and the loop moves on without
// a catch-up burst. Component errors are logged and swallowed so that one bad
// tick does not kill the loop; manual stepping propagates them instead.
func (r *Runner) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: runner is already running", ErrInvalidArgument)
	}
	defer r.running.Store(false)

	stepDuration := time.Duration(
		float64(r.clock.StepSize()) * float64(time.Second))
	deadline := time.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if r.paused.Load() {
			if !sleepCtx(ctx, pauseCheckInterval) {
				return nil
			}

			deadline = time.Now()

			continue
		}

		if err := r.StepOnce(); err != nil {
			r.logger.Error("tick failed",
				zap.Uint64("tick", r.clock.Now().TickCount),
				zap.Error(err))
		}

		deadline = deadline.Add(stepDuration)

		now := time.Now()
		if now.Before(deadline) {
			if !sleepCtx(ctx, deadline.Sub(now)) {
				return nil
			}

			continue
		}

		r.lateTicks.Add(1)
		r.recordLateness(now.Sub(deadline).Seconds())
	}
}

// sleepCtx sleeps for d or until the context is cancelled. It returns false
// if the context was cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (r *Runner) recordLateness(behind float64) {
	for {
		oldBits := r.maxBehindBits.Load()
		if behind <= math.Float64frombits(oldBits) {
			return
		}

		if r.maxBehindBits.CompareAndSwap(oldBits, math.Float64bits(behind)) {
			return
		}
	}
}
