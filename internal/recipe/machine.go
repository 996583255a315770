// Package recipe provides recipe sources and the recipe timer state
// machine that drives a cooking session step by step.
package recipe

import (
	"fmt"
	"sync"

	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/logger"
)

// Machine owns the state of one active recipe: the current step index,
// the per-step countdown, and the running flag. All mutation goes
// through its methods, serialized by a single mutex, so a Tick racing
// an Advance can never produce a torn snapshot.
//
// Every successful mutation publishes an event carrying a full value
// snapshot. Events are published while the lock is held, which gives
// subscribers a total order over all recipe events regardless of which
// goroutine issued the command.
type Machine struct {
	mu        sync.Mutex
	recipe    *domain.Recipe
	stepIndex int
	remaining int
	running   bool

	pub domain.Publisher
	log *logger.Logger
}

// NewMachine creates a machine positioned on the first step of the
// recipe, countdown loaded and paused. The recipe must have at least
// one step.
func NewMachine(r *domain.Recipe, pub domain.Publisher, log *logger.Logger) (*Machine, error) {
	if r == nil || len(r.Steps) == 0 {
		return nil, fmt.Errorf("recipe must have at least one step")
	}
	for i, s := range r.Steps {
		if s.DurationSeconds <= 0 {
			return nil, fmt.Errorf("step %d (%q) has non-positive duration", i, s.Description)
		}
	}
	return &Machine{
		recipe:    r,
		stepIndex: 0,
		remaining: r.Steps[0].DurationSeconds,
		running:   false,
		pub:       pub,
		log:       log,
	}, nil
}

// snapshotLocked builds a value copy of the current state.
// Caller must hold mu.
func (m *Machine) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		RecipeID:         m.recipe.ID,
		StepIndex:        m.stepIndex,
		StepCount:        len(m.recipe.Steps),
		Step:             m.recipe.Steps[m.stepIndex],
		RemainingSeconds: m.remaining,
		Running:          m.running,
	}
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Advance moves to the next step. Returns false without mutating
// anything when already on the last step — never an error. On success
// the countdown is reloaded from the new step's duration, the timer is
// forced to paused, and a StepAdvanced event is published.
func (m *Machine) Advance() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stepIndex >= len(m.recipe.Steps)-1 {
		m.log.Debug("advance refused: already on last step %d", m.stepIndex)
		return false
	}

	m.stepIndex++
	m.remaining = m.recipe.Steps[m.stepIndex].DurationSeconds
	m.running = false

	m.log.Info("advanced to step %d/%d: %s",
		m.stepIndex+1, len(m.recipe.Steps), m.recipe.Steps[m.stepIndex].Description)
	m.pub.Publish(domain.TimerEvent(domain.EventStepAdvanced, m.snapshotLocked()))
	return true
}

// Pause stops the countdown. Idempotent.
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = false
	m.log.Debug("timer paused at %ds (step %d)", m.remaining, m.stepIndex)
	m.pub.Publish(domain.TimerEvent(domain.EventTimerPaused, m.snapshotLocked()))
}

// Resume starts the countdown. Idempotent.
func (m *Machine) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = true
	m.log.Debug("timer resumed at %ds (step %d)", m.remaining, m.stepIndex)
	m.pub.Publish(domain.TimerEvent(domain.EventTimerResumed, m.snapshotLocked()))
}

// RepeatCurrent re-publishes the current snapshot without mutating
// state. Lets a late-joining subscriber resynchronize, since the
// broadcaster never replays history.
func (m *Machine) RepeatCurrent() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pub.Publish(domain.TimerEvent(domain.EventStepAdvanced, m.snapshotLocked()))
}

// Tick decrements the countdown by one second. Called once per second
// by the timer loop. A paused timer is untouched; a running timer
// floors at zero and stays there — reaching zero does not auto-advance
// the step, that takes an explicit Advance.
func (m *Machine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || m.remaining <= 0 {
		return
	}

	m.remaining--
	m.pub.Publish(domain.TimerEvent(domain.EventTimerTick, m.snapshotLocked()))
}

// PublishHint publishes a StepHint event carrying the given cue text
// alongside the current snapshot.
func (m *Machine) PublishHint(hint string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pub.Publish(domain.HintEvent(hint, m.snapshotLocked()))
}
