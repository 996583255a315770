package domain

import "time"

// EventKind tags the variants of the event union.
type EventKind int

const (
	EventUnknown EventKind = iota
	// EventTimerTick — the countdown decremented by one second.
	EventTimerTick
	// EventStepAdvanced — the recipe moved to a new step.
	EventStepAdvanced
	// EventTimerPaused — the countdown was paused.
	EventTimerPaused
	// EventTimerResumed — the countdown was resumed.
	EventTimerResumed
	// EventStateChange — a tracked item changed cooking state.
	EventStateChange
	// EventDetectionOccurred — a food item was seen in a frame.
	EventDetectionOccurred
	// EventStepHint — a visual cue relevant to the current step
	// (e.g. the water looks like it's boiling).
	EventStepHint
)

// String returns a human-readable event kind.
func (k EventKind) String() string {
	switch k {
	case EventTimerTick:
		return "timer_tick"
	case EventStepAdvanced:
		return "step_advanced"
	case EventTimerPaused:
		return "timer_paused"
	case EventTimerResumed:
		return "timer_resumed"
	case EventStateChange:
		return "state_change"
	case EventDetectionOccurred:
		return "detection"
	case EventStepHint:
		return "step_hint"
	default:
		return "unknown"
	}
}

// Event is what subscribers receive. Exactly one payload field is set,
// determined by Kind. Events are immutable once constructed; snapshots
// are value copies, so a subscriber can never observe a half-mutated
// internal entity.
type Event struct {
	Kind EventKind
	At   time.Time

	Recipe    *Snapshot   // timer/step kinds and StepHint
	Item      *ItemChange // StateChange
	Detection *Detection  // DetectionOccurred
	Hint      string      // StepHint only

	// Seq is assigned by the broadcaster at publish time, strictly
	// increasing across all events it accepts.
	Seq uint64
}

// TimerEvent builds an event of the given timer/step kind carrying a
// recipe snapshot.
func TimerEvent(kind EventKind, snap Snapshot) Event {
	return Event{Kind: kind, At: time.Now(), Recipe: &snap}
}

// StateChangeEvent builds a StateChange event for a tracked item.
func StateChangeEvent(itemID int, newState ItemState) Event {
	return Event{
		Kind: EventStateChange,
		At:   time.Now(),
		Item: &ItemChange{ItemID: itemID, NewState: newState},
	}
}

// DetectionEvent builds a DetectionOccurred event for one raw detection.
func DetectionEvent(d Detection) Event {
	return Event{Kind: EventDetectionOccurred, At: time.Now(), Detection: &d}
}

// HintEvent builds a StepHint event with the current recipe snapshot.
func HintEvent(hint string, snap Snapshot) Event {
	return Event{Kind: EventStepHint, At: time.Now(), Recipe: &snap, Hint: hint}
}
