package watch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hammamikhairi/visioncook/internal/broadcast"
	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/frames"
	"github.com/hammamikhairi/visioncook/internal/logger"
	"github.com/hammamikhairi/visioncook/internal/recipe"
	"github.com/hammamikhairi/visioncook/internal/tracker"
	"github.com/hammamikhairi/visioncook/internal/vision"
)

type fixture struct {
	machine *recipe.Machine
	arena   *tracker.Arena
	bus     *broadcast.Broadcaster
	events  <-chan domain.Event
}

func setup(t *testing.T) *fixture {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	bus := broadcast.New(log, broadcast.WithQueueCap(256))
	src := recipe.NewMemorySource(log)
	r, err := src.Get(context.Background(), "pasta")
	if err != nil {
		t.Fatalf("getting recipe: %v", err)
	}
	machine, err := recipe.NewMachine(r, bus, log)
	if err != nil {
		t.Fatalf("creating machine: %v", err)
	}
	events, err := bus.Subscribe("test")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return &fixture{
		machine: machine,
		arena:   tracker.NewArena(log),
		bus:     bus,
		events:  events,
	}
}

// waitFor drains events until one matches or the deadline passes.
func waitFor(t *testing.T, ch <-chan domain.Event, kind domain.EventKind) domain.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
}

func TestDetectionDrivesTrackerToStateChange(t *testing.T) {
	f := setup(t)
	defer f.bus.Close()
	log := logger.New(logger.LevelOff, nil)

	scene := frames.NewSynthetic(120, 90)
	pan := scene.Pan()
	detector := vision.NewScript(vision.ScriptEntry{
		Detections: []domain.Detection{
			{Label: "pizza", Confidence: 0.85, Box: pan},
			{Label: "dog", Confidence: 0.95, Box: pan}, // filtered out
		},
	})

	coord := New(f.machine, scene, detector, f.arena, f.bus, log,
		WithTickInterval(time.Hour), // keep timer quiet for this test
		WithDetectInterval(5*time.Millisecond),
	)
	coord.Start(context.Background())
	defer coord.Stop()

	// Raw sighting events flow every cycle.
	ev := waitFor(t, f.events, domain.EventDetectionOccurred)
	if ev.Detection == nil || ev.Detection.Label != "pizza" {
		t.Fatalf("unexpected detection payload: %+v", ev.Detection)
	}

	// The pan browns over time and the single tracked item cooks.
	ev = waitFor(t, f.events, domain.EventStateChange)
	if ev.Item == nil || ev.Item.NewState != domain.ItemCooked {
		t.Fatalf("unexpected state change payload: %+v", ev.Item)
	}
	if ev.Item.ItemID != 0 {
		t.Fatalf("expected item 0, got %d", ev.Item.ItemID)
	}

	// Exactly one transition, ever: keep consuming for a while and
	// count state changes.
	extra := 0
	timeout := time.After(100 * time.Millisecond)
	for done := false; !done; {
		select {
		case ev := <-f.events:
			if ev.Kind == domain.EventStateChange {
				extra++
			}
		case <-timeout:
			done = true
		}
	}
	if extra != 0 {
		t.Fatalf("saw %d extra state changes", extra)
	}

	if f.arena.Len() != 1 {
		t.Fatalf("expected a single tracked item, got %d", f.arena.Len())
	}
}

func TestFatalBackendStopsOnlyDetection(t *testing.T) {
	f := setup(t)
	defer f.bus.Close()
	log := logger.New(logger.LevelOff, nil)

	detector := vision.NewScript(vision.ScriptEntry{
		Err: fmt.Errorf("model weights incompatible: %w", domain.ErrDetectorBackend),
	})

	coord := New(f.machine, frames.NewSynthetic(64, 48), detector, f.arena, f.bus, log,
		WithTickInterval(5*time.Millisecond),
		WithDetectInterval(5*time.Millisecond),
	)
	f.machine.Resume()
	coord.Start(context.Background())
	defer coord.Stop()

	// Detection dies on its first cycle...
	deadline := time.Now().Add(3 * time.Second)
	for coord.DetectionAlive() {
		if time.Now().After(deadline) {
			t.Fatal("detection loop never stopped")
		}
		time.Sleep(time.Millisecond)
	}

	// ...but ticks keep flowing afterwards.
	waitFor(t, f.events, domain.EventTimerTick)
	waitFor(t, f.events, domain.EventTimerTick)

	// And commands still work.
	if !f.machine.Advance() {
		t.Fatal("advance failed after detection death")
	}
	waitFor(t, f.events, domain.EventStepAdvanced)
}

func TestTransientErrorSkipsCycle(t *testing.T) {
	f := setup(t)
	defer f.bus.Close()
	log := logger.New(logger.LevelOff, nil)

	scene := frames.NewSynthetic(64, 48)
	detector := vision.NewScript(
		vision.ScriptEntry{Err: fmt.Errorf("blurry frame")},
		vision.ScriptEntry{Detections: []domain.Detection{
			{Label: "carrot", Confidence: 0.6, Box: scene.Pan()},
		}},
	)

	coord := New(f.machine, scene, detector, f.arena, f.bus, log,
		WithTickInterval(time.Hour),
		WithDetectInterval(5*time.Millisecond),
	)
	coord.Start(context.Background())
	defer coord.Stop()

	ev := waitFor(t, f.events, domain.EventDetectionOccurred)
	if ev.Detection.Label != "carrot" {
		t.Fatalf("expected carrot after transient error, got %s", ev.Detection.Label)
	}
	if !coord.DetectionAlive() {
		t.Fatal("transient error killed the detection loop")
	}
}

func TestNoFrameSkipsCycle(t *testing.T) {
	f := setup(t)
	defer f.bus.Close()
	log := logger.New(logger.LevelOff, nil)

	// Empty playlist: every cycle reports ErrNoFrame.
	coord := New(f.machine, frames.NewPlaylist(), vision.NewScript(), f.arena, f.bus, log,
		WithTickInterval(5*time.Millisecond),
		WithDetectInterval(5*time.Millisecond),
	)
	f.machine.Resume()
	coord.Start(context.Background())
	defer coord.Stop()

	// The loop survives frame starvation and the timer still ticks.
	waitFor(t, f.events, domain.EventTimerTick)
	if !coord.DetectionAlive() {
		t.Fatal("frame starvation killed the detection loop")
	}
}

func TestStopEndsDelivery(t *testing.T) {
	f := setup(t)
	defer f.bus.Close()
	log := logger.New(logger.LevelOff, nil)

	coord := New(f.machine, frames.NewSynthetic(64, 48), vision.NewScript(), f.arena, f.bus, log,
		WithTickInterval(5*time.Millisecond),
		WithDetectInterval(5*time.Millisecond),
	)
	f.machine.Resume()
	coord.Start(context.Background())
	waitFor(t, f.events, domain.EventTimerTick)

	coord.Stop()
	coord.Stop() // idempotent

	// Drain whatever was queued before the stop.
	for {
		select {
		case <-f.events:
			continue
		case <-time.After(50 * time.Millisecond):
		}
		break
	}

	// Nothing new arrives once both loops have exited.
	select {
	case ev := <-f.events:
		t.Fatalf("event delivered after stop: %s", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBoilWatchPublishesHint(t *testing.T) {
	f := setup(t)
	defer f.bus.Close()
	log := logger.New(logger.LevelOff, nil)

	// The synthetic pan boundary has edges; a tiny threshold over the
	// whole frame triggers the heuristic.
	scene := frames.NewSynthetic(64, 48)
	coord := New(f.machine, scene, vision.NewScript(), f.arena, f.bus, log,
		WithTickInterval(time.Hour),
		WithDetectInterval(5*time.Millisecond),
		WithBoilWatch(scene.Pan().Rect().Inset(-8), 1, time.Hour),
	)
	coord.Start(context.Background())
	defer coord.Stop()

	ev := waitFor(t, f.events, domain.EventStepHint)
	if ev.Hint == "" || ev.Recipe == nil {
		t.Fatalf("malformed hint event: %+v", ev)
	}
}
