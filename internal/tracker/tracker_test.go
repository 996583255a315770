package tracker

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/logger"
)

// uniformFrame returns a solid-color frame of the given size.
func uniformFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newTestArena(t *testing.T, opts ...Option) *Arena {
	t.Helper()
	return NewArena(logger.New(logger.LevelOff, nil), opts...)
}

func TestMeanColor(t *testing.T) {
	red := uniformFrame(100, 100, color.RGBA{R: 200, A: 255})

	tests := []struct {
		name string
		box  domain.Box
		want domain.Color
	}{
		{"full frame", domain.Box{X: 0, Y: 0, W: 100, H: 100}, domain.Color{200, 0, 0}},
		{"sub-region", domain.Box{X: 10, Y: 10, W: 20, H: 20}, domain.Color{200, 0, 0}},
		{"empty box", domain.Box{X: 10, Y: 10, W: 0, H: 5}, domain.Color{}},
		{"negative size", domain.Box{X: 10, Y: 10, W: -4, H: 5}, domain.Color{}},
		{"fully outside", domain.Box{X: 500, Y: 500, W: 10, H: 10}, domain.Color{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeanColor(red, tt.box)
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMeanColorClipsToFrame(t *testing.T) {
	frame := uniformFrame(50, 50, color.RGBA{R: 60, G: 60, B: 60, A: 255})
	// Box hangs over the right edge; only the in-bounds part counts.
	got := MeanColor(frame, domain.Box{X: 40, Y: 0, W: 100, H: 50})
	want := domain.Color{60, 60, 60}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTransitionThreshold(t *testing.T) {
	// A 60-unit drift crosses the default threshold, a 10-unit one doesn't.
	tests := []struct {
		name       string
		updateC    color.RGBA
		transition bool
	}{
		{"distance 60 cooks", color.RGBA{R: 60, A: 255}, true},
		{"distance 10 stays raw", color.RGBA{R: 10, A: 255}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arena := newTestArena(t)
			box := domain.Box{X: 0, Y: 0, W: 10, H: 10}

			black := uniformFrame(10, 10, color.RGBA{A: 255})
			item := arena.Create("pizza", box, black)
			if item.State != domain.ItemRaw {
				t.Fatalf("new item not raw: %s", item.State)
			}
			if item.InitialColor != (domain.Color{}) {
				t.Fatalf("expected zero initial color, got %v", item.InitialColor)
			}

			updated, transitioned, err := arena.Update(item.ID, box, uniformFrame(10, 10, tt.updateC))
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if transitioned != tt.transition {
				t.Fatalf("expected transitioned=%v, got %v", tt.transition, transitioned)
			}
			wantState := domain.ItemRaw
			if tt.transition {
				wantState = domain.ItemCooked
			}
			if updated.State != wantState {
				t.Fatalf("expected state %s, got %s", wantState, updated.State)
			}
		})
	}
}

func TestCookedIsTerminal(t *testing.T) {
	arena := newTestArena(t)
	box := domain.Box{X: 0, Y: 0, W: 10, H: 10}

	item := arena.Create("pizza", box, uniformFrame(10, 10, color.RGBA{A: 255}))

	hot := uniformFrame(10, 10, color.RGBA{R: 120, A: 255})
	if _, transitioned, _ := arena.Update(item.ID, box, hot); !transitioned {
		t.Fatal("expected transition to cooked")
	}

	// Repeated updates, including back to the original color, never
	// change state and never report another transition.
	frames := []*image.RGBA{
		hot,
		uniformFrame(10, 10, color.RGBA{A: 255}), // back to initial
		uniformFrame(10, 10, color.RGBA{R: 250, G: 250, B: 250, A: 255}),
	}
	for i, f := range frames {
		updated, transitioned, err := arena.Update(item.ID, box, f)
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		if transitioned {
			t.Fatalf("update %d reported a second transition", i)
		}
		if updated.State != domain.ItemCooked {
			t.Fatalf("update %d: cooked item reverted to %s", i, updated.State)
		}
	}

	// Color stays fresh for observability even after cooking.
	got, err := arena.Get(item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentColor != (domain.Color{250, 250, 250}) {
		t.Fatalf("current color not refreshed: %v", got.CurrentColor)
	}
}

func TestUpdateUnknownItem(t *testing.T) {
	arena := newTestArena(t)
	_, _, err := arena.Update(42, domain.Box{W: 1, H: 1}, uniformFrame(5, 5, color.RGBA{}))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssociateSingleSlot(t *testing.T) {
	arena := newTestArena(t)
	frame := uniformFrame(20, 20, color.RGBA{R: 90, G: 40, B: 20, A: 255})

	d := domain.Detection{Label: "pizza", Confidence: 0.8, Box: domain.Box{W: 10, H: 10}}
	if id := arena.Associate(d); id != -1 {
		t.Fatalf("empty arena should return -1, got %d", id)
	}

	first := arena.Create(d.Label, d.Box, frame)
	if first.ID != 0 {
		t.Fatalf("first item should get id 0, got %d", first.ID)
	}

	// Every later detection binds to the first item, wherever it is.
	other := domain.Detection{Label: "carrot", Confidence: 0.9, Box: domain.Box{X: 15, Y: 15, W: 4, H: 4}}
	if id := arena.Associate(other); id != first.ID {
		t.Fatalf("expected association to item %d, got %d", first.ID, id)
	}
	if arena.Len() != 1 {
		t.Fatalf("expected 1 tracked item, got %d", arena.Len())
	}
}

func TestCustomThreshold(t *testing.T) {
	arena := newTestArena(t, WithThreshold(5))
	box := domain.Box{W: 10, H: 10}

	item := arena.Create("cup", box, uniformFrame(10, 10, color.RGBA{A: 255}))
	_, transitioned, err := arena.Update(item.ID, box, uniformFrame(10, 10, color.RGBA{R: 10, A: 255}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !transitioned {
		t.Fatal("distance 10 should exceed a threshold of 5")
	}
}
