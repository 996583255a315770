package domain

import (
	"context"
	"image"
)

// FrameSource supplies video frames to the detection loop. Next returns
// nil when no frame is available this cycle; the loop then skips the
// cycle. Implementations can wrap a camera, a file player, or a
// synthetic scene.
type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
}

// Detector is the boundary to the external vision capability. Detect
// returns zero or more labeled detections for a frame.
//
// A permanently broken backend wraps ErrDetectorBackend; the caller
// classifies it as fatal and stops calling. Any other error is
// transient: logged, cycle skipped, loop continues.
type Detector interface {
	Detect(ctx context.Context, frame image.Image) ([]Detection, error)
}

// RecipeSource provides recipes. Implementations can be in-memory
// (hardcoded), file-based, or API-backed.
type RecipeSource interface {
	List(ctx context.Context) ([]Recipe, error)
	Get(ctx context.Context, id string) (*Recipe, error)
}

// Publisher accepts events for fan-out. Publish must never block the
// caller; delivery to slow subscribers is the publisher's problem.
type Publisher interface {
	Publish(ev Event)
}

// CommandParser converts raw user input into structured commands.
type CommandParser interface {
	Parse(input string) Command
}
