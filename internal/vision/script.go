package vision

import (
	"context"
	"image"
	"sync"

	"github.com/hammamikhairi/visioncook/internal/domain"
)

// Compile-time interface check.
var _ domain.Detector = (*Script)(nil)

// Script is a Detector that plays back a fixed sequence of detection
// results, one entry per Detect call. Used by the demo binary when no
// model is configured, and by tests. The last entry repeats forever;
// an entry with a non-nil error is returned as that error.
type Script struct {
	mu      sync.Mutex
	entries []ScriptEntry
	pos     int
}

// ScriptEntry is one Detect result.
type ScriptEntry struct {
	Detections []domain.Detection
	Err        error
}

// NewScript creates a scripted detector.
func NewScript(entries ...ScriptEntry) *Script {
	return &Script{entries: entries}
}

// Detect returns the next scripted result.
func (s *Script) Detect(ctx context.Context, frame image.Image) ([]domain.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return nil, nil
	}
	e := s.entries[s.pos]
	if s.pos < len(s.entries)-1 {
		s.pos++
	}
	return e.Detections, e.Err
}
