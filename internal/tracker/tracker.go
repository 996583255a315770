// Package tracker owns the tracked-item arena and the per-item
// cooking-state machine derived from visual change.
//
// Each item samples its mean color at creation; once the mean color of
// a later frame drifts past a fixed Euclidean threshold the item flips
// from raw to cooked. The transition is one-directional — an item never
// goes back to raw and further updates are state no-ops.
package tracker

import (
	"image"
	"sync"

	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/logger"
)

// DefaultThreshold is the empirical color-distance threshold at which
// an item is considered cooked.
const DefaultThreshold = 50.0

// Option configures the arena.
type Option func(*Arena)

// WithThreshold overrides the cooked color-distance threshold.
func WithThreshold(d float64) Option {
	return func(a *Arena) {
		if d > 0 {
			a.threshold = d
		}
	}
}

// Arena holds every tracked item, keyed by a monotonic integer id.
// Items are created on first detection and never deleted — there is no
// re-identification across disappearance. The arena never publishes
// events itself; Update reports transitions and the caller emits.
type Arena struct {
	mu        sync.Mutex
	items     map[int]*domain.TrackedItem
	order     []int // creation order, for deterministic listing
	nextID    int
	threshold float64
	log       *logger.Logger
}

// NewArena creates an empty arena.
func NewArena(log *logger.Logger, opts ...Option) *Arena {
	a := &Arena{
		items:     make(map[int]*domain.TrackedItem),
		threshold: DefaultThreshold,
		log:       log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Create registers a new item for a detection. The initial color is
// the mean over the box; a degenerate box samples as zero, not an
// error. Returns a copy of the created item.
func (a *Arena) Create(label string, box domain.Box, frame image.Image) domain.TrackedItem {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := MeanColor(frame, box)
	item := &domain.TrackedItem{
		ID:           a.nextID,
		Label:        label,
		Box:          box,
		InitialColor: c,
		CurrentColor: c,
		State:        domain.ItemRaw,
	}
	a.items[item.ID] = item
	a.order = append(a.order, item.ID)
	a.nextID++

	a.log.Info("tracker: new item %d (%s) at %+v, initial color %.1f/%.1f/%.1f",
		item.ID, label, box, c[0], c[1], c[2])
	return *item
}

// Update refreshes an item from a new frame. The current color is
// always recomputed for observability; the state check only runs while
// the item is still raw. Returns a copy of the item and whether this
// call transitioned it to cooked — the caller must emit exactly one
// StateChange event when it did.
func (a *Arena) Update(id int, box domain.Box, frame image.Image) (domain.TrackedItem, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.items[id]
	if !ok {
		return domain.TrackedItem{}, false, domain.ErrNotFound
	}

	item.Box = box
	item.CurrentColor = MeanColor(frame, box)

	if item.State != domain.ItemRaw {
		return *item, false, nil
	}

	dist := item.CurrentColor.Distance(item.InitialColor)
	a.log.Debug("tracker: item %d color distance %.1f (threshold %.1f)", id, dist, a.threshold)
	if dist <= a.threshold {
		return *item, false, nil
	}

	item.State = domain.ItemCooked
	a.log.Info("tracker: item %d (%s) transitioned to cooked (distance %.1f)", id, item.Label, dist)
	return *item, true, nil
}

// Get returns a copy of an item by id.
func (a *Arena) Get(id int) (domain.TrackedItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.items[id]
	if !ok {
		return domain.TrackedItem{}, domain.ErrNotFound
	}
	return *item, nil
}

// Items returns copies of all tracked items in creation order.
func (a *Arena) Items() []domain.TrackedItem {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.TrackedItem, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.items[id])
	}
	return out
}

// Len returns the number of tracked items.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Associate picks which tracked item a detection belongs to, or -1 for
// "create a new one". The current policy is deliberately the simplest
// thing that works for a single pan on a single stove: the first item
// ever created claims every later detection. Replacing this with
// IoU/overlap matching is a localized change.
func (a *Arena) Associate(d domain.Detection) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.order) == 0 {
		return -1
	}
	return a.order[0]
}
