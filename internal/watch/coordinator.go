// Package watch runs the two periodic loops that drive the system:
// the timer loop, which ticks the recipe countdown once per second,
// and the detection loop, which grabs a frame every couple of seconds,
// asks the detector what it sees, and feeds the tracked-item state
// machine. Both loops publish through the shared broadcaster and stop
// together on a single cancellation signal.
package watch

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/logger"
	"github.com/hammamikhairi/visioncook/internal/recipe"
	"github.com/hammamikhairi/visioncook/internal/tracker"
	"github.com/hammamikhairi/visioncook/internal/vision"
)

// Option configures the coordinator.
type Option func(*Coordinator)

// WithTickInterval sets the timer loop period.
func WithTickInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		c.tickInterval = d
	}
}

// WithDetectInterval sets the detection loop period.
func WithDetectInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		c.detectInterval = d
	}
}

// WithAllowFunc replaces the food allow-list filter.
func WithAllowFunc(fn func(label string) bool) Option {
	return func(c *Coordinator) {
		c.allow = fn
	}
}

// WithBoilWatch enables the boiling heuristic over a frame region.
// When the region's turbulence crosses the threshold a StepHint event
// is published, rate-limited by the cooldown.
func WithBoilWatch(region image.Rectangle, threshold int, cooldown time.Duration) Option {
	return func(c *Coordinator) {
		c.boilRegion = &region
		c.boilThreshold = threshold
		c.boilCooldown = cooldown
	}
}

// Coordinator owns the timer and detection loops.
type Coordinator struct {
	machine  *recipe.Machine
	frames   domain.FrameSource
	detector domain.Detector
	arena    *tracker.Arena
	bus      domain.Publisher
	log      *logger.Logger

	tickInterval   time.Duration
	detectInterval time.Duration
	allow          func(label string) bool

	boilRegion    *image.Rectangle
	boilThreshold int
	boilCooldown  time.Duration
	lastBoilHint  time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	detectionDown atomic.Bool
}

// New creates a coordinator with the given collaborators and options.
func New(machine *recipe.Machine, frames domain.FrameSource, detector domain.Detector,
	arena *tracker.Arena, bus domain.Publisher, log *logger.Logger, opts ...Option) *Coordinator {

	c := &Coordinator{
		machine:        machine,
		frames:         frames,
		detector:       detector,
		arena:          arena,
		bus:            bus,
		log:            log,
		tickInterval:   1 * time.Second,
		detectInterval: 2 * time.Second,
		allow:          vision.IsFood,
		boilCooldown:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches both loops. Non-blocking; call Stop (or cancel the
// parent context) to shut down.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		c.log.Warn("coordinator already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	c.wg.Add(2)
	go c.timerLoop(childCtx)
	go c.detectLoop(childCtx)

	c.log.Info("coordinator started (tick=%s, detect=%s)", c.tickInterval, c.detectInterval)
}

// Stop cancels both loops and waits for them to exit. No event is
// delivered after Stop returns.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.running = false
	c.mu.Unlock()

	c.wg.Wait()
	c.log.Info("coordinator stopped")
}

// DetectionAlive reports whether the detection loop is still running.
// It goes false after a fatal backend error while the timer loop keeps
// going — recipe-step control works even with vision down.
func (c *Coordinator) DetectionAlive() bool {
	return !c.detectionDown.Load()
}

// timerLoop ticks the recipe countdown.
func (c *Coordinator) timerLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.machine.Tick()
		}
	}
}

// detectLoop runs detection cycles until the context is cancelled or
// the backend fails fatally.
func (c *Coordinator) detectLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.detectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if fatal := c.detectCycle(ctx); fatal {
				c.detectionDown.Store(true)
				c.log.Error("detection loop stopped; timer and broadcast keep running")
				return
			}
		}
	}
}

// detectCycle runs one detection pass. Returns true only for fatal
// backend failures; transient problems log and skip the cycle.
func (c *Coordinator) detectCycle(ctx context.Context) bool {
	frame, err := c.frames.Next(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		c.log.Debug("no frame this cycle: %v", err)
		return false
	}
	if frame == nil {
		return false
	}

	dets, err := c.detector.Detect(ctx, frame)
	if err != nil {
		if errors.Is(err, domain.ErrDetectorBackend) {
			c.log.Error("detection backend broken: %v", err)
			return true
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		c.log.Warn("transient detection failure, skipping cycle: %v", err)
		return false
	}

	var food []domain.Detection
	for _, d := range dets {
		if c.allow(d.Label) {
			food = append(food, d)
		}
	}
	c.log.Debug("detection cycle: %d raw, %d food", len(dets), len(food))

	// Raw sightings first — one event per qualifying detection.
	for _, d := range food {
		c.bus.Publish(domain.DetectionEvent(d))
	}

	if len(food) > 0 {
		c.trackFirst(food[0], frame)
	}

	c.maybeBoilHint(frame)
	return false
}

// trackFirst binds the cycle's first qualifying detection to the
// tracked-item arena and publishes a StateChange when the update
// flipped the item to cooked.
func (c *Coordinator) trackFirst(d domain.Detection, frame image.Image) {
	id := c.arena.Associate(d)
	if id < 0 {
		item := c.arena.Create(d.Label, d.Box, frame)
		c.log.Info("tracking new item %d (%s)", item.ID, item.Label)
		return
	}

	item, transitioned, err := c.arena.Update(id, d.Box, frame)
	if err != nil {
		c.log.Error("updating item %d: %v", id, err)
		return
	}
	if transitioned {
		c.bus.Publish(domain.StateChangeEvent(item.ID, item.State))
	}
}

// maybeBoilHint publishes a StepHint when the configured region looks
// like boiling water, at most once per cooldown.
func (c *Coordinator) maybeBoilHint(frame image.Image) {
	if c.boilRegion == nil {
		return
	}
	if !vision.IsBoiling(frame, *c.boilRegion, c.boilThreshold) {
		return
	}
	now := time.Now()
	if now.Sub(c.lastBoilHint) < c.boilCooldown {
		return
	}
	c.lastBoilHint = now
	c.machine.PublishHint("looks like the water is boiling")
}
