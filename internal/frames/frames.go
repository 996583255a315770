// Package frames provides FrameSource implementations. Real camera
// capture is out of scope; these sources feed the detection loop with
// pre-decoded or generated frames.
package frames

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/hammamikhairi/visioncook/internal/domain"
)

// Compile-time interface checks.
var (
	_ domain.FrameSource = (*Playlist)(nil)
	_ domain.FrameSource = (*Synthetic)(nil)
)

// Playlist serves a fixed sequence of frames, then reports ErrNoFrame.
type Playlist struct {
	mu     sync.Mutex
	frames []image.Image
	pos    int
}

// NewPlaylist creates a source over the given frames.
func NewPlaylist(frames ...image.Image) *Playlist {
	return &Playlist{frames: frames}
}

// Next returns the next frame, or ErrNoFrame when exhausted.
func (p *Playlist) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pos >= len(p.frames) {
		return nil, domain.ErrNoFrame
	}
	f := p.frames[p.pos]
	p.pos++
	return f, nil
}

// Synthetic generates a kitchen scene for demo runs: a dark counter
// with a pan region whose contents start pale (raw) and brown a little
// more on every frame. After enough frames the pan's mean color has
// drifted far enough from the first sample that the tracker flips the
// item to cooked.
type Synthetic struct {
	mu    sync.Mutex
	count int

	width  int
	height int
	pan    image.Rectangle
}

// NewSynthetic creates a generated scene of the given size with the
// pan in the center third.
func NewSynthetic(width, height int) *Synthetic {
	return &Synthetic{
		width:  width,
		height: height,
		pan:    image.Rect(width/3, height/3, 2*width/3, 2*height/3),
	}
}

// Pan returns the pan region, which is where a scripted detector
// should claim to see food.
func (s *Synthetic) Pan() domain.Box {
	return domain.Box{
		X: s.pan.Min.X,
		Y: s.pan.Min.Y,
		W: s.pan.Dx(),
		H: s.pan.Dy(),
	}
}

// Next renders the scene one frame further along.
func (s *Synthetic) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	step := s.count
	s.count++
	s.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	counter := color.RGBA{R: 40, G: 35, B: 30, A: 255}
	food := panColor(step)

	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			p := image.Pt(x, y)
			if p.In(s.pan) {
				img.SetRGBA(x, y, food)
			} else {
				img.SetRGBA(x, y, counter)
			}
		}
	}
	return img, nil
}

// panColor browns the pan contents as frames pass: pale dough shifting
// toward a darker crust. Each frame moves the channels by a fixed
// amount, so the cumulative color distance from frame 0 grows
// monotonically and crosses the tracker's default threshold around
// the fifth frame.
func panColor(step int) color.RGBA {
	darken := step * 8
	if darken > 150 {
		darken = 150
	}
	return color.RGBA{
		R: uint8(230 - darken/2),
		G: uint8(210 - darken),
		B: uint8(170 - darken),
		A: 255,
	}
}
