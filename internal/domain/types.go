// Package domain defines the core types and interfaces for the cooking
// watcher. All other packages depend on domain; domain depends on nothing.
package domain

import (
	"image"
	"math"
)

// Box is an axis-aligned bounding box in pixel coordinates of the
// source frame.
type Box struct {
	X int
	Y int
	W int
	H int
}

// Rect converts the box to an image.Rectangle for pixel access.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Empty reports whether the box covers no pixels.
func (b Box) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// Detection is one recognized object in a frame. Detections are
// ephemeral — they live only for the cycle that produced them.
type Detection struct {
	Label      string
	Confidence float64 // in [0,1]
	Box        Box
}

// Color is an average RGB sample in 8-bit-per-channel space.
type Color [3]float64

// Distance returns the Euclidean distance to another color.
func (c Color) Distance(o Color) float64 {
	dr := c[0] - o[0]
	dg := c[1] - o[1]
	db := c[2] - o[2]
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// ItemState is the cooking state of a tracked item.
type ItemState int

const (
	// ItemRaw is the initial state of every tracked item.
	ItemRaw ItemState = iota
	// ItemCooked is terminal. There is no transition back to raw.
	ItemCooked
)

// String returns a human-readable item state.
func (s ItemState) String() string {
	switch s {
	case ItemRaw:
		return "raw"
	case ItemCooked:
		return "cooked"
	default:
		return "unknown"
	}
}

// TrackedItem is a persistent logical entity representing one physical
// object across frames. Created on first detection, never deleted.
// Owned exclusively by the tracker arena; mutated only via its Update.
type TrackedItem struct {
	ID           int
	Label        string
	Box          Box
	InitialColor Color
	CurrentColor Color
	State        ItemState
}

// ItemChange is the payload of a StateChange event.
type ItemChange struct {
	ItemID   int
	NewState ItemState
}
