package tracker

import (
	"image"

	"github.com/hammamikhairi/visioncook/internal/domain"
)

// MeanColor returns the per-channel mean RGB over the pixels of frame
// inside box, in 8-bit space. The box is clipped to the frame bounds;
// an empty or fully out-of-bounds box samples as the zero color.
func MeanColor(frame image.Image, box domain.Box) domain.Color {
	if frame == nil || box.Empty() {
		return domain.Color{}
	}

	r := box.Rect().Intersect(frame.Bounds())
	if r.Empty() {
		return domain.Color{}
	}

	var sumR, sumG, sumB float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			pr, pg, pb, _ := frame.At(x, y).RGBA()
			// RGBA returns 16-bit channels; scale down to 8-bit.
			sumR += float64(pr >> 8)
			sumG += float64(pg >> 8)
			sumB += float64(pb >> 8)
		}
	}

	n := float64(r.Dx() * r.Dy())
	return domain.Color{sumR / n, sumG / n, sumB / n}
}
