package vision

import (
	"image"
	"image/color"
)

// DefaultBoilThreshold is the minimum turbulence score before the
// water in a region is considered to be boiling. Tune per camera setup.
const DefaultBoilThreshold = 500

// Turbulence measures how much edge activity a frame region shows.
// Boiling water is full of bubbles and ripples, which read as dense
// edges; still water reads nearly flat. The frame region is converted
// to grayscale, blurred with a 3x3 box kernel to knock out sensor
// noise, then scored by counting pixels whose gradient magnitude
// exceeds a fixed cutoff.
func Turbulence(frame image.Image, region image.Rectangle) int {
	r := region.Intersect(frame.Bounds())
	if r.Dx() < 3 || r.Dy() < 3 {
		return 0
	}

	w, h := r.Dx(), r.Dy()
	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray[y*w+x] = luminance(frame.At(r.Min.X+x, r.Min.Y+y))
		}
	}

	blurred := boxBlur(gray, w, h)

	// Count strong-gradient pixels via central differences.
	const cutoff = 50.0
	edges := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := blurred[y*w+x+1] - blurred[y*w+x-1]
			gy := blurred[(y+1)*w+x] - blurred[(y-1)*w+x]
			if gx*gx+gy*gy > cutoff*cutoff {
				edges++
			}
		}
	}
	return edges
}

// IsBoiling reports whether the region's turbulence exceeds threshold.
// A threshold <= 0 uses DefaultBoilThreshold.
func IsBoiling(frame image.Image, region image.Rectangle, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultBoilThreshold
	}
	return Turbulence(frame, region) > threshold
}

// luminance returns the Rec. 601 luma of a color in 8-bit space.
func luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}

// boxBlur applies a 3x3 mean filter. Border pixels are copied through.
func boxBlur(src []float64, w, h int) []float64 {
	out := make([]float64, len(src))
	copy(out, src)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			sum := 0.0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += src[(y+dy)*w+x+dx]
				}
			}
			out[y*w+x] = sum / 9
		}
	}
	return out
}
