package vision

import (
	"image"
	"image/color"
)

// Default brightness/contrast adjustment applied before detection.
// Kitchen scenes tend to be dim; a mild boost helps weak detections.
const (
	DefaultAlpha = 1.2 // contrast, 1.0–3.0
	DefaultBeta  = 10  // brightness, 0–100
)

// Adjust returns a copy of frame with per-pixel contrast/brightness
// adjustment: out = clamp(alpha*in + beta).
func Adjust(frame image.Image, alpha float64, beta int) *image.RGBA {
	b := frame.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := frame.At(x, y).RGBA()
			out.SetRGBA(x, y, color.RGBA{
				R: clamp8(alpha*float64(r>>8) + float64(beta)),
				G: clamp8(alpha*float64(g>>8) + float64(beta)),
				B: clamp8(alpha*float64(bl>>8) + float64(beta)),
				A: uint8(a >> 8),
			})
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// resizeRGB resizes frame to size×size with nearest-neighbor sampling
// and returns a CHW float32 plane scaled to [0,1], the input layout
// the YOLO graph expects.
func resizeRGB(frame image.Image, size int) []float32 {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float32, 3*size*size)

	plane := size * size
	for y := 0; y < size; y++ {
		srcY := b.Min.Y + y*h/size
		for x := 0; x < size; x++ {
			srcX := b.Min.X + x*w/size
			r, g, bl, _ := frame.At(srcX, srcY).RGBA()
			i := y*size + x
			out[i] = float32(r>>8) / 255.0
			out[plane+i] = float32(g>>8) / 255.0
			out[2*plane+i] = float32(bl>>8) / 255.0
		}
	}
	return out
}
