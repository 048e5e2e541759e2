package detector

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// padColor is the Ultralytics letterbox fill.
var padColor = color.NRGBA{R: 114, G: 114, B: 114, A: 255}

// geometry records how a source image was placed into the model input so
// boxes can be mapped back to source pixels.
type geometry struct {
	scale      float32
	padX, padY float32
	srcW, srcH int
}

// letterbox resizes img to fit width x height keeping its aspect ratio and
// centers it on a padded canvas.
func letterbox(img image.Image, width, height int) (*image.NRGBA, geometry) {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	scale := math.Min(float64(width)/float64(sw), float64(height)/float64(sh))
	nw := max(1, int(math.Round(float64(sw)*scale)))
	nh := max(1, int(math.Round(float64(sh)*scale)))

	resized := imaging.Resize(img, nw, nh, imaging.Linear)
	padX := (width - nw) / 2
	padY := (height - nh) / 2
	canvas := imaging.New(width, height, padColor)
	canvas = imaging.Paste(canvas, resized, image.Pt(padX, padY))

	return canvas, geometry{
		scale: float32(scale),
		padX:  float32(padX),
		padY:  float32(padY),
		srcW:  sw,
		srcH:  sh,
	}
}

// fillInput writes img as planar RGB scaled to [0, 1] into dst, which must
// hold 3*w*h values.
func fillInput(dst []float32, img *image.NRGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	plane := w * h
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			i := y*w + x
			p := row[x*4:]
			dst[i] = float32(p[0]) / 255.0
			dst[plane+i] = float32(p[1]) / 255.0
			dst[2*plane+i] = float32(p[2]) / 255.0
		}
	}
}

// toSource maps a center-format box in model input space to corner format in
// source pixels, clamped to the source bounds.
func (g geometry) toSource(cx, cy, w, h float32) [4]float32 {
	x1 := (cx - w/2 - g.padX) / g.scale
	y1 := (cy - h/2 - g.padY) / g.scale
	x2 := (cx + w/2 - g.padX) / g.scale
	y2 := (cy + h/2 - g.padY) / g.scale
	fw, fh := float32(g.srcW), float32(g.srcH)
	return [4]float32{
		clamp(x1, 0, fw),
		clamp(y1, 0, fh),
		clamp(x2, 0, fw),
		clamp(y2, 0, fh),
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
