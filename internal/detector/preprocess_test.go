package detector

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestLetterbox_WideImagePadsVertically(t *testing.T) {
	src := solid(1280, 640, color.NRGBA{R: 255, A: 255})
	canvas, g := letterbox(src, 640, 640)

	require.Equal(t, image.Rect(0, 0, 640, 640), canvas.Bounds())
	assert.InDelta(t, 0.5, g.scale, 1e-6)
	assert.Equal(t, float32(0), g.padX)
	assert.Equal(t, float32(160), g.padY)
	assert.Equal(t, 1280, g.srcW)
	assert.Equal(t, 640, g.srcH)

	assert.Equal(t, padColor, canvas.NRGBAAt(320, 10), "top band is padding")
	assert.Equal(t, padColor, canvas.NRGBAAt(320, 630), "bottom band is padding")
	assert.Equal(t, uint8(255), canvas.NRGBAAt(320, 320).R, "center holds the image")
}

func TestLetterbox_TallImagePadsHorizontally(t *testing.T) {
	src := solid(100, 400, color.NRGBA{G: 255, A: 255})
	canvas, g := letterbox(src, 320, 320)

	assert.InDelta(t, 0.8, g.scale, 1e-6)
	assert.Equal(t, float32(120), g.padX)
	assert.Equal(t, float32(0), g.padY)
	assert.Equal(t, padColor, canvas.NRGBAAt(5, 160))
	assert.Equal(t, uint8(255), canvas.NRGBAAt(160, 160).G)
}

func TestLetterbox_TinyImageStillFills(t *testing.T) {
	src := solid(1, 1, color.NRGBA{B: 255, A: 255})
	canvas, g := letterbox(src, 64, 64)
	assert.Equal(t, image.Rect(0, 0, 64, 64), canvas.Bounds())
	assert.InDelta(t, 64, g.scale, 1e-6)
}

func TestFillInput_PlanarRGB(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 51, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 102, B: 255, A: 255})

	dst := make([]float32, 6)
	fillInput(dst, img)

	want := []float32{1, 0, 0, 0.4, 0.2, 1}
	for i := range want {
		assert.InDelta(t, want[i], dst[i], 1e-6, "index %d", i)
	}
}

func TestGeometry_ToSourceUndoesLetterbox(t *testing.T) {
	g := geometry{scale: 0.5, padX: 0, padY: 160, srcW: 1280, srcH: 640}
	box := g.toSource(320, 320, 100, 100)
	assert.InDeltaSlice(t, []float32{540, 220, 740, 420}, box[:], 1e-4)
}

func TestGeometry_ToSourceClamps(t *testing.T) {
	g := geometry{scale: 1, srcW: 100, srcH: 50}
	box := g.toSource(95, 5, 30, 30)
	assert.Equal(t, [4]float32{80, 0, 100, 20}, box)
	assert.LessOrEqual(t, box[0], box[2])
	assert.LessOrEqual(t, box[1], box[3])
}
