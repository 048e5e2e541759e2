package e2e

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"detectd/internal/detector"
	"detectd/internal/httpapi"
	"detectd/internal/manager"
)

// spotModel reports the bounding box of bright red pixels as class 0 and a
// fixed low-confidence box covering the left half as class 1.
type spotModel struct{}

func (spotModel) Detect(_ context.Context, img image.Image) ([]detector.Result, error) {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, _, _ := img.At(x, y).RGBA()
			if r>>8 > 200 && g>>8 < 60 {
				minX, minY = min(minX, x), min(minY, y)
				maxX, maxY = max(maxX, x), max(maxY, y)
			}
		}
	}
	res := detector.Result{Width: b.Dx(), Height: b.Dy()}
	res.Boxes = append(res.Boxes, detector.Box{
		ClassID:    1,
		Confidence: 0.3,
		XYXY:       [4]float32{0, 0, float32(b.Dx()) / 2, float32(b.Dy())},
	})
	if maxX >= minX {
		res.Boxes = append(res.Boxes, detector.Box{
			ClassID:    0,
			Confidence: 0.87,
			XYXY:       [4]float32{float32(minX - b.Min.X), float32(minY - b.Min.Y), float32(maxX - b.Min.X + 1), float32(maxY - b.Min.Y + 1)},
		})
	}
	return []detector.Result{res}, nil
}

func (spotModel) Labels() []string { return []string{"spot", "background"} }

func (spotModel) Info() detector.Info {
	return detector.Info{Path: "spot.onnx", Device: detector.DeviceCPU, InputWidth: 640, InputHeight: 640, Classes: 2, PoolSize: 1}
}

func (spotModel) Close() error { return nil }

func newServer(t *testing.T, cfg manager.ManagerConfig) *httptest.Server {
	t.Helper()
	cfg.Logger = zerolog.Nop()
	httpapi.SetLogger(zerolog.Nop())
	mgr := manager.NewWithConfig(cfg)
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv
}

// sceneImage draws a red square at (x, y) with side s on a gray canvas.
func sceneImage(w, h, x, y, s int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			c := color.NRGBA{R: 90, G: 90, B: 90, A: 255}
			if px >= x && px < x+s && py >= y && py < y+s {
				c = color.NRGBA{R: 250, G: 10, B: 10, A: 255}
			}
			img.SetNRGBA(px, py, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func encodeJPEG(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func inferBody(t *testing.T, image string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]string{"image": image})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// emptyModel never detects anything.
type emptyModel struct{ spotModel }

func (emptyModel) Detect(_ context.Context, img image.Image) ([]detector.Result, error) {
	b := img.Bounds()
	return []detector.Result{{Width: b.Dx(), Height: b.Dy()}}, nil
}
