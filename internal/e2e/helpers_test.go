package e2e

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"classifyd/internal/httpapi"
	"classifyd/internal/labels"
	"classifyd/internal/manager"
	"classifyd/pkg/types"
)

// brightnessClassifier picks a label from the mean brightness of the image,
// so identical inputs always map to the same label.
type brightnessClassifier struct {
	labels []string
	path   string
	hold   chan struct{}
}

func (c *brightnessClassifier) Predict(ctx context.Context, img image.Image) (types.Prediction, error) {
	if c.hold != nil {
		select {
		case <-c.hold:
		case <-ctx.Done():
			return types.Prediction{}, ctx.Err()
		}
	}
	b := img.Bounds()
	var sum uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			sum += uint64(r>>8+g>>8+bl>>8) / 3
		}
	}
	mean := sum / uint64(b.Dx()*b.Dy())
	i := int(mean) * len(c.labels) / 256
	return types.Prediction{Label: c.labels[i], Index: i, Confidence: 1}, nil
}

func (c *brightnessClassifier) Labels() []string { return c.labels }

func (c *brightnessClassifier) Info() types.ModelInfo {
	return types.ModelInfo{Path: c.path, Bytes: 1, Backend: "test", Accelerator: "cpu", Labels: len(c.labels), ImageSize: 224}
}

func (c *brightnessClassifier) Close() error { return nil }

// newServer starts the real router over a manager holding c.
func newServer(t *testing.T, cfg manager.ManagerConfig) (*httptest.Server, *manager.Manager, *brightnessClassifier) {
	t.Helper()
	dir := t.TempDir()
	art := filepath.Join(dir, "export.onnx")
	if err := os.WriteFile(art, []byte("weights"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	view := filepath.Join(dir, "index.html")
	if err := os.WriteFile(view, []byte("<!DOCTYPE html><title>classify</title>\n"), 0o644); err != nil {
		t.Fatalf("write view: %v", err)
	}
	static := filepath.Join(dir, "static")
	if err := os.MkdirAll(static, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(static, "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	httpapi.SetAssets(view, static)

	c := &brightnessClassifier{labels: labels.Default(), path: art}
	cfg.Classifier = c
	mgr := manager.NewWithConfig(cfg)
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr, c
}

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

// postFile uploads data as the "file" field and returns status and body.
func postFile(t *testing.T, url string, data []byte) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "shot.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()
	resp, err := http.Post(url+"/analyze", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func get(t *testing.T, url string) (int, []byte, http.Header) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body, resp.Header
}

// oversizedPNG is a tiny, well-formed PNG whose header declares w x h
// 16-bit RGBA pixels.
func oversizedPNG(w, h uint32) []byte {
	var buf bytes.Buffer
	writeChunk := func(typ string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		buf.WriteString(typ)
		buf.Write(data)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(append([]byte(typ), data...)))
	}
	buf.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8], ihdr[9] = 16, 6
	writeChunk("IHDR", ihdr)
	writeChunk("IDAT", []byte{0x78, 0x9c, 0x03, 0x00, 0x00})
	writeChunk("IEND", nil)
	return buf.Bytes()
}
