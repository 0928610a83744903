package manager

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"classifyd/pkg/types"
)

// fakeClassifier labels an image by the red channel of its top-left pixel:
// red >= 128 is labels[1], otherwise labels[0].
type fakeClassifier struct {
	labels  []string
	path    string
	err     error
	empty   bool
	hold    chan struct{}
	calls   atomic.Int32
	closed  atomic.Bool
	closeMu sync.Mutex
}

func newFake(t *testing.T) *fakeClassifier {
	t.Helper()
	p := filepath.Join(t.TempDir(), "export.onnx")
	if err := os.WriteFile(p, []byte("weights"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return &fakeClassifier{labels: []string{"Tetris", "Minecraft"}, path: p}
}

func (f *fakeClassifier) Predict(ctx context.Context, img image.Image) (types.Prediction, error) {
	f.calls.Add(1)
	if f.hold != nil {
		select {
		case <-f.hold:
		case <-ctx.Done():
			return types.Prediction{}, ctx.Err()
		}
	}
	if f.err != nil {
		return types.Prediction{}, f.err
	}
	if f.empty {
		return types.Prediction{}, nil
	}
	b := img.Bounds()
	r, _, _, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	i := 0
	if r>>8 >= 128 {
		i = 1
	}
	return types.Prediction{Label: f.labels[i], Index: i, Confidence: 0.9}, nil
}

func (f *fakeClassifier) Labels() []string { return f.labels }

func (f *fakeClassifier) Info() types.ModelInfo {
	return types.ModelInfo{Path: f.path, Bytes: 7, Backend: "fake", Accelerator: "cpu", Labels: len(f.labels), ImageSize: 224}
}

func (f *fakeClassifier) Close() error {
	f.closeMu.Lock()
	defer f.closeMu.Unlock()
	if f.closed.Load() {
		return errors.New("already closed")
	}
	f.closed.Store(true)
	return nil
}

// pngBytes encodes a w x h image filled with c.
func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// pngHeaderOnly returns a well-formed PNG prefix whose IHDR declares a
// w x h 16-bit RGBA image, followed by a tiny IDAT that holds no real pixels.
func pngHeaderOnly(w, h uint32) []byte {
	chunk := func(buf *bytes.Buffer, typ string, data []byte) {
		_ = binary.Write(buf, binary.BigEndian, uint32(len(data)))
		crc := crc32.NewIEEE()
		buf.WriteString(typ)
		crc.Write([]byte(typ))
		buf.Write(data)
		crc.Write(data)
		_ = binary.Write(buf, binary.BigEndian, crc.Sum32())
	}
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 16 // bit depth
	ihdr[9] = 6  // RGBA
	chunk(&buf, "IHDR", ihdr)
	chunk(&buf, "IDAT", []byte{0x78, 0x9c, 0x03, 0x00, 0x00})
	chunk(&buf, "IEND", nil)
	return buf.Bytes()
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
