package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

func newTestFetcher(retries int) *Fetcher {
	return &Fetcher{
		Retries:    retries,
		Log:        zerolog.Nop(),
		newBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}
}

// countingServer serves body and counts requests.
func countingServer(t *testing.T, body []byte) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func listParts(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var parts []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".part") {
			parts = append(parts, e.Name())
		}
	}
	return parts
}

func TestEnsure_DownloadsWhenAbsent(t *testing.T) {
	body := []byte(strings.Repeat("onnx", 4096))
	srv, hits := countingServer(t, body)
	dest := filepath.Join(t.TempDir(), "nested", "export.onnx")

	res, err := newTestFetcher(0).Ensure(context.Background(), dest, srv.URL+"/export.onnx")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !res.Downloaded || res.Bytes != int64(len(body)) {
		t.Fatalf("unexpected result: %+v", res)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(body) {
		t.Fatalf("file length %d, want %d", len(got), len(body))
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Fatalf("hits=%d", n)
	}
	if parts := listParts(t, filepath.Dir(dest)); len(parts) != 0 {
		t.Fatalf("leftover temp files: %v", parts)
	}
}

func TestEnsure_IdempotentWhenPresent(t *testing.T) {
	srv, hits := countingServer(t, []byte("new content"))
	dest := filepath.Join(t.TempDir(), "export.onnx")
	if err := os.WriteFile(dest, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := newTestFetcher(0)
	for i := 0; i < 2; i++ {
		res, err := f.Ensure(context.Background(), dest, srv.URL)
		if err != nil {
			t.Fatalf("ensure %d: %v", i, err)
		}
		if res.Downloaded {
			t.Fatalf("ensure %d should not download", i)
		}
	}
	if n := atomic.LoadInt32(hits); n != 0 {
		t.Fatalf("expected no network calls, got %d", n)
	}
	got, _ := os.ReadFile(dest)
	if string(got) != "existing" {
		t.Fatalf("file changed: %q", got)
	}
}

func TestEnsure_NotFoundIsFatalAndLeavesNothing(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()
	dir := t.TempDir()
	dest := filepath.Join(dir, "export.onnx")

	_, err := newTestFetcher(3).Ensure(context.Background(), dest, srv.URL)
	if err == nil {
		t.Fatalf("expected error")
	}
	if code, ok := IsStatus(err); !ok || code != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("4xx must not be retried, hits=%d", n)
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dest should not exist: %v", err)
	}
}

func TestEnsure_RetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("weights"))
	}))
	defer srv.Close()
	dest := filepath.Join(t.TempDir(), "export.onnx")

	res, err := newTestFetcher(2).Ensure(context.Background(), dest, srv.URL)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if n := atomic.LoadInt32(&hits); !res.Downloaded || n != 3 {
		t.Fatalf("res=%+v hits=%d", res, n)
	}
}

func TestEnsure_NoRetryByDefault(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err := newTestFetcher(0).Ensure(context.Background(), filepath.Join(t.TempDir(), "m.onnx"), srv.URL)
	if n := atomic.LoadInt32(&hits); err == nil || n != 1 {
		t.Fatalf("err=%v hits=%d", err, n)
	}
}

func TestEnsure_ShortBodyLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte("only-a-few-bytes"))
	}))
	defer srv.Close()
	dir := t.TempDir()
	dest := filepath.Join(dir, "export.onnx")

	if _, err := newTestFetcher(0).Ensure(context.Background(), dest, srv.URL); err == nil {
		t.Fatalf("expected short body error")
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("partial file must not be committed: %v", err)
	}
	if parts := listParts(t, dir); len(parts) != 0 {
		t.Fatalf("leftover temp files: %v", parts)
	}
}

func TestEnsure_ChecksumMismatch(t *testing.T) {
	srv, _ := countingServer(t, []byte("weights"))
	dest := filepath.Join(t.TempDir(), "export.onnx")
	f := newTestFetcher(0)
	f.SHA256 = strings.Repeat("0", 64)
	if _, err := f.Ensure(context.Background(), dest, srv.URL); err == nil || !strings.Contains(err.Error(), "checksum") {
		t.Fatalf("expected checksum error, got %v", err)
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dest should not exist: %v", err)
	}

	sum := sha256.Sum256([]byte("weights"))
	f.SHA256 = hex.EncodeToString(sum[:])
	if _, err := f.Ensure(context.Background(), dest, srv.URL); err != nil {
		t.Fatalf("matching checksum: %v", err)
	}
}

func TestEnsure_MissingURL(t *testing.T) {
	_, err := newTestFetcher(0).Ensure(context.Background(), filepath.Join(t.TempDir(), "m.onnx"), "")
	if !errors.Is(err, ErrNoURL) {
		t.Fatalf("expected ErrNoURL, got %v", err)
	}
}

func TestEnsure_CanceledContext(t *testing.T) {
	srv, _ := countingServer(t, []byte("weights"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestFetcher(2).Ensure(ctx, filepath.Join(t.TempDir(), "m.onnx"), srv.URL); err == nil {
		t.Fatalf("expected error on canceled context")
	}
}
