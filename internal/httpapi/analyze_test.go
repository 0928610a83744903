package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classifyd/internal/manager"
	"classifyd/pkg/types"
)

func TestAnalyze_ReturnsResult(t *testing.T) {
	svc := &mockService{label: "Minecraft"}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", []byte("image-bytes")))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body) != 1 || body["result"] != "Minecraft" {
		t.Fatalf("body=%v", body)
	}
	if string(svc.gotBytes) != "image-bytes" {
		t.Fatalf("service got %q", svc.gotBytes)
	}
	if _, err := uuid.Parse(w.Header().Get("X-Analysis-ID")); err != nil {
		t.Fatalf("X-Analysis-ID: %v", err)
	}
}

func TestAnalyze_MissingFileField(t *testing.T) {
	svc := &mockService{label: "x"}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "image", []byte("data")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Code != http.StatusBadRequest || !strings.Contains(body.Error, "invalid input") {
		t.Fatalf("body=%+v", body)
	}
	if svc.gotBytes != nil {
		t.Fatalf("service must not be called")
	}
}

func TestAnalyze_NotMultipart(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestAnalyze_TooLarge(t *testing.T) {
	SetMaxBodyBytes(1024)
	defer SetMaxBodyBytes(0)
	r := NewMux(&mockService{label: "x"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", bytes.Repeat([]byte("a"), 64<<10)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", manager.ErrInvalidInput("not an image"), http.StatusBadRequest},
		{"dependency", manager.ErrDependencyUnavailable("onnxruntime missing"), http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"http error", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"generic", errors.New("session failed"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := NewMux(&mockService{analyzeErr: tc.err})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "file", []byte("x")))
		if w.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, w.Code)
		}
	}
}

func TestAnalyze_TooBusyCountsBackpressure(t *testing.T) {
	r := NewMux(&mockService{analyzeErr: manager.ErrTooBusy("queue_full")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", []byte("x")))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !bytes.Contains(mrr.Body.Bytes(), []byte(`classifyd_http_backpressure_total{reason="queue_full"}`)) {
		t.Fatalf("backpressure metric missing")
	}
}

func TestAnalyze_Timeout(t *testing.T) {
	SetAnalyzeTimeoutSeconds(1)
	defer SetAnalyzeTimeoutSeconds(0)
	svc := &mockService{label: "x", analyzeFn: func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline on context")
		}
		return nil
	}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", []byte("x")))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
