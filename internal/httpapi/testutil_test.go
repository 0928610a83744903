package httpapi

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"classifyd/pkg/types"
)

type mockService struct {
	labels     []string
	status     types.StatusResponse
	ready      bool
	analyzeErr error
	label      string
	gotBytes   []byte
	analyzeFn  func(ctx context.Context) error
}

func (m *mockService) Labels() []string             { return append([]string(nil), m.labels...) }
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }
func (m *mockService) Analyze(ctx context.Context, data []byte) (types.Prediction, error) {
	m.gotBytes = data
	if m.analyzeFn != nil {
		if err := m.analyzeFn(ctx); err != nil {
			return types.Prediction{}, err
		}
	}
	if m.analyzeErr != nil {
		return types.Prediction{}, m.analyzeErr
	}
	return types.Prediction{Label: m.label, Confidence: 0.75}, nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

// multipartRequest builds a POST /analyze request with data under field.
func multipartRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "upload.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
