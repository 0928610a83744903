package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"classifyd/internal/manager"
	"classifyd/pkg/types"
)

// multipartMemory is the part of a multipart body kept in memory; larger
// uploads spill to temp files, still bounded by maxBodyBytes.
const multipartMemory = 8 << 20

// analyzeHandler classifies the image in the multipart field "file".
//
// @Summary      Classify an image
// @Description  Returns the predicted label for the uploaded image.
// @Tags         inference
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file  true  "Image (jpeg, png, gif, webp, bmp)"
// @Success      200  {object}  types.AnalyzeResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      413  {object}  types.ErrorResponse
// @Failure      429  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /analyze [post]
func analyzeHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Analysis-ID", id)
		lvl := requestLogLevel(r)

		data, status, err := readUpload(w, r)
		if err != nil {
			writeJSONError(w, status, err.Error())
			logAnalyzeEnd(r, lvl, id, status, start, err)
			return
		}
		observeUpload(len(data))
		if lvl >= LevelInfo {
			z := logger().Info().Str("path", r.URL.Path).Str("analysis_id", id).Int("bytes", len(data))
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("analyze start")
		}

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if analyzeTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(analyzeTimeout)*time.Second)
			defer tcancel()
		}

		pred, err := svc.Analyze(ctx, data)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusForError(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure(manager.TooBusyReason(err))
			}
			writeJSONError(w, status, err.Error())
			logAnalyzeEnd(r, lvl, id, status, start, err)
			return
		}
		writeJSON(w, types.AnalyzeResponse{Result: pred.Label})
		if lvl >= LevelInfo {
			z := logger().Info().Str("analysis_id", id).Int("status", http.StatusOK).
				Str("label", pred.Label).Float32("confidence", pred.Confidence).Dur("dur", time.Since(start))
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("analyze end")
		}
	}
}

// readUpload returns the bytes of the "file" form field. On failure it also
// returns the status to answer with.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, int, error) {
	// Limit body size (configurable, default 32MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if tooLarge(err) {
			return nil, http.StatusRequestEntityTooLarge, errors.New("upload exceeds size limit")
		}
		return nil, http.StatusBadRequest, manager.ErrInvalidInput("expected multipart/form-data with a file field")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, http.StatusBadRequest, manager.ErrInvalidInput("missing file field")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		if tooLarge(err) {
			return nil, http.StatusRequestEntityTooLarge, errors.New("upload exceeds size limit")
		}
		return nil, http.StatusBadRequest, manager.ErrInvalidInput("could not read upload")
	}
	return data, 0, nil
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	// multipart wraps some read errors without %w
	return strings.Contains(err.Error(), "request body too large")
}

func logAnalyzeEnd(r *http.Request, lvl LogLevel, id string, status int, start time.Time, err error) {
	if lvl < LevelError || (lvl < LevelInfo && status < 500) {
		return
	}
	l := logger()
	z := l.Info()
	if status >= 500 {
		z = l.Error()
	}
	z = z.Str("analysis_id", id).Int("status", status).Dur("dur", time.Since(start))
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Err(err).Msg("analyze end")
}
