package manager

import (
	"context"
	"time"

	"classifyd/pkg/types"
)

// Analyze decodes an uploaded image and returns the classifier's top
// prediction. Decoding happens before admission so bad uploads never hold
// an inference slot. Errors never change the shared classifier.
func (m *Manager) Analyze(ctx context.Context, data []byte) (types.Prediction, error) {
	c := m.current()
	if c == nil {
		return types.Prediction{}, ErrDependencyUnavailable("classifier not loaded")
	}
	img, format, err := decodeImage(data, m.maxImagePixels)
	if err != nil {
		m.invalidTotal.Add(1)
		analyzeFailures.WithLabelValues("invalid_input").Inc()
		return types.Prediction{}, err
	}

	release, err := m.beginAnalysis(ctx)
	if err != nil {
		if IsTooBusy(err) {
			m.rejectedTotal.Add(1)
			analyzeFailures.WithLabelValues(TooBusyReason(err)).Inc()
		}
		return types.Prediction{}, err
	}
	defer release()

	start := time.Now()
	pred, err := c.Predict(ctx, img)
	inferenceDuration.Observe(time.Since(start).Seconds())
	if err == nil && pred.Label == "" {
		err = errEmptyLabel
	}
	if err != nil {
		if ctx.Err() == nil {
			m.failuresTotal.Add(1)
			m.setLastError(err)
			analyzeFailures.WithLabelValues("inference").Inc()
		}
		return types.Prediction{}, err
	}
	m.analysesTotal.Add(1)
	predictionsTotal.WithLabelValues(pred.Label).Inc()
	m.log.Debug().
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Str("label", pred.Label).
		Float32("confidence", pred.Confidence).
		Dur("dur", time.Since(start)).
		Msg("analyze")
	return pred, nil
}
