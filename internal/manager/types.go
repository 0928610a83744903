package manager

import (
	"context"
	"image"

	"classifyd/pkg/types"
)

// State represents the lifecycle state of the manager.
type State string

const (
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateDraining State = "draining"
)

// Classifier is a loaded, inference-ready model. Implementations must be
// safe for concurrent Predict calls.
type Classifier interface {
	// Predict returns the top label for img together with the class index
	// and the probability vector.
	Predict(ctx context.Context, img image.Image) (types.Prediction, error)
	// Labels returns the ordered label set; index i names output i.
	Labels() []string
	// Info describes the loaded artifact.
	Info() types.ModelInfo
	// Close releases runtime resources.
	Close() error
}

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State State
	Model *types.ModelInfo
	Err   string
}
