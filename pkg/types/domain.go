package types

// ModelInfo describes the classifier loaded at startup.
type ModelInfo struct {
	// Absolute path to the artifact on disk.
	// example: /srv/classifyd/export.onnx
	Path string `json:"path" example:"/srv/classifyd/export.onnx"`
	// Size of the artifact in bytes.
	// example: 94371840
	Bytes int64 `json:"bytes" example:"94371840"`
	// Inference backend that loaded the artifact.
	// example: onnxruntime
	Backend string `json:"backend" example:"onnxruntime"`
	// Execution provider requested for the session.
	// example: cpu
	Accelerator string `json:"accelerator,omitempty" example:"cpu"`
	// Number of labels the model predicts.
	// example: 35
	Labels int `json:"labels" example:"35"`
	// Square input edge length in pixels.
	// example: 224
	ImageSize int `json:"image_size,omitempty" example:"224"`
}

// Prediction is the full classifier output for one image. Only Label is
// exposed by POST /analyze.
type Prediction struct {
	Label         string    `json:"label"`
	Index         int       `json:"index"`
	Confidence    float32   `json:"confidence"`
	Probabilities []float32 `json:"probabilities,omitempty"`
}
