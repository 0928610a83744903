package types

// AnalyzeResponse is returned by POST /analyze.
type AnalyzeResponse struct {
	// Top predicted label.
	// example: minecraft
	Result string `json:"result" example:"minecraft"`
}

// LabelsResponse wraps the label set returned by GET /labels.
type LabelsResponse struct {
	// Ordered labels; the index matches the model output.
	Labels []string `json:"labels"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid input: file field is required
	Error string `json:"error" example:"invalid input: file field is required"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall manager state (loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Loaded model, absent until startup completes.
	Model *ModelInfo `json:"model,omitempty"`
	// Number of predictions currently running.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum concurrent predictions.
	// example: 1
	MaxInflight int `json:"max_inflight" example:"1"`
	// Requests waiting for an inference slot.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Maximum waiting requests before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Successful analyses since start.
	// example: 120
	AnalysesTotal uint64 `json:"analyses_total" example:"120"`
	// Analyses rejected because the upload was not a decodable image.
	// example: 3
	InvalidTotal uint64 `json:"invalid_total" example:"3"`
	// Analyses rejected by admission control.
	// example: 0
	RejectedTotal uint64 `json:"rejected_total" example:"0"`
	// Analyses that failed inside the classifier.
	// example: 0
	FailuresTotal uint64 `json:"failures_total" example:"0"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
