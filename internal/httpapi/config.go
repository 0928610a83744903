package httpapi

// defaultMaxBodyBytes bounds an /analyze upload when nothing is configured.
const defaultMaxBodyBytes int64 = 32 << 20

// maxBodyBytes controls the maximum allowed request body size for uploads.
var maxBodyBytes = defaultMaxBodyBytes

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
		return
	}
	maxBodyBytes = n
}

// analyzeTimeout controls the maximum duration an /analyze request may run before timing out.
// Zero means no additional timeout beyond server/connection timeouts.
var analyzeTimeout = int64(0) // seconds

// SetAnalyzeTimeoutSeconds sets the analyze timeout in seconds (0 disables).
func SetAnalyzeTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	analyzeTimeout = sec
}

// Landing page and static assets.
var (
	viewPath  = "app/view/index.html"
	staticDir = "app/static"
)

// SetAssets configures the landing page file and the static directory.
// Empty values keep the current setting.
func SetAssets(view, static string) {
	if view != "" {
		viewPath = view
	}
	if static != "" {
		staticDir = static
	}
}

// CORS configuration. The browser client may be served from another origin,
// so CORS is on by default: any origin, X-Requested-With and Content-Type.
var (
	corsEnabled        = true
	corsAllowedOrigins = []string{"*"}
	corsAllowedMethods = []string{"GET", "POST", "OPTIONS"}
	corsAllowedHeaders = []string{"X-Requested-With", "Content-Type"}
)

// SetCORSOptions configures CORS behavior for the HTTP server. Empty slices
// keep the current values.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	if len(origins) > 0 {
		corsAllowedOrigins = append([]string(nil), origins...)
	}
	if len(methods) > 0 {
		corsAllowedMethods = append([]string(nil), methods...)
	}
	if len(headers) > 0 {
		corsAllowedHeaders = append([]string(nil), headers...)
	}
}
