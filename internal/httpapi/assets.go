package httpapi

import (
	"io/fs"
	"net/http"
	"os"
)

// handleIndex serves the landing page file verbatim.
//
// @Summary      Landing page
// @Tags         ui
// @Produce      html
// @Success      200  {string}  string  "HTML page"
// @Router       / [get]
func handleIndex(w http.ResponseWriter, r *http.Request) {
	b, err := os.ReadFile(viewPath)
	if err != nil {
		logger().Error().Err(err).Str("path", viewPath).Msg("read landing page")
		writeJSONError(w, http.StatusInternalServerError, "landing page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func staticHandler() http.Handler {
	return http.FileServer(noListingFS{http.Dir(staticDir)})
}

// noListingFS hides directories so the file server never renders listings;
// a directory path answers 404 like a missing file.
type noListingFS struct{ http.FileSystem }

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
