package rest

import (
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// NewStaticHandler serves embedded static files with cache headers and content types.
func NewStaticHandler(fsys fs.FS) http.Handler {
	fsHandler := http.FileServer(http.FS(fsys))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ext := strings.ToLower(filepath.Ext(r.URL.Path))

		switch ext {
		case ".css", ".svg", ".png":
			w.Header().Set("Cache-Control", "public, max-age=604800")
		default:
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}

		if c := mime.TypeByExtension(ext); c != "" {
			w.Header().Set("Content-Type", c)
		}

		fsHandler.ServeHTTP(w, r)
	})
}
