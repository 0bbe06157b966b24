package server

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/xilidan/transcriber/pkg/logger"
)

// frontend serves the bundled single-page client from dir.
type frontend struct {
	dir string
}

func (f frontend) register(r chi.Router) {
	r.Get("/", f.file("index.html", "text/html; charset=utf-8"))
	r.Get("/style.css", f.file("style.css", "text/css; charset=utf-8"))
	r.Get("/app.js", f.file("app.js", "application/javascript"))
	r.Get("/favicon.ico", f.favicon)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(f.dir))))
}

func (f frontend) file(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(f.dir, name)
		if _, err := os.Stat(path); err != nil {
			logger.FromContext(r.Context()).Error("frontend file not found",
				slog.String("path", path))
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", contentType)
		http.ServeFile(w, r, path)
	}
}

func (f frontend) favicon(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(f.dir, "favicon.ico")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "image/x-icon")
	http.ServeFile(w, r, path)
}
