package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/xilidan/transcriber/pkg/logger"
)

func NewRouter(h *Handler, frontendDir string) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(h.log))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Get("/health", h.Health)
		apiRouter.Post("/upload", h.Upload)
		apiRouter.Post("/save", h.Save)
		apiRouter.Route("/export", func(exportRouter chi.Router) {
			exportRouter.Get("/txt/{file_id}", h.ExportText)
			exportRouter.Get("/docx/{file_id}", h.ExportDocx)
		})
		apiRouter.Route("/history", func(historyRouter chi.Router) {
			historyRouter.Post("/sync", h.SyncHistory)
			historyRouter.Get("/{file_id}", h.GetHistory)
		})
	})

	frontend{dir: frontendDir}.register(router)

	return router
}

// requestLogger puts a request-scoped logger into the context.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := log.With(
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), l)))
		})
	}
}
