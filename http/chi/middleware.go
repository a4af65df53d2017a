// Package chi mounts the signing endpoints on a Chi router.
// It is a thin adapter: every request is served by the stdlib Handler so the
// Chi front end answers exactly like the plain one.
package chi

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	signhttp "github.com/hawala-wallet/signcore/http"
)

// Mount registers every route of h on r.
func Mount(r chi.Router, h *signhttp.Handler) {
	for _, rt := range h.Routes() {
		r.Method(rt.Method, rt.Path, rt.Handler)
	}
}

// NewRouter returns a Chi router serving h behind request IDs, panic
// recovery and structured request logging.
//
// Example usage:
//
//	h, _ := signhttp.NewHandler(signhttp.WithLogger(logger))
//	r := chi.NewRouter(h, logger)
//	http.ListenAndServe(":8080", r)
func NewRouter(h *signhttp.Handler, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(signhttp.Recover(logger))
	r.Use(signhttp.Logging(logger))
	Mount(r, h)
	return r
}
