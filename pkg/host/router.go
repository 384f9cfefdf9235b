// pkg/host/router.go
package host

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimd "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the app handler and the metrics endpoint on a chi
// mux. It does not start a listener; the embedding owns the server.
func NewRouter(cfg Config, app http.Handler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimd.RequestID)
	r.Handle(cfg.MetricsPath, metrics)
	r.Mount(cfg.MountPath, app)
	return r
}
