// pkg/host/host.go

// Package host consumes bridge results on behalf of an HTTP embedding.
// It builds the handler environment from a request, runs the app
// through the response-capture bridge, and writes the unified result.
package host

import (
	"net/http"
	"strconv"
	"strings"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-bridge/pkg/bridge"
	"github.com/joeydtaylor/steeze-bridge/pkg/environ"
	"go.uber.org/zap"
)

// Body is the handler body representation the host consumes: ordered
// byte chunks, flattened on write.
type Body = [][]byte

// App is a two-phase application as the host runs it.
type App = bridge.Handler[Body]

// Handler serves one App through the response-capture bridge.
type Handler struct {
	inv bridge.Invoker[Body]
	app App
	cfg Config
	log *zap.Logger
}

func NewHandler(inv bridge.Invoker[Body], app App, cfg Config, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{inv: inv, app: app, cfg: cfg, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	env, err := environ.FromRequest(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.inv.Invoke(h.app, env)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	hdr := w.Header()
	hasType := false
	for _, hd := range res.Headers {
		if strings.EqualFold(hd.Name, "Content-Type") {
			hasType = true
		}
		hdr.Add(hd.Name, hd.Value)
	}
	if !hasType {
		hdr.Set("Content-Type", h.cfg.DefaultContentType)
	}

	w.WriteHeader(StatusCode(res.Status))
	for _, chunk := range res.Body {
		if _, err := w.Write(chunk); err != nil {
			h.log.Warn("response write failed", zap.Error(err))
			return
		}
	}
}

// fail maps protocol violations and handler failures onto the
// configured 500-class response. The invocation is never retried.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("invocation failed",
		zap.String("requestId", chimd.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err),
	)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(h.cfg.ErrorBody))
}

// StatusCode extracts the numeric code from a status line like
// "200 OK". Malformed lines fall back to 200, as do codes outside
// 100-999, which WriteHeader rejects.
func StatusCode(status string) int {
	first, _, _ := strings.Cut(status, " ")
	code, err := strconv.Atoi(first)
	if err != nil || code < 100 || code > 999 {
		return http.StatusOK
	}
	return code
}
