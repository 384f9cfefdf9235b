// pkg/metrics/metrics.go
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/joeydtaylor/steeze-bridge/pkg/bridge"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var (
	invokeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_invoke_duration_seconds",
			Help:    "handler invocation time.",
			Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 5, 30},
		},
	)

	totalInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_invocations_total", Help: "invocations by outcome"},
		[]string{"outcome"},
	)
)

// Collect wraps next and records outcome and latency for every
// invocation. The decorated Invoker behaves identically to next.
func Collect[B any](next bridge.Invoker[B]) bridge.Invoker[B] {
	return collector[B]{next: next}
}

type collector[B any] struct {
	next bridge.Invoker[B]
}

func (c collector[B]) Invoke(handler bridge.Handler[B], env bridge.Env) (bridge.Result[B], error) {
	start := time.Now()
	res, err := c.next.Invoke(handler, env)

	invokeDuration.Observe(time.Since(start).Seconds())
	totalInvocations.WithLabelValues(outcome(err)).Inc()
	return res, err
}

func outcome(err error) string {
	var pv *bridge.ProtocolError
	var he *bridge.HandlerError
	switch {
	case err == nil:
		return "completed"
	case errors.As(err, &pv):
		return "protocol_violation"
	case errors.As(err, &he):
		return "handler_error"
	default:
		return "error"
	}
}

func NewPromHttpHandler() http.Handler { return promhttp.Handler() }

func init() {
	prometheus.MustRegister(
		invokeDuration,
		totalInvocations,
	)
}

var Module = fx.Options(
	fx.Provide(fx.Annotate(NewPromHttpHandler, fx.ResultTags(`name:"metrics"`))),
)
