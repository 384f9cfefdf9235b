// pkg/host/module.go
package host

import (
	"errors"
	"net/http"
	"os"

	"github.com/joeydtaylor/steeze-bridge/pkg/bridge"
	"github.com/joeydtaylor/steeze-bridge/pkg/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Options allow per-embedding env keys/defaults without code duplication.
type Options struct {
	ConfigEnv     string // e.g. "BRIDGE_CONFIG"
	DefaultConfig string // e.g. "bridge.toml"
}

func envOr(key, def string) string {
	if key == "" {
		return def
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ProvideConfig loads the host config from the path selected by
// Options. A missing file falls back to defaults; a broken one is an
// error.
func ProvideConfig(opts Options) (Config, error) {
	path := envOr(opts.ConfigEnv, opts.DefaultConfig)
	if path == "" {
		return DefaultConfig(), nil
	}
	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// ProvideInvoker wires the metrics collector around a fresh bridge.
func ProvideInvoker(log *zap.Logger) bridge.Invoker[Body] {
	return metrics.Collect[Body](bridge.New[Body](bridge.WithLogger(log)))
}

type routerDeps struct {
	fx.In

	Cfg     Config
	App     App
	Inv     bridge.Invoker[Body]
	Log     *zap.Logger
	Metrics http.Handler `name:"metrics"`
}

func provideRouter(d routerDeps) http.Handler {
	h := NewHandler(d.Inv, d.App, d.Cfg, d.Log)
	return NewRouter(d.Cfg, h, d.Metrics)
}

// Module provides the configured router. The embedding must provide
// Options and the App.
var Module = fx.Options(
	fx.Provide(ProvideConfig),
	fx.Provide(ProvideInvoker),
	fx.Provide(fx.Annotate(provideRouter, fx.ResultTags(`name:"app"`))),
)
