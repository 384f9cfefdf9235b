// bundlefx/bundlefx.go
package bundlefx

import (
	"github.com/joeydtaylor/steeze-bridge/pkg/host"
	"github.com/joeydtaylor/steeze-bridge/pkg/logging"
	"github.com/joeydtaylor/steeze-bridge/pkg/metrics"
	"go.uber.org/fx"
)

// Module provided to fx. The embedding still provides host.Options and
// its App.
var Module = fx.Options(
	logging.Module,
	metrics.Module,
	host.Module,
)
