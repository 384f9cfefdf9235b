// pkg/bridge/bridge.go

// Package bridge unifies the two-phase response convention into a
// single synchronous Result. Status and headers arrive through a
// starter callback; the body is the handler's return value.
package bridge

import (
	"fmt"

	"go.uber.org/zap"
)

// Env is the environment mapping handed to a handler. The bridge treats
// it as opaque and passes it through unmodified.
type Env map[string]any

// Header is one name/value pair. Header order is significant: the
// bridge preserves the list exactly as the handler declared it, with no
// dedup and no case normalization.
type Header struct {
	Name  string
	Value string
}

// Starter is the capability a handler uses to declare its status line
// and header list, separate from the body it returns.
//
// Start must be called exactly once per invocation, before the handler
// returns. A second call fails with ErrStartedTwice and marks the
// invocation violated whether or not the handler inspects that error.
type Starter interface {
	Start(status string, headers []Header) error
}

// Handler is a request-handling callable following the two-phase
// response convention. B is the body type; the bridge never looks
// inside it.
type Handler[B any] func(env Env, start Starter) (B, error)

// Result combines the starter-declared status line and headers with the
// handler's returned body.
type Result[B any] struct {
	Status  string
	Headers []Header
	Body    B
}

// Invoker is the invocation surface of a Bridge. Decorators (e.g.
// metrics.Collect) wrap one Invoker in another.
type Invoker[B any] interface {
	Invoke(handler Handler[B], env Env) (Result[B], error)
}

// Bridge runs handlers and captures their two-phase response. It holds
// no per-invocation state: the capture cell lives on Invoke's stack, so
// a single Bridge is safe for sequential, reentrant, and concurrent use
// without additional locking.
type Bridge[B any] struct {
	log *zap.Logger
}

// Option configures a Bridge.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger sets the logger used for panic and violation warnings.
// The default is a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// New returns a Bridge for handlers returning bodies of type B.
func New[B any](opts ...Option) *Bridge[B] {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Bridge[B]{log: o.log}
}

// capture is the per-invocation cell the starter writes into. Invoke
// allocates one per call; it never outlives that call. Status and
// headers are only ever set together.
type capture struct {
	started      bool
	startedTwice bool
	status       string
	headers      []Header
}

// starter binds the Starter capability to one capture cell.
type starter struct {
	c *capture
}

func (s starter) Start(status string, headers []Header) error {
	if s.c.started {
		s.c.startedTwice = true
		return ErrStartedTwice
	}
	s.c.started = true
	s.c.status = status
	s.c.headers = headers
	return nil
}

// Invoke calls handler with env and a fresh starter, then assembles the
// captured status/headers and the returned body into one Result.
//
// Protocol violations (starter never called, or called more than once)
// take precedence over a handler failure; the handler's own error, if
// any, is attached to the violation as its cause and stays reachable
// through errors.Is/As. A handler failure after a valid single start is
// returned as a *HandlerError. No partial Result escapes a failed
// invocation.
func (b *Bridge[B]) Invoke(handler Handler[B], env Env) (Result[B], error) {
	c := &capture{}
	body, err := b.run(handler, env, c)

	switch {
	case c.startedTwice:
		return Result[B]{}, &ProtocolError{Reason: ErrStartedTwice, cause: err}
	case !c.started:
		return Result[B]{}, &ProtocolError{Reason: ErrNotStarted, cause: err}
	case err != nil:
		return Result[B]{}, &HandlerError{cause: err}
	}

	return Result[B]{Status: c.status, Headers: c.headers, Body: body}, nil
}

// run isolates the handler call so a panic cannot take down the host.
func (b *Bridge[B]) run(handler Handler[B], env Env, c *capture) (body B, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn("handler panicked. This is a bug in the handler.",
				zap.Any("panic", r))
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(env, starter{c: c})
}
