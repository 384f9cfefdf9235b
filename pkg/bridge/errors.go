// pkg/bridge/errors.go
package bridge

import (
	"errors"
	"fmt"
)

// Violation reasons carried by ProtocolError.
var (
	ErrNotStarted   = errors.New("not started")
	ErrStartedTwice = errors.New("started twice")
)

// ProtocolError reports a starter call-count violation: the handler
// returned without ever calling the starter, or called it more than
// once. Violations are hard failures of the invocation; they are never
// retried and no Result is produced.
type ProtocolError struct {
	// Reason is ErrNotStarted or ErrStartedTwice.
	Reason error

	// cause is the handler's own failure when the invocation also
	// errored or panicked. The violation wins; the cause stays
	// reachable via Unwrap.
	cause error
}

func (e *ProtocolError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("protocol violation: %v (handler also failed: %v)", e.Reason, e.cause)
	}
	return fmt.Sprintf("protocol violation: %v", e.Reason)
}

func (e *ProtocolError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Reason, e.cause}
	}
	return []error{e.Reason}
}

// HandlerError wraps a failure raised by handler code after a valid
// single starter call. The original cause is preserved.
type HandlerError struct {
	cause error
}

func (e *HandlerError) Error() string { return "handler error: " + e.cause.Error() }

func (e *HandlerError) Unwrap() error { return e.cause }
