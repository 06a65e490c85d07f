package coordinator

import "errors"

// ErrClosed reports an operation against a coordinator that has been torn
// down. Results of work still in flight when Close was called are dropped
// silently instead.
var ErrClosed = errors.New("coordinator: closed")

// ErrUnsupportedBatchKind reports a batch operation kind the coordinator has
// no mutation mapping for.
var ErrUnsupportedBatchKind = errors.New("coordinator: unsupported batch operation kind")

// Logger receives diagnostics about absorbed failures: collaborator outages
// and per-item batch errors never propagate as errors, so this is the only
// place they become visible to operators. The default logger discards
// everything; consumers inject their own.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}
