package blocks

// Logger is the structured logging interface the runtimes write to. It is
// intentionally small and dependency-free — the default implementation,
// wired up by NewApp when no Logger is supplied via WithLogger, comes from
// internal/blogglog and is backed by github.com/joeycumines/logiface. Users
// who already run zerolog, logrus, or slog can satisfy this interface with
// a handful of lines rather than taking on a second logging stack.
type Logger interface {
	// Debug logs fine-grained detail. The runtimes in this package emit no
	// Debug lines.
	Debug(msg string, fields map[string]any)
	// Info logs lifecycle milestones (run started, shutdown complete).
	Info(msg string, fields map[string]any)
	// Warn logs non-fatal graph construction findings (unconsumed output
	// types, processors with no producer or no consumer).
	Warn(msg string, fields map[string]any)
	// Error logs a fatal SourceError, ProcessorError, or PoolError
	// immediately before the runtime stops.
	Error(msg string, fields map[string]any)
}

// NoopLogger discards everything. Passing it (or nil) to WithLogger keeps
// NewApp from installing blogglog's logiface-backed default, which is
// useful in tests that want silence.
type NoopLogger struct{}

func (NoopLogger) Debug(string, map[string]any) {}
func (NoopLogger) Info(string, map[string]any)  {}
func (NoopLogger) Warn(string, map[string]any)  {}
func (NoopLogger) Error(string, map[string]any) {}
