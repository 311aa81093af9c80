package telemetry

// noopLogger discards everything; useful in tests.
type noopLogger struct{}

// NewNoopLogger returns a Logger that discards all output.
func NewNoopLogger() Logger { return noopLogger{} }

func (noopLogger) Debugw(msg string, kv ...any) {}
func (noopLogger) Infow(msg string, kv ...any)  {}
func (noopLogger) Warnw(msg string, kv ...any)  {}
func (noopLogger) Errorw(msg string, kv ...any) {}
func (noopLogger) With(kv ...any) Logger        { return noopLogger{} }
