package telemetry

import "go.uber.org/zap"

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps a zap.Logger as a Logger.
func NewZapLogger(z *zap.Logger) Logger {
	return &zapLogger{s: z.Sugar()}
}

// NewProductionLogger builds a zap production logger wrapped as a Logger.
// On construction failure it falls back to zap.NewNop so callers never
// need to handle a logging-subsystem error.
func NewProductionLogger() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return NewZapLogger(z)
}

func (l *zapLogger) Debugw(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l *zapLogger) Infow(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l *zapLogger) Warnw(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
func (l *zapLogger) Errorw(msg string, kv ...any) { l.s.Errorw(msg, kv...) }

func (l *zapLogger) With(kv ...any) Logger {
	return &zapLogger{s: l.s.With(kv...)}
}
