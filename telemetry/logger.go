// Package telemetry provides the engine's structured logging contract.
package telemetry

// Logger is the structured, leveled logger used throughout the engine.
// Arguments after msg are alternating key/value pairs, matching
// zap.SugaredLogger's *w methods.
type Logger interface {
	Debugw(msg string, kv ...any)
	Infow(msg string, kv ...any)
	Warnw(msg string, kv ...any)
	Errorw(msg string, kv ...any)

	// With returns a Logger that always includes the given key/value
	// pairs, e.g. a log id or shard index.
	With(kv ...any) Logger
}
