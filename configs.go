package rengine

import "time"

// EngineConfig holds configuration for the rule engine (§6's enumerated
// Configuration surface).
type EngineConfig struct {
	// MaxCycles bounds how many activations a single FireAll call may fire
	// before it gives up and reports CycleLimitReached, guarding against a
	// rule set whose actions keep re-deriving facts that re-trigger it
	// (§4.5, §7).
	MaxCycles int

	// Timeout, when non-zero, bounds FireAll's wall-clock running time: it
	// is checked between cycles (never mid-action) and, once exceeded,
	// FireAll stops and reports a warning the same way MaxCycles does (§6).
	Timeout time.Duration

	// DebugMode raises the structured logger to debug level, which is what
	// makes StructuredLogger's per-activation events (fact inserted/
	// retracted, activation created/withdrawn) actually emit (§6
	// "debug_mode ... controls emission of per-activation trace events").
	// At the default info level those calls still happen but zerolog drops
	// them before they reach the writer.
	DebugMode bool

	// EnableStats gates the metrics_display.go pretty-printer's network-shape
	// output (§6 "enable_stats"); Stats() itself is always computable, this
	// only controls whether DisplayStats renders it.
	EnableStats bool

	// EnableTracing registers an in-memory ExecutionTrace observer capturing
	// the last TraceBufferCap lifecycle events.
	EnableTracing  bool
	TraceBufferCap int

	// EnableStructuredLogging registers a zerolog-backed observer.
	EnableStructuredLogging bool
	LogLevel                string
}

// DefaultEngineConfig returns the engine's default configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxCycles:               1000,
		Timeout:                 0,
		DebugMode:               false,
		EnableStats:             true,
		EnableTracing:           false,
		TraceBufferCap:          256,
		EnableStructuredLogging: true,
		LogLevel:                "info",
	}
}
