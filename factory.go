package rengine

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/rengine/rengine/internal/agenda"
	"github.com/rengine/rengine/internal/compiler"
	"github.com/rengine/rengine/internal/domain"
	"github.com/rengine/rengine/internal/expression"
	fileconfig "github.com/rengine/rengine/internal/infrastructure/config"
	"github.com/rengine/rengine/internal/infrastructure/monitoring"
	"github.com/rengine/rengine/internal/network"
	"github.com/rengine/rengine/internal/propagation"
	"github.com/rengine/rengine/internal/registry"
	"github.com/rengine/rengine/internal/store"
	"github.com/rengine/rengine/internal/tms"
	"github.com/rengine/rengine/internal/utils"
	"github.com/rengine/rengine/pkg/ruledef"
)

// Engine is the rule engine facade: working memory, the discrimination
// network, the conflict-resolution agenda and the logical dependency
// tracker, wired together behind the public API in rengine.go.
type Engine struct {
	config EngineConfig

	store     *store.FactStore
	net       *network.Network
	prop      *propagation.Engine
	agenda    *agenda.Agenda
	tracker   *tms.Tracker
	eval      *expression.Evaluator
	functions *registry.Registry
	observers *monitoring.ObserverManager

	rules     map[string]domain.Rule
	terminals map[string][]*network.TerminalNode

	trace  *monitoring.ExecutionTrace
	logger zerolog.Logger
}

// NewEngine builds an Engine from config, registering the observers config
// asks for. Callers that want a custom observer (a different zerolog
// writer, an OpenTelemetry tracer) should call AddObserver after
// construction rather than reach into the config struct for it.
func NewEngine(config EngineConfig) *Engine {
	factStore := store.NewFactStore()
	observers := monitoring.NewObserverManager()

	e := &Engine{
		config:    config,
		store:     factStore,
		agenda:    agenda.New(),
		tracker:   tms.New(),
		eval:      expression.NewEvaluator(),
		functions: registry.New(),
		observers: observers,
		rules:     make(map[string]domain.Rule),
		terminals: make(map[string][]*network.TerminalNode),
	}
	e.net = network.NewNetwork(e.resolve)
	e.prop = propagation.New(factStore, e.net)

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if config.DebugMode {
		level = zerolog.DebugLevel
	}
	e.logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("component", "rengine").Logger()
	if config.EnableStructuredLogging {
		observers.AddObserver(monitoring.NewStructuredLogger(e.logger))
	}
	if config.EnableTracing {
		e.trace = monitoring.NewExecutionTrace(config.TraceBufferCap)
		observers.AddObserver(e.trace.AsObserver())
	}

	return e
}

func (e *Engine) resolve(h domain.Handle) (*domain.Fact, bool) { return e.store.Get(h) }

// NewEngineFromConfigFile builds an Engine from a TOML file at path (§4's
// ambient configuration layer). MaxCycles, TraceBufferCap and LogLevel fall
// back to DefaultEngineConfig when the file leaves them zero or empty; every
// other field takes the file's value as is, so an absent boolean key is
// false even where the default is true.
func NewEngineFromConfigFile(path string) (*Engine, error) {
	fc, err := fileconfig.Load(path)
	if err != nil {
		return nil, err
	}
	defaults := DefaultEngineConfig()
	config := EngineConfig{
		MaxCycles:               utils.DefaultValue(fc.MaxCycles, defaults.MaxCycles),
		Timeout:                 time.Duration(fc.TimeoutSeconds) * time.Second,
		DebugMode:               fc.DebugMode,
		EnableStats:             fc.EnableStats,
		EnableTracing:           fc.EnableTracing,
		TraceBufferCap:          utils.DefaultValue(fc.TraceBufferCap, defaults.TraceBufferCap),
		EnableStructuredLogging: fc.EnableMetrics,
		LogLevel:                utils.DefaultValue(fc.LogLevel, defaults.LogLevel),
	}
	return NewEngine(config), nil
}

// Trace returns the engine's in-memory execution trace, or nil if
// EnableTracing was off.
func (e *Engine) Trace() *monitoring.ExecutionTrace { return e.trace }

// AddObserver registers an additional EngineObserver, e.g. a
// TracingObserver wired to the host's own OpenTelemetry tracer.
func (e *Engine) AddObserver(o monitoring.EngineObserver) { e.observers.AddObserver(o) }

// RemoveObserver unregisters a previously added observer.
func (e *Engine) RemoveObserver(o monitoring.EngineObserver) { e.observers.RemoveObserver(o) }

// RegisterFunction registers a host-supplied function callable from
// ActionCallFunction. The function receives a FactView so it can read
// working memory (§6) but not mutate it.
func (e *Engine) RegisterFunction(name string, fn func(args []Value, facts *FactView) (Value, error)) {
	e.functions.RegisterFunction(name, registry.Function(fn))
}

// RegisterMethod registers a host-supplied method handler callable from
// ActionMethodCall.
func (e *Engine) RegisterMethod(name string, fn func(receiver Value, args []Value, facts *FactView) (Value, error)) {
	e.functions.RegisterMethod(name, registry.MethodHandler(fn))
}

// LoadRuleDef converts and loads a rule expressed in the public ruledef
// wire format, the form a host typically reads from JSON/YAML/the fluent
// builder.
func (e *Engine) LoadRuleDef(def ruledef.RuleDef) error {
	rule, err := ruledef.ToRule(def)
	if err != nil {
		return err
	}
	return e.LoadRule(rule)
}
