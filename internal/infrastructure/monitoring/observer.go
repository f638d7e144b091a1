// Package monitoring provides the engine's observability surface: a
// fan-out observer manager, a zerolog-backed structured logger, an
// in-memory execution trace ring buffer and an OpenTelemetry tracing
// observer.
package monitoring

import (
	"sync"

	"github.com/rengine/rengine/internal/domain"
)

// EngineObserver receives every lifecycle event the engine can raise
// (§4.4, §4.5, §4.6). Implementations must not block or panic; a slow
// observer slows the whole engine since notification is synchronous.
type EngineObserver interface {
	OnFactInserted(fact *domain.Fact)
	OnFactRetracted(fact *domain.Fact)
	OnActivationCreated(activation *domain.Activation)
	OnActivationFired(activation *domain.Activation, report *ActionOutcome)
	OnActivationWithdrawn(activation *domain.Activation)
	OnRuleLoaded(ruleName string)
	OnRuleUnloaded(ruleName string)
	OnCycleLimitReached(cycles int)
}

// ActionOutcome summarizes the execution of one activation's action list,
// passed to OnActivationFired for logging/tracing.
type ActionOutcome struct {
	ActionsRun int
	Err        error
}

// ObserverManager fans out every event to a list of registered observers.
type ObserverManager struct {
	mu        sync.RWMutex
	observers []EngineObserver
}

func NewObserverManager() *ObserverManager {
	return &ObserverManager{}
}

func (m *ObserverManager) AddObserver(o EngineObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

func (m *ObserverManager) RemoveObserver(o EngineObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.observers {
		if existing == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

func (m *ObserverManager) snapshot() []EngineObserver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EngineObserver, len(m.observers))
	copy(out, m.observers)
	return out
}

func (m *ObserverManager) NotifyFactInserted(fact *domain.Fact) {
	for _, o := range m.snapshot() {
		o.OnFactInserted(fact)
	}
}

func (m *ObserverManager) NotifyFactRetracted(fact *domain.Fact) {
	for _, o := range m.snapshot() {
		o.OnFactRetracted(fact)
	}
}

func (m *ObserverManager) NotifyActivationCreated(a *domain.Activation) {
	for _, o := range m.snapshot() {
		o.OnActivationCreated(a)
	}
}

func (m *ObserverManager) NotifyActivationFired(a *domain.Activation, outcome *ActionOutcome) {
	for _, o := range m.snapshot() {
		o.OnActivationFired(a, outcome)
	}
}

func (m *ObserverManager) NotifyActivationWithdrawn(a *domain.Activation) {
	for _, o := range m.snapshot() {
		o.OnActivationWithdrawn(a)
	}
}

func (m *ObserverManager) NotifyRuleLoaded(name string) {
	for _, o := range m.snapshot() {
		o.OnRuleLoaded(name)
	}
}

func (m *ObserverManager) NotifyRuleUnloaded(name string) {
	for _, o := range m.snapshot() {
		o.OnRuleUnloaded(name)
	}
}

func (m *ObserverManager) NotifyCycleLimitReached(cycles int) {
	for _, o := range m.snapshot() {
		o.OnCycleLimitReached(cycles)
	}
}

// NoopObserver implements EngineObserver with empty methods, handy to embed
// so callers only override the events they care about.
type NoopObserver struct{}

func (NoopObserver) OnFactInserted(*domain.Fact)                   {}
func (NoopObserver) OnFactRetracted(*domain.Fact)                  {}
func (NoopObserver) OnActivationCreated(*domain.Activation)        {}
func (NoopObserver) OnActivationFired(*domain.Activation, *ActionOutcome) {}
func (NoopObserver) OnActivationWithdrawn(*domain.Activation)      {}
func (NoopObserver) OnRuleLoaded(string)                           {}
func (NoopObserver) OnRuleUnloaded(string)                         {}
func (NoopObserver) OnCycleLimitReached(int)                       {}
