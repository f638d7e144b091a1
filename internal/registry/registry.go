// Package registry holds the host-supplied functions and method handlers
// callable from rule actions (CallFunction/MethodCall, §6).
package registry

import (
	"sync"

	"github.com/rengine/rengine/internal/domain"
)

// factSource is the read-only slice of store.FactStore that a FactView
// needs; kept as a local interface so this package doesn't import
// internal/store.
type factSource interface {
	Get(domain.Handle) (*domain.Fact, bool)
	GetByType(string) []*domain.Fact
}

// FactView is a read-only handle onto working memory, passed to every
// registered function/method so it can read facts (§6: "Functions are
// pure-ish (may read facts, returns a Value)") without being able to
// mutate the store directly — mutation still goes through the Fact API on
// the engine facade.
type FactView struct {
	store factSource
}

func NewFactView(store factSource) *FactView { return &FactView{store: store} }

// Get returns the live fact bound to handle, if any.
func (v *FactView) Get(handle domain.Handle) (*domain.Fact, bool) { return v.store.Get(handle) }

// GetByType returns every live fact of the given type, in insertion order.
func (v *FactView) GetByType(factType string) []*domain.Fact { return v.store.GetByType(factType) }

// Function is a host-supplied callable invoked by an ActionCallFunction. It
// may read working memory through facts but not mutate it.
type Function func(args []domain.Value, facts *FactView) (domain.Value, error)

// MethodHandler is a host-supplied callable invoked by an
// ActionMethodCall, given the receiver fact's data alongside the call
// arguments and a read-only view of working memory.
type MethodHandler func(receiver domain.Value, args []domain.Value, facts *FactView) (domain.Value, error)

// Registry is a thread-safe lookup table for functions and method handlers.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Function
	methods   map[string]MethodHandler
}

func New() *Registry {
	return &Registry{
		functions: make(map[string]Function),
		methods:   make(map[string]MethodHandler),
	}
}

func (r *Registry) RegisterFunction(name string, fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[name] = fn
}

func (r *Registry) RegisterMethod(name string, handler MethodHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[name] = handler
}

func (r *Registry) Function(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	return fn, ok
}

func (r *Registry) Method(name string) (MethodHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[name]
	return m, ok
}

func (r *Registry) Call(name string, args []domain.Value, facts *FactView) (domain.Value, error) {
	fn, ok := r.Function(name)
	if !ok {
		return domain.Value{}, domain.UnknownFunctionError(name)
	}
	return fn(args, facts)
}

func (r *Registry) CallMethod(name string, receiver domain.Value, args []domain.Value, facts *FactView) (domain.Value, error) {
	m, ok := r.Method(name)
	if !ok {
		return domain.Value{}, domain.UnknownFunctionError(name)
	}
	return m(receiver, args, facts)
}
