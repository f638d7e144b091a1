// Package propagation drives the discrimination network from fact store
// mutations, implementing the delta-propagation engine of §4.4: every
// insert/modify/retract is pushed through the whole network before control
// returns to the caller, and the resulting terminal-node transitions are
// handed back as a single batch.
package propagation

import (
	"github.com/rengine/rengine/internal/domain"
	"github.com/rengine/rengine/internal/network"
	"github.com/rengine/rengine/internal/store"
)

// Engine couples a fact store to a discrimination network.
type Engine struct {
	Store   *store.FactStore
	Network *network.Network
}

func New(s *store.FactStore, n *network.Network) *Engine {
	return &Engine{Store: s, Network: n}
}

// Insert inserts a new fact and propagates it through the network,
// returning the resulting terminal events and any evaluation warnings.
func (e *Engine) Insert(factType string, data domain.Value, source domain.Source, derivedBy domain.ActivationID) (*domain.Fact, []network.TerminalEvent, []error) {
	f := e.Store.Insert(factType, data, source, derivedBy)
	e.Network.InsertFact(f)
	events, warnings := e.Network.DrainEvents()
	return f, events, warnings
}

// Retract retracts a fact by handle and propagates its removal. Retracting
// an unknown handle is a no-op (§4.1).
func (e *Engine) Retract(handle domain.Handle) ([]network.TerminalEvent, []error) {
	f, ok := e.Store.Retract(handle)
	if !ok {
		return nil, nil
	}
	e.Network.RetractFact(f)
	events, warnings := e.Network.DrainEvents()
	return events, warnings
}

// Modify replaces a fact's data in place, implemented as retract-then-insert
// (§4.1 design latitude): the network sees the old data retracted and the
// new data inserted under the same handle, so any downstream token keyed on
// that handle withdraws and re-derives cleanly.
func (e *Engine) Modify(handle domain.Handle, data domain.Value) (*domain.Fact, []network.TerminalEvent, []error) {
	old, ok := e.Store.Get(handle)
	if !ok {
		return nil, nil, nil
	}
	oldSnapshot := *old
	f, err := e.Store.Modify(handle, data)
	if err != nil {
		return nil, nil, []error{err}
	}
	e.Network.RetractFact(&oldSnapshot)
	e.Network.InsertFact(f)
	events, warnings := e.Network.DrainEvents()
	return f, events, warnings
}
