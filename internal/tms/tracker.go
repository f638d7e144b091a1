// Package tms implements the logical dependency tracker of §4.6: it
// remembers which facts each activation logically derived, so that
// withdrawing the activation can cascade-retract them.
package tms

import "github.com/rengine/rengine/internal/domain"

// Tracker maps activations to the handles they derived, and handles back to
// the activation that derived them.
type Tracker struct {
	byActivation map[domain.ActivationID]map[domain.Handle]bool
	byHandle     map[domain.Handle]domain.ActivationID
}

func New() *Tracker {
	return &Tracker{
		byActivation: make(map[domain.ActivationID]map[domain.Handle]bool),
		byHandle:     make(map[domain.Handle]domain.ActivationID),
	}
}

// RecordDerivation notes that activation derived (inserted) handle.
func (t *Tracker) RecordDerivation(activation domain.ActivationID, handle domain.Handle) {
	set, ok := t.byActivation[activation]
	if !ok {
		set = make(map[domain.Handle]bool)
		t.byActivation[activation] = set
	}
	set[handle] = true
	t.byHandle[handle] = activation
}

// Forget removes a handle from tracking, called once it has actually been
// retracted from working memory (by cascade or by direct host retraction).
func (t *Tracker) Forget(handle domain.Handle) {
	if activation, ok := t.byHandle[handle]; ok {
		delete(t.byActivation[activation], handle)
		delete(t.byHandle, handle)
	}
}

// Withdraw returns every handle activation derived and still live, and
// clears its bookkeeping. The caller is responsible for actually retracting
// each handle and, recursively, calling Withdraw again for any activation
// that cascade withdraws as a result (§4.6).
func (t *Tracker) Withdraw(activation domain.ActivationID) []domain.Handle {
	set, ok := t.byActivation[activation]
	if !ok {
		return nil
	}
	out := make([]domain.Handle, 0, len(set))
	for h := range set {
		out = append(out, h)
		delete(t.byHandle, h)
	}
	delete(t.byActivation, activation)
	return out
}

// DerivedBy reports which activation, if any, logically derived handle.
func (t *Tracker) DerivedBy(handle domain.Handle) (domain.ActivationID, bool) {
	id, ok := t.byHandle[handle]
	return id, ok
}
