// Package agenda implements the priority queue and no-loop bookkeeping of
// §4.5: a LEX conflict-resolution queue keyed by (-salience, insertion
// order, activation id) and a per-pass set suppressing a rule instantiation
// from firing twice before the agenda empties.
package agenda

import (
	"container/heap"

	"github.com/rengine/rengine/internal/domain"
)

type entry struct {
	activation *domain.Activation
	index      int
}

type pq []*entry

func (q pq) Len() int { return len(q) }

func (q pq) Less(i, j int) bool {
	a, b := q[i].activation, q[j].activation
	if a.Salience != b.Salience {
		return a.Salience > b.Salience // higher salience first
	}
	if a.Seq != b.Seq {
		return a.Seq < b.Seq // earlier-created first (FIFO within a tier)
	}
	return a.ID < b.ID
}

func (q pq) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *pq) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *pq) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Agenda is the engine's conflict set: every activation currently pending,
// plus the no-loop set cleared each time it empties (§4.5).
type Agenda struct {
	queue       pq
	byKey       map[string]*entry // "ruleName|tokenKey" -> queued entry, for withdrawal lookup
	firedThisPass map[string]bool // "ruleName|tokenKey" entries suppressed by no_loop
	nextSeq     uint64
	nextID      domain.ActivationID
}

func New() *Agenda {
	a := &Agenda{
		byKey:         make(map[string]*entry),
		firedThisPass: make(map[string]bool),
	}
	heap.Init(&a.queue)
	return a
}

func key(ruleName string, token domain.Token) string { return ruleName + "|" + token.Key() }

// NewActivationID allocates the next unique activation identity and
// insertion-order sequence number.
func (a *Agenda) NewActivationID() (domain.ActivationID, uint64) {
	a.nextID++
	a.nextSeq++
	return a.nextID, a.nextSeq
}

// Push enqueues a new activation, unless its (rule, token) instantiation is
// currently suppressed by no_loop.
func (a *Agenda) Push(act *domain.Activation) bool {
	k := key(act.RuleName, act.Token)
	if act.NoLoop && a.firedThisPass[k] {
		return false
	}
	e := &entry{activation: act}
	heap.Push(&a.queue, e)
	a.byKey[k] = e
	return true
}

// Withdraw removes a pending activation for (ruleName, token), if it is
// still queued (i.e. has not already fired). Returns the withdrawn
// activation and true if one was found.
func (a *Agenda) Withdraw(ruleName string, token domain.Token) (*domain.Activation, bool) {
	k := key(ruleName, token)
	e, ok := a.byKey[k]
	if !ok {
		return nil, false
	}
	heap.Remove(&a.queue, e.index)
	delete(a.byKey, k)
	return e.activation, true
}

// Empty reports whether the agenda has no pending activations.
func (a *Agenda) Empty() bool { return a.queue.Len() == 0 }

// Pop removes and returns the highest-priority pending activation.
func (a *Agenda) Pop() *domain.Activation {
	e := heap.Pop(&a.queue).(*entry)
	delete(a.byKey, key(e.activation.RuleName, e.activation.Token))
	a.firedThisPass[key(e.activation.RuleName, e.activation.Token)] = true
	return e.activation
}

// ClearNoLoop resets the no-loop suppression set, called whenever the
// engine reaches quiescence (an empty agenda) per §4.5.
func (a *Agenda) ClearNoLoop() {
	a.firedThisPass = make(map[string]bool)
}

// Reset empties the agenda entirely and clears the no-loop set, used by
// Engine.Reset (§4.4). Activation IDs and sequence numbers keep counting, so
// an ID is never issued twice.
func (a *Agenda) Reset() {
	a.queue = nil
	a.byKey = make(map[string]*entry)
	a.firedThisPass = make(map[string]bool)
}
