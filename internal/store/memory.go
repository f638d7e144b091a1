// Package store implements the fact store (working memory) described in
// §4.1: a content-addressable map of facts keyed by opaque handle, with a
// per-type index for GetByType and insertion-order iteration.
package store

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/rengine/rengine/internal/domain"
)

// FactStore is the engine's working memory. It is a passive data structure:
// it has no knowledge of the discrimination network or the agenda. The
// engine facade is responsible for feeding each mutation into the
// propagation engine (§4.1, §4.4 layering).
//
// FactStore is guarded by a mutex even though the engine itself is
// documented as single-threaded cooperative (§5): it is not a concurrency
// guarantee, only protection against accidental misuse.
type FactStore struct {
	mu         sync.RWMutex
	facts      map[domain.Handle]*domain.Fact
	typeIndex  map[string]*roaring.Bitmap
	order      []domain.Handle // insertion order, for deterministic GetByType iteration
	nextHandle uint32
}

func NewFactStore() *FactStore {
	return &FactStore{
		facts:     make(map[domain.Handle]*domain.Fact),
		typeIndex: make(map[string]*roaring.Bitmap),
	}
}

// Insert allocates a new handle for a fact of the given type and data, and
// records it. It never fails (§4.1: "never rejects a structurally valid
// fact").
func (s *FactStore) Insert(factType string, data domain.Value, source domain.Source, derivedBy domain.ActivationID) *domain.Fact {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextHandle++
	h := domain.Handle(s.nextHandle)
	f := &domain.Fact{
		Handle:    h,
		Type:      factType,
		Data:      data,
		Source:    source,
		DerivedBy: derivedBy,
	}
	s.facts[h] = f
	s.order = append(s.order, h)
	bm, ok := s.typeIndex[factType]
	if !ok {
		bm = roaring.New()
		s.typeIndex[factType] = bm
	}
	bm.Add(uint32(h))
	return f
}

// Modify replaces the Data of an existing, live fact in place, keeping its
// handle (and so any TMS derivation links). The retract-then-insert
// semantics of a modify live at the network level: propagation.Engine.Modify
// calls this and then retracts the old data from the network and inserts the
// new data under the same handle.
func (s *FactStore) Modify(handle domain.Handle, data domain.Value) (*domain.Fact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.facts[handle]
	if !ok {
		return nil, domain.UnknownHandleError(handle)
	}
	f.Data = data
	return f, nil
}

// Retract removes a fact from working memory. Retracting an already-unknown
// handle is idempotent and not an error (§4.1).
func (s *FactStore) Retract(handle domain.Handle) (*domain.Fact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.facts[handle]
	if !ok {
		return nil, false
	}
	delete(s.facts, handle)
	if bm, ok := s.typeIndex[f.Type]; ok {
		bm.Remove(uint32(handle))
	}
	return f, true
}

// Get returns the live fact for handle, if any.
func (s *FactStore) Get(handle domain.Handle) (*domain.Fact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.facts[handle]
	return f, ok
}

// GetByType returns every live fact of the given type, in insertion order.
func (s *FactStore) GetByType(factType string) []*domain.Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bm, ok := s.typeIndex[factType]
	if !ok {
		return nil
	}
	out := make([]*domain.Fact, 0, bm.GetCardinality())
	for _, h := range s.order {
		if bm.Contains(uint32(h)) {
			if f, ok := s.facts[h]; ok {
				out = append(out, f)
			}
		}
	}
	return out
}

// All returns every live fact, in insertion order. Used to replay working
// memory through newly compiled network nodes when a rule is loaded after
// facts already exist (§4.3).
func (s *FactStore) All() []*domain.Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Fact, 0, len(s.facts))
	for _, h := range s.order {
		if f, ok := s.facts[h]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Count returns the number of live facts of the given type.
func (s *FactStore) Count(factType string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bm, ok := s.typeIndex[factType]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// Len returns the total number of live facts across all types.
func (s *FactStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}

// Reset clears every fact. Handle allocation keeps counting, so a handle
// issued before Reset is never issued again. Used by Engine.Reset (§4.4).
func (s *FactStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = make(map[domain.Handle]*domain.Fact)
	s.typeIndex = make(map[string]*roaring.Bitmap)
	s.order = nil
}
