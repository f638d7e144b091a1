package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rengine/rengine/internal/domain"
	"github.com/rengine/rengine/internal/store"
)

func TestInsertAllocatesDistinctHandles(t *testing.T) {
	s := store.NewFactStore()
	f1 := s.Insert("User", domain.IntValue(1), domain.SourceExplicit, 0)
	f2 := s.Insert("User", domain.IntValue(2), domain.SourceExplicit, 0)
	assert.NotEqual(t, f1.Handle, f2.Handle)
}

func TestGetByTypeIsInsertionOrdered(t *testing.T) {
	s := store.NewFactStore()
	s.Insert("Order", domain.StringValue("a"), domain.SourceExplicit, 0)
	s.Insert("User", domain.StringValue("x"), domain.SourceExplicit, 0)
	s.Insert("Order", domain.StringValue("b"), domain.SourceExplicit, 0)

	orders := s.GetByType("Order")
	require.Len(t, orders, 2)
	av, _ := orders[0].Data.AsString()
	bv, _ := orders[1].Data.AsString()
	assert.Equal(t, "a", av)
	assert.Equal(t, "b", bv)
}

func TestRetractIsIdempotent(t *testing.T) {
	s := store.NewFactStore()
	f := s.Insert("User", domain.IntValue(1), domain.SourceExplicit, 0)

	_, ok := s.Retract(f.Handle)
	assert.True(t, ok)
	_, ok = s.Retract(f.Handle)
	assert.False(t, ok, "retracting an already-gone handle must not error or panic")

	_, ok = s.Get(f.Handle)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Count("User"))
}

func TestModifyUnknownHandleErrors(t *testing.T) {
	s := store.NewFactStore()
	_, err := s.Modify(domain.Handle(999), domain.IntValue(1))
	assert.Error(t, err)
}

func TestAllReturnsOnlyLiveFactsInInsertionOrder(t *testing.T) {
	s := store.NewFactStore()
	f1 := s.Insert("User", domain.IntValue(1), domain.SourceExplicit, 0)
	f2 := s.Insert("User", domain.IntValue(2), domain.SourceExplicit, 0)
	f3 := s.Insert("Order", domain.IntValue(3), domain.SourceExplicit, 0)
	s.Retract(f2.Handle)

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, f1.Handle, all[0].Handle)
	assert.Equal(t, f3.Handle, all[1].Handle)
}

func TestResetClearsFactsButNeverReusesHandles(t *testing.T) {
	s := store.NewFactStore()
	s.Insert("User", domain.IntValue(1), domain.SourceExplicit, 0)
	s.Reset()

	assert.Zero(t, s.Len())
	assert.Empty(t, s.All())

	f := s.Insert("User", domain.IntValue(2), domain.SourceExplicit, 0)
	assert.Equal(t, domain.Handle(2), f.Handle, "handle allocation keeps counting after Reset")
}
