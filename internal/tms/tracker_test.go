package tms_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rengine/rengine/internal/domain"
	"github.com/rengine/rengine/internal/tms"
)

func TestWithdrawReturnsEveryDerivedHandle(t *testing.T) {
	tr := tms.New()
	tr.RecordDerivation(domain.ActivationID(1), domain.Handle(10))
	tr.RecordDerivation(domain.ActivationID(1), domain.Handle(11))
	tr.RecordDerivation(domain.ActivationID(2), domain.Handle(20))

	handles := tr.Withdraw(domain.ActivationID(1))
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	assert.Equal(t, []domain.Handle{10, 11}, handles)

	id, ok := tr.DerivedBy(domain.Handle(20))
	require.True(t, ok)
	assert.Equal(t, domain.ActivationID(2), id)

	_, ok = tr.DerivedBy(domain.Handle(10))
	assert.False(t, ok, "withdrawn handles are no longer tracked")
}

func TestWithdrawOfUnknownActivationIsEmptyNotError(t *testing.T) {
	tr := tms.New()
	handles := tr.Withdraw(domain.ActivationID(99))
	assert.Empty(t, handles)
}

func TestForgetRemovesOnlyThatHandle(t *testing.T) {
	tr := tms.New()
	tr.RecordDerivation(domain.ActivationID(1), domain.Handle(10))
	tr.RecordDerivation(domain.ActivationID(1), domain.Handle(11))

	tr.Forget(domain.Handle(10))
	_, ok := tr.DerivedBy(domain.Handle(10))
	assert.False(t, ok)

	handles := tr.Withdraw(domain.ActivationID(1))
	assert.Equal(t, []domain.Handle{11}, handles, "Forget only removes the one handle, not the whole activation")
}

func TestWithdrawIsIdempotent(t *testing.T) {
	tr := tms.New()
	tr.RecordDerivation(domain.ActivationID(1), domain.Handle(10))
	first := tr.Withdraw(domain.ActivationID(1))
	require.Len(t, first, 1)

	second := tr.Withdraw(domain.ActivationID(1))
	assert.Empty(t, second, "withdrawing the same activation twice yields nothing the second time")
}
