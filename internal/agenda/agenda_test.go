package agenda_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rengine/rengine/internal/agenda"
	"github.com/rengine/rengine/internal/domain"
)

func push(t *testing.T, a *agenda.Agenda, rule string, tok domain.Token, salience int, noLoop bool) *domain.Activation {
	t.Helper()
	id, seq := a.NewActivationID()
	act := &domain.Activation{ID: id, RuleName: rule, Token: tok, Salience: salience, NoLoop: noLoop, Seq: seq}
	require.True(t, a.Push(act))
	return act
}

func TestPopOrdersBySalienceThenInsertionOrder(t *testing.T) {
	a := agenda.New()
	tokA := domain.EmptyToken().Extend("x", 1)
	tokB := domain.EmptyToken().Extend("x", 2)
	tokC := domain.EmptyToken().Extend("x", 3)

	push(t, a, "R1", tokA, 10, false)
	push(t, a, "R2", tokB, 100, false)
	push(t, a, "R3", tokC, 10, false)

	first := a.Pop()
	assert.Equal(t, "R2", first.RuleName, "higher salience fires first")
	second := a.Pop()
	assert.Equal(t, "R1", second.RuleName, "equal salience breaks the tie by insertion order")
	third := a.Pop()
	assert.Equal(t, "R3", third.RuleName)
	assert.True(t, a.Empty())
}

func TestWithdrawRemovesPendingActivation(t *testing.T) {
	a := agenda.New()
	tok := domain.EmptyToken().Extend("x", 1)
	push(t, a, "R1", tok, 0, false)

	withdrawn, ok := a.Withdraw("R1", tok)
	require.True(t, ok)
	assert.Equal(t, "R1", withdrawn.RuleName)
	assert.True(t, a.Empty())

	_, ok = a.Withdraw("R1", tok)
	assert.False(t, ok, "withdrawing a token with nothing pending reports not-found")
}

func TestNoLoopSuppressesRepeatPushWithinAPass(t *testing.T) {
	a := agenda.New()
	tok := domain.EmptyToken().Extend("x", 1)

	id1, seq1 := a.NewActivationID()
	act1 := &domain.Activation{ID: id1, RuleName: "R1", Token: tok, NoLoop: true, Seq: seq1}
	require.True(t, a.Push(act1))
	a.Pop() // marks (R1, tok) as fired this pass

	id2, seq2 := a.NewActivationID()
	act2 := &domain.Activation{ID: id2, RuleName: "R1", Token: tok, NoLoop: true, Seq: seq2}
	assert.False(t, a.Push(act2), "no-loop must suppress a repeat instantiation within the same pass")

	a.ClearNoLoop()
	id3, seq3 := a.NewActivationID()
	act3 := &domain.Activation{ID: id3, RuleName: "R1", Token: tok, NoLoop: true, Seq: seq3}
	assert.True(t, a.Push(act3), "clearing no-loop allows the same instantiation again")
}

func TestResetClearsQueueAndNoLoopSet(t *testing.T) {
	a := agenda.New()
	tok := domain.EmptyToken().Extend("x", 1)
	push(t, a, "R1", tok, 0, true)
	a.Pop() // marks (R1, tok) as fired this pass
	push(t, a, "R2", tok, 0, false)
	a.Reset()
	assert.True(t, a.Empty())

	id, seq := a.NewActivationID()
	again := &domain.Activation{ID: id, RuleName: "R1", Token: tok, NoLoop: true, Seq: seq}
	assert.True(t, a.Push(again), "Reset clears the no-loop set, so the fired instantiation may queue again")
}
