package rengine_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/rengine/rengine"
	"github.com/rengine/rengine/pkg/ruledef"
)

// naiveAdultSet computes, via a ground-truth O(n) direct scan rather
// than the discrimination network, which of a set of ages should end up
// tagged Adult by the "age >= 18" rule. This is the oracle the incremental
// engine's output is checked against (property 1, §8).
func naiveAdultSet(ages []int64) map[int]bool {
	out := make(map[int]bool, len(ages))
	for i, age := range ages {
		out[i] = age >= 18
	}
	return out
}

func TestIncrementalEngineMatchesNaiveMatcher(t *testing.T) {
	ages := []int64{17, 18, 19, 0, 64, 17, 200, 18, -5, 40}
	want := naiveAdultSet(ages)

	e := rengine.NewEngine(rengine.DefaultEngineConfig())
	rule := ruledef.NewRuleBuilder("AdultRule").
		When(ruledef.NewPattern("u", "User").
			Where(ruledef.Predicate("u", "age", ">=", ruledef.LitInt(18))).
			Build()).
		Then(ruledef.ActionDef{Kind: "set", FieldPath: "$u.Adult", Literal: boolLiteral(true)}).
		Build()
	require.NoError(t, e.LoadRuleDef(rule))

	handles := make([]rengine.Handle, len(ages))
	for i, age := range ages {
		handles[i] = e.InsertFact("User", rengine.NewObject(rengine.ObjectField{Name: "age", Value: rengine.IntValue(age)}))
	}
	e.FireAll()

	got := make(map[int]bool, len(ages))
	for i, h := range handles {
		f, ok := e.GetFact(h)
		require.True(t, ok)
		adult, hasField := f.Data.Field("Adult")
		if hasField {
			b, _ := adult.AsBool()
			got[i] = b
		} else {
			got[i] = false
		}
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("incremental engine diverged from the naive matcher (-want +got):\n%s", diff)
	}
}

// Replaying the same facts in a different insertion order must reach the
// same final match set, since the naive matcher is order-independent too.
func TestIncrementalEngineIsOrderIndependent(t *testing.T) {
	ages := []int64{5, 30, 18, 17, 99}
	forward := runAdultRule(t, ages)

	reversed := make([]int64, len(ages))
	for i, a := range ages {
		reversed[len(ages)-1-i] = a
	}
	backward := runAdultRule(t, reversed)

	forwardSet := boolMultiset(forward)
	backwardSet := boolMultiset(backward)
	if diff := cmp.Diff(forwardSet, backwardSet); diff != "" {
		t.Errorf("insertion order changed the multiset of outcomes (-forward +backward):\n%s", diff)
	}
}

func runAdultRule(t *testing.T, ages []int64) []bool {
	t.Helper()
	e := rengine.NewEngine(rengine.DefaultEngineConfig())
	rule := ruledef.NewRuleBuilder("AdultRule").
		When(ruledef.NewPattern("u", "User").
			Where(ruledef.Predicate("u", "age", ">=", ruledef.LitInt(18))).
			Build()).
		Then(ruledef.ActionDef{Kind: "set", FieldPath: "$u.Adult", Literal: boolLiteral(true)}).
		Build()
	require.NoError(t, e.LoadRuleDef(rule))

	out := make([]bool, len(ages))
	for i, age := range ages {
		h := e.InsertFact("User", rengine.NewObject(rengine.ObjectField{Name: "age", Value: rengine.IntValue(age)}))
		e.FireAll()
		f, _ := e.GetFact(h)
		adult, hasField := f.Data.Field("Adult")
		if hasField {
			out[i], _ = adult.AsBool()
		}
	}
	return out
}

func boolMultiset(bs []bool) map[bool]int {
	out := map[bool]int{}
	for _, b := range bs {
		out[b]++
	}
	return out
}

func boolLiteral(b bool) *ruledef.LiteralDef {
	return &ruledef.LiteralDef{Bool: &b}
}
