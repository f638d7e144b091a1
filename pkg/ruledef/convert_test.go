package ruledef_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rengine/rengine/internal/domain"
	"github.com/rengine/rengine/pkg/ruledef"
)

func TestToRuleBuildsExpectedShape(t *testing.T) {
	def := ruledef.NewRuleBuilder("AdultRule").
		Salience(5).
		NoLoop(true).
		When(ruledef.NewPattern("u", "User").
			Where(ruledef.Predicate("u", "age", ">=", ruledef.LitInt(18))).
			Build()).
		Then(ruledef.ActionDef{Kind: "set", FieldPath: "$u.Adult", Literal: &ruledef.LiteralDef{Bool: boolPtr(true)}}).
		Build()

	rule, err := ruledef.ToRule(def)
	require.NoError(t, err)

	assert.Equal(t, "AdultRule", rule.Name)
	assert.Equal(t, 5, rule.Salience)
	assert.True(t, rule.NoLoop)
	require.Len(t, rule.Disjuncts, 1)
	require.Len(t, rule.Disjuncts[0], 1)
	assert.Equal(t, "User", rule.Disjuncts[0][0].FactType)
	assert.Equal(t, domain.PatternPositive, rule.Disjuncts[0][0].Kind)
	require.Len(t, rule.Actions, 1)
	assert.Equal(t, domain.ActionSet, rule.Actions[0].Kind)
}

func TestToRuleUnknownOperatorErrors(t *testing.T) {
	def := ruledef.RuleDef{
		Name: "Bad",
		Disjuncts: [][]ruledef.PatternDef{{
			ruledef.NewPattern("u", "User").
				Where(ruledef.Predicate("u", "age", "~=", ruledef.LitInt(1))).
				Build(),
		}},
	}
	_, err := ruledef.ToRule(def)
	assert.Error(t, err)
}

func TestToRuleUnknownPatternKindErrors(t *testing.T) {
	def := ruledef.RuleDef{
		Name: "Bad",
		Disjuncts: [][]ruledef.PatternDef{{
			{Alias: "u", FactType: "User", Kind: "maybe"},
		}},
	}
	_, err := ruledef.ToRule(def)
	assert.Error(t, err)
}

func TestToRuleNegatedPatternKinds(t *testing.T) {
	def := ruledef.RuleDef{
		Name: "HasNoOrders",
		Disjuncts: [][]ruledef.PatternDef{{
			ruledef.NewPattern("u", "User").Build(),
			ruledef.NewPattern("o", "Order").Not().Build(),
		}},
	}
	rule, err := ruledef.ToRule(def)
	require.NoError(t, err)
	assert.Equal(t, domain.PatternNot, rule.Disjuncts[0][1].Kind)
	assert.Equal(t, "o", rule.Disjuncts[0][1].Alias, "alias is always populated, even for Not patterns")
}

func boolPtr(b bool) *bool { return &b }
