package rengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rengine/rengine"
	"github.com/rengine/rengine/internal/domain"
	"github.com/rengine/rengine/pkg/ruledef"
)

func newEngine(t *testing.T) *rengine.Engine {
	t.Helper()
	cfg := rengine.DefaultEngineConfig()
	cfg.EnableStructuredLogging = false
	return rengine.NewEngine(cfg)
}

func userFact(age int64) rengine.Value {
	return rengine.NewObject(rengine.ObjectField{Name: "age", Value: rengine.IntValue(age)})
}

// S1/S2: adult + can-vote derivation chain, then retract cascades both
// derived fields away.
func TestAdultCanVoteChain(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := newEngine(t)

	r1 := ruledef.NewRuleBuilder("AdultRule").
		When(ruledef.NewPattern("u", "User").
			Where(ruledef.Predicate("u", "age", ">=", ruledef.LitInt(18))).
			Build()).
		Then(ruledef.ActionDef{Kind: "set", FieldPath: "$u.Adult", Literal: &ruledef.LiteralDef{Bool: boolPtr(true)}}).
		Build()
	r2 := ruledef.NewRuleBuilder("CanVoteRule").
		When(ruledef.NewPattern("u", "User").
			Where(ruledef.Predicate("u", "Adult", "==", ruledef.LitBool(true))).
			Build()).
		Then(ruledef.ActionDef{Kind: "set", FieldPath: "$u.CanVote", Literal: &ruledef.LiteralDef{Bool: boolPtr(true)}}).
		Build()

	require.NoError(t, e.LoadRuleDef(r1))
	require.NoError(t, e.LoadRuleDef(r2))

	h := e.InsertFact("User", userFact(20))
	report := e.FireAll()

	require.Equal(t, 2, report.RulesFired)
	require.LessOrEqual(t, report.Cycles, 3)

	f, ok := e.GetFact(h)
	require.True(t, ok)
	adult, _ := f.Data.Field("Adult")
	canVote, _ := f.Data.Field("CanVote")
	v, _ := adult.AsBool()
	assert.True(t, v)
	v, _ = canVote.AsBool()
	assert.True(t, v)

	// S2: retracting the premise must not leave residual activations, and a
	// second FireAll on an empty agenda does nothing.
	e.RetractFact(h)
	report2 := e.FireAll()
	assert.Zero(t, report2.RulesFired)
	assert.Zero(t, e.WorkingMemorySize())
}

// S3: a no-loop rule fires exactly once even though its own action
// re-satisfies its condition, and a second FireAll fires nothing.
func TestNoLoopSuppression(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := newEngine(t)

	rule := ruledef.NewRuleBuilder("DiscountRule").
		NoLoop(true).
		When(ruledef.NewPattern("o", "Order").
			Where(ruledef.Predicate("o", "amount", ">", ruledef.LitInt(100))).
			Build()).
		Then(ruledef.ActionDef{
			Kind:      "set",
			FieldPath: "$o.total",
			ValueExpr: "o.amount * 0.9",
		}).
		Build()
	require.NoError(t, e.LoadRuleDef(rule))

	h := e.InsertFact("Order", rengine.NewObject(rengine.ObjectField{Name: "amount", Value: rengine.FloatValue(200)}))
	report := e.FireAll()
	require.Equal(t, 1, report.RulesFired)

	f, _ := e.GetFact(h)
	total, _ := f.Data.Field("total")
	got, _ := total.AsFloat()
	assert.Equal(t, 180.0, got)

	report2 := e.FireAll()
	assert.Zero(t, report2.RulesFired)
}

// S4: variable-to-variable comparison matches/doesn't match depending on the
// relative values of two bound fields on the same fact.
func TestVariableToVariableComparison(t *testing.T) {
	defer goleak.VerifyNone(t)
	cases := []struct {
		l1, l1min int64
		wantFire  bool
	}{
		{100, 50, true},
		{40, 50, false},
		{50, 50, false},
	}
	for _, tc := range cases {
		e := newEngine(t)
		rule := ruledef.NewRuleBuilder("AboveMin").
			When(ruledef.NewPattern("r", "Level").
				Where(ruledef.Predicate("r", "L1", ">", ruledef.Ref("r", "L1Min"))).
				Build()).
			Then(ruledef.ActionDef{Kind: "log", Message: "fired"}).
			Build()
		require.NoError(t, e.LoadRuleDef(rule))

		e.InsertFact("Level", rengine.NewObject(
			rengine.ObjectField{Name: "L1", Value: rengine.IntValue(tc.l1)},
			rengine.ObjectField{Name: "L1Min", Value: rengine.IntValue(tc.l1min)},
		))
		report := e.FireAll()
		if tc.wantFire {
			assert.Equal(t, 1, report.RulesFired, "L1=%d L1Min=%d", tc.l1, tc.l1min)
		} else {
			assert.Zero(t, report.RulesFired, "L1=%d L1Min=%d", tc.l1, tc.l1min)
		}
	}
}

// S5: the "in" operator against a literal array. The wire format's
// OperandDef only carries scalar literals, so an array-valued "in" test is
// built directly against the condition tree instead of through ruledef,
// mirroring how a host would build one from a dynamic list at runtime.
func TestInOperator(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := newEngine(t)

	ignored := domain.ArrayValue([]domain.Value{
		domain.StringValue("node_modules"),
		domain.StringValue("__pycache__"),
	})
	cond := domain.Leaf(domain.Predicate{Alias: "p", Field: "name", Op: domain.OpIn, RHS: domain.Literal(ignored)})
	r := rengine.Rule{
		Name: "IgnoredPathDirect",
		Disjuncts: [][]rengine.Pattern{{
			{Alias: "p", FactType: "Path", Kind: rengine.PatternPositive, Where: cond},
		}},
		Actions: []rengine.Action{{Kind: rengine.ActionLog, Message: "ignored"}},
	}
	require.NoError(t, e.LoadRule(r))

	e.InsertFact("Path", rengine.NewObject(rengine.ObjectField{Name: "name", Value: rengine.StringValue("node_modules")}))
	report := e.FireAll()
	assert.Equal(t, 1, report.RulesFired)

	e2 := newEngine(t)
	require.NoError(t, e2.LoadRule(r))
	e2.InsertFact("Path", rengine.NewObject(rengine.ObjectField{Name: "name", Value: rengine.StringValue("src")}))
	report2 := e2.FireAll()
	assert.Zero(t, report2.RulesFired)
}

// S6: salience pins the LEX tie-break, so the higher-salience rule's write
// is the one a lower-salience rule observes, not the other way round.
func TestSalienceOrdering(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := newEngine(t)

	hi := ruledef.NewRuleBuilder("SetOne").
		Salience(100).
		When(ruledef.NewPattern("f", "Flag").Build()).
		Then(ruledef.ActionDef{Kind: "set", FieldPath: "$f.X", Literal: &ruledef.LiteralDef{Int: int64Ptr(1)}}).
		Build()
	lo := ruledef.NewRuleBuilder("SetTwo").
		Salience(10).
		When(ruledef.NewPattern("f", "Flag").Build()).
		Then(ruledef.ActionDef{Kind: "set", FieldPath: "$f.X", Literal: &ruledef.LiteralDef{Int: int64Ptr(2)}}).
		Build()

	require.NoError(t, e.LoadRuleDef(hi))
	require.NoError(t, e.LoadRuleDef(lo))

	h := e.InsertFact("Flag", rengine.NewObject(rengine.ObjectField{Name: "X", Value: rengine.IntValue(0)}))
	report := e.FireAll()
	require.Equal(t, 2, report.RulesFired)

	f, _ := e.GetFact(h)
	x, _ := f.Data.Field("X")
	got, _ := x.AsInt()
	assert.Equal(t, int64(2), got, "the lower-salience rule fires second and is the last writer")
}

// Node sharing: two rules whose first pattern has an identical alpha test
// must not double the alpha node count.
func TestNodeSharing(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := newEngine(t)

	shared := ruledef.Predicate("u", "age", ">=", ruledef.LitInt(18))
	r1 := ruledef.NewRuleBuilder("R1").
		When(ruledef.NewPattern("u", "User").Where(shared).Build()).
		Then(ruledef.ActionDef{Kind: "log", Message: "r1"}).
		Build()
	r2 := ruledef.NewRuleBuilder("R2").
		When(ruledef.NewPattern("u", "User").Where(shared).Build()).
		Then(ruledef.ActionDef{Kind: "log", Message: "r2"}).
		Build()

	require.NoError(t, e.LoadRuleDef(r1))
	alphaNodes, _, _, _, _, terminalsAfterR1, _ := e.Stats()
	require.NoError(t, e.LoadRuleDef(r2))
	alphaNodes2, _, _, _, _, terminalsAfterR2, _ := e.Stats()

	assert.Equal(t, alphaNodes, alphaNodes2, "identical alpha test must be shared, not duplicated")
	assert.Equal(t, terminalsAfterR1+1, terminalsAfterR2, "each rule still gets its own terminal")
}

// Cold-start replay: a rule loaded after facts already exist still matches
// against working memory as it stood at load time.
func TestLoadRuleReplaysExistingFacts(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := newEngine(t)
	e.InsertFact("User", userFact(30))

	rule := ruledef.NewRuleBuilder("LateAdultRule").
		When(ruledef.NewPattern("u", "User").
			Where(ruledef.Predicate("u", "age", ">=", ruledef.LitInt(18))).
			Build()).
		Then(ruledef.ActionDef{Kind: "log", Message: "adult"}).
		Build()
	require.NoError(t, e.LoadRuleDef(rule))

	report := e.FireAll()
	assert.Equal(t, 1, report.RulesFired)
}

// UnloadRule withdraws the rule's own pending activations but leaves a
// second rule sharing the same alpha node unaffected.
func TestUnloadRule(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := newEngine(t)

	shared := ruledef.Predicate("u", "age", ">=", ruledef.LitInt(18))
	r1 := ruledef.NewRuleBuilder("KeepMe").
		When(ruledef.NewPattern("u", "User").Where(shared).Build()).
		Then(ruledef.ActionDef{Kind: "log", Message: "keep"}).
		Build()
	r2 := ruledef.NewRuleBuilder("DropMe").
		When(ruledef.NewPattern("u", "User").Where(shared).Build()).
		Then(ruledef.ActionDef{Kind: "log", Message: "drop"}).
		Build()
	require.NoError(t, e.LoadRuleDef(r1))
	require.NoError(t, e.LoadRuleDef(r2))

	e.InsertFact("User", userFact(25))
	require.NoError(t, e.UnloadRule("DropMe"))

	report := e.FireAll()
	assert.Equal(t, 1, report.RulesFired, "only the remaining rule should fire")
	assert.NotContains(t, e.ListRules(), "DropMe")
}

// Reset clears working memory and the agenda but keeps compiled rules, so a
// fresh insert against the same engine still matches.
func TestReset(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := newEngine(t)
	rule := ruledef.NewRuleBuilder("AdultRule").
		When(ruledef.NewPattern("u", "User").
			Where(ruledef.Predicate("u", "age", ">=", ruledef.LitInt(18))).
			Build()).
		Then(ruledef.ActionDef{Kind: "log", Message: "adult"}).
		Build()
	require.NoError(t, e.LoadRuleDef(rule))

	e.InsertFact("User", userFact(40))
	e.Reset()
	assert.Zero(t, e.WorkingMemorySize())

	e.InsertFact("User", userFact(40))
	report := e.FireAll()
	assert.Equal(t, 1, report.RulesFired)
	assert.Contains(t, e.ListRules(), "AdultRule")
}

func boolPtr(b bool) *bool    { return &b }
func int64Ptr(i int64) *int64 { return &i }
