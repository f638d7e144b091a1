package ruledef

// RuleBuilder fluently assembles a RuleDef.
type RuleBuilder struct {
	r RuleDef
}

func NewRuleBuilder(name string) *RuleBuilder {
	return &RuleBuilder{r: RuleDef{Name: name}}
}

func (b *RuleBuilder) Salience(s int) *RuleBuilder {
	b.r.Salience = s
	return b
}

func (b *RuleBuilder) NoLoop(v bool) *RuleBuilder {
	b.r.NoLoop = v
	return b
}

func (b *RuleBuilder) When(chain ...PatternDef) *RuleBuilder {
	b.r.Disjuncts = append(b.r.Disjuncts, chain)
	return b
}

func (b *RuleBuilder) Then(action ActionDef) *RuleBuilder {
	b.r.Actions = append(b.r.Actions, action)
	return b
}

func (b *RuleBuilder) Build() RuleDef { return b.r }

// PatternBuilder fluently assembles a PatternDef.
type PatternBuilder struct {
	p PatternDef
}

func NewPattern(alias, factType string) *PatternBuilder {
	return &PatternBuilder{p: PatternDef{Alias: alias, FactType: factType}}
}

func (b *PatternBuilder) Not() *PatternBuilder    { b.p.Kind = "not"; return b }
func (b *PatternBuilder) Exists() *PatternBuilder  { b.p.Kind = "exists"; return b }
func (b *PatternBuilder) Forall() *PatternBuilder  { b.p.Kind = "forall"; return b }

func (b *PatternBuilder) Where(cond ConditionDef) *PatternBuilder {
	b.p.Where = cond
	return b
}

func (b *PatternBuilder) Build() PatternDef { return b.p }

// Predicate builds a ConditionDef leaf testing alias.field op rhs.
func Predicate(alias, field, op string, rhs OperandDef) ConditionDef {
	return ConditionDef{Predicate: &PredicateDef{Alias: alias, Field: field, Op: op, RHS: rhs}}
}

func Lit(v LiteralDef) OperandDef         { return OperandDef{Literal: &v} }
func LitInt(v int64) OperandDef           { return Lit(LiteralDef{Int: &v}) }
func LitFloat(v float64) OperandDef       { return Lit(LiteralDef{Float: &v}) }
func LitBool(v bool) OperandDef           { return Lit(LiteralDef{Bool: &v}) }
func LitString(v string) OperandDef       { return Lit(LiteralDef{String: &v}) }
func Ref(alias, field string) OperandDef  { return OperandDef{Alias: alias, Field: field} }

func And(children ...ConditionDef) ConditionDef {
	return ConditionDef{Group: "and", Children: children}
}

func Or(children ...ConditionDef) ConditionDef {
	return ConditionDef{Group: "or", Children: children}
}
