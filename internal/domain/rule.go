package domain

// PatternKind says how a Pattern's matched facts gate the token flowing
// through the network (§4.2).
type PatternKind int

const (
	// PatternPositive joins a new bound alias onto the token.
	PatternPositive PatternKind = iota
	// PatternNot passes the token only when no fact of Pattern.FactType
	// satisfies Pattern.Where for the bindings established so far.
	PatternNot
	// PatternExists passes the token when at least one fact does.
	PatternExists
	// PatternForall passes the token when every fact of FactType satisfies
	// Where, vacuously true when there are none (§9 design note c).
	PatternForall
)

// Pattern is one element of a rule's conjunctive pattern chain: a fact type
// to scan, the alias under which Where can refer to a candidate fact of that
// type, and a filter that may reference this pattern's own alias as well as
// any alias bound by an earlier pattern in the chain (a join condition).
// Alias is always set, even for Not/Exists/Forall: Where still needs a name
// for the candidate fact being tested, it just never gets bound into the
// chain's Token.
type Pattern struct {
	Alias    string
	FactType string
	Kind     PatternKind
	Where    Condition
}

// ActionKind tags the variant held by an Action.
type ActionKind int

const (
	ActionSet ActionKind = iota
	ActionInsert
	ActionRetract
	ActionModify
	ActionLog
	ActionCallFunction
	ActionMethodCall
)

// Action is one right-hand-side effect of a rule, executed in order when its
// activation fires (§4.5).
type Action struct {
	Kind ActionKind

	// ActionSet: FieldPath is either "$alias.field" (token binding) or
	// "Type.field" (first live fact of that type in working memory).
	// ValueExpr is an expr-lang expression evaluated against the token's
	// bindings; if empty, Literal is used directly.
	FieldPath string
	ValueExpr string
	Literal   *Value

	// ActionInsert / ActionModify: ObjectExpr is an expr-lang expression
	// evaluated against the token's bindings that must produce a map/object.
	// For ActionInsert, TypeName is the type of the new fact. ActionModify
	// replaces the whole data of the BindingRef fact with the result; it does
	// not read FieldPath, ValueExpr or Literal, so a single-field update is
	// an ActionSet.
	TypeName   string
	ObjectExpr string

	// ActionRetract / ActionModify / ActionMethodCall: BindingRef is the
	// alias naming the fact to operate on.
	BindingRef string

	// ActionLog: Message is an expr-lang template-free string; MessageExpr,
	// if set, is evaluated and appended.
	Message     string
	MessageExpr string

	// ActionCallFunction / ActionMethodCall: FunctionName/Method is the
	// registered callable; Args are expr-lang expressions evaluated against
	// the token's bindings.
	FunctionName string
	Method       string
	Args         []string
}

// Rule is a named production: a set of OR'd pattern chains (disjuncts) and
// the actions to run when any one of them matches (§3). A Rule with a single
// disjunct is the common case; multiple disjuncts realize a top-level OR
// across whole pattern chains, each compiling to its own terminal node while
// sharing lower network structure wherever two disjuncts agree (§4.3).
type Rule struct {
	Name      string
	Disjuncts [][]Pattern
	Actions   []Action
	Salience  int
	NoLoop    bool
}
