// Package ruledef is the engine's public wire format: the JSON/YAML shape a
// host application writes rules in, and the fluent builders used to
// construct it in code.
package ruledef

// LiteralDef is a JSON/YAML-friendly tagged literal value.
type LiteralDef struct {
	Int    *int64   `json:"int,omitempty" yaml:"int,omitempty"`
	Float  *float64 `json:"float,omitempty" yaml:"float,omitempty"`
	Bool   *bool    `json:"bool,omitempty" yaml:"bool,omitempty"`
	String *string  `json:"string,omitempty" yaml:"string,omitempty"`
}

// OperandDef is either a literal or a reference to another bound alias's
// field.
type OperandDef struct {
	Literal *LiteralDef `json:"literal,omitempty" yaml:"literal,omitempty"`
	Alias   string      `json:"alias,omitempty" yaml:"alias,omitempty"`
	Field   string       `json:"field,omitempty" yaml:"field,omitempty"`
}

// PredicateDef is one leaf comparison in a ConditionDef tree.
type PredicateDef struct {
	Alias string     `json:"alias" yaml:"alias"`
	Field string     `json:"field" yaml:"field"`
	Op    string     `json:"op" yaml:"op"`
	RHS   OperandDef `json:"rhs" yaml:"rhs"`
}

// MultiFieldDef tests an array-valued field as a whole.
type MultiFieldDef struct {
	Alias   string      `json:"alias" yaml:"alias"`
	Field   string      `json:"field" yaml:"field"`
	Op      string      `json:"op" yaml:"op"`
	CountOp string      `json:"count_op,omitempty" yaml:"count_op,omitempty"`
	CountN  int         `json:"count_n,omitempty" yaml:"count_n,omitempty"`
	Value   *LiteralDef `json:"value,omitempty" yaml:"value,omitempty"`
}

// ConditionDef is the wire form of a condition tree: exactly one of
// Predicate, MultiField or Group should be set.
type ConditionDef struct {
	Predicate  *PredicateDef   `json:"predicate,omitempty" yaml:"predicate,omitempty"`
	MultiField *MultiFieldDef  `json:"multi_field,omitempty" yaml:"multi_field,omitempty"`
	Group      string          `json:"group,omitempty" yaml:"group,omitempty"` // "and" | "or"
	Children   []ConditionDef  `json:"children,omitempty" yaml:"children,omitempty"`
}

// PatternDef is one element of a rule's pattern chain.
type PatternDef struct {
	Alias    string       `json:"alias" yaml:"alias"`
	FactType string       `json:"fact_type" yaml:"fact_type"`
	Kind     string       `json:"kind,omitempty" yaml:"kind,omitempty"` // "", "not", "exists", "forall"
	Where    ConditionDef `json:"where,omitempty" yaml:"where,omitempty"`
}

// ActionDef is one right-hand-side effect.
type ActionDef struct {
	Kind         string   `json:"kind" yaml:"kind"`
	FieldPath    string   `json:"field_path,omitempty" yaml:"field_path,omitempty"`
	ValueExpr    string   `json:"value_expr,omitempty" yaml:"value_expr,omitempty"`
	Literal      *LiteralDef `json:"literal,omitempty" yaml:"literal,omitempty"`
	TypeName     string   `json:"type_name,omitempty" yaml:"type_name,omitempty"`
	ObjectExpr   string   `json:"object_expr,omitempty" yaml:"object_expr,omitempty"`
	BindingRef   string   `json:"binding_ref,omitempty" yaml:"binding_ref,omitempty"`
	Message      string   `json:"message,omitempty" yaml:"message,omitempty"`
	MessageExpr  string   `json:"message_expr,omitempty" yaml:"message_expr,omitempty"`
	FunctionName string   `json:"function_name,omitempty" yaml:"function_name,omitempty"`
	Method       string   `json:"method,omitempty" yaml:"method,omitempty"`
	Args         []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// RuleDef is the wire form of a whole rule, one or more OR'd disjuncts of
// pattern chains plus a shared action list.
type RuleDef struct {
	Name      string         `json:"name" yaml:"name"`
	Disjuncts [][]PatternDef `json:"disjuncts" yaml:"disjuncts"`
	Actions   []ActionDef    `json:"actions" yaml:"actions"`
	Salience  int            `json:"salience,omitempty" yaml:"salience,omitempty"`
	NoLoop    bool           `json:"no_loop,omitempty" yaml:"no_loop,omitempty"`
}

// FactTemplate is one entry of a LoadFacts batch (§D).
type FactTemplate struct {
	Type string                 `json:"type" yaml:"type"`
	Data map[string]any         `json:"data" yaml:"data"`
}
