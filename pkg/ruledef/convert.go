package ruledef

import (
	"fmt"

	"github.com/rengine/rengine/internal/domain"
)

// ToRule converts a wire-format RuleDef into the domain.Rule the compiler
// consumes.
func ToRule(def RuleDef) (domain.Rule, error) {
	rule := domain.Rule{
		Name:     def.Name,
		Salience: def.Salience,
		NoLoop:   def.NoLoop,
	}
	for _, chain := range def.Disjuncts {
		patterns := make([]domain.Pattern, 0, len(chain))
		for _, pd := range chain {
			p, err := toPattern(pd)
			if err != nil {
				return domain.Rule{}, err
			}
			patterns = append(patterns, p)
		}
		rule.Disjuncts = append(rule.Disjuncts, patterns)
	}
	for _, ad := range def.Actions {
		a, err := toAction(ad)
		if err != nil {
			return domain.Rule{}, err
		}
		rule.Actions = append(rule.Actions, a)
	}
	return rule, nil
}

func toPattern(pd PatternDef) (domain.Pattern, error) {
	kind := domain.PatternPositive
	switch pd.Kind {
	case "", "positive":
		kind = domain.PatternPositive
	case "not":
		kind = domain.PatternNot
	case "exists":
		kind = domain.PatternExists
	case "forall":
		kind = domain.PatternForall
	default:
		return domain.Pattern{}, fmt.Errorf("ruledef: unknown pattern kind %q", pd.Kind)
	}
	where, err := toCondition(pd.Where)
	if err != nil {
		return domain.Pattern{}, err
	}
	return domain.Pattern{Alias: pd.Alias, FactType: pd.FactType, Kind: kind, Where: where}, nil
}

func toCondition(cd ConditionDef) (domain.Condition, error) {
	switch {
	case cd.Predicate != nil:
		op, err := toOperator(cd.Predicate.Op)
		if err != nil {
			return domain.Condition{}, err
		}
		rhs, err := toOperand(cd.Predicate.RHS)
		if err != nil {
			return domain.Condition{}, err
		}
		return domain.Leaf(domain.Predicate{
			Alias: cd.Predicate.Alias,
			Field: cd.Predicate.Field,
			Op:    op,
			RHS:   rhs,
		}), nil
	case cd.MultiField != nil:
		mf := cd.MultiField
		mfOp, err := toMultiFieldOp(mf.Op)
		if err != nil {
			return domain.Condition{}, err
		}
		var countOp domain.Operator
		if mf.CountOp != "" {
			countOp, err = toOperator(mf.CountOp)
			if err != nil {
				return domain.Condition{}, err
			}
		}
		var value domain.Value
		if mf.Value != nil {
			value = toLiteral(*mf.Value)
		}
		return domain.MultiLeaf(domain.MultiFieldCond{
			Alias:   mf.Alias,
			Field:   mf.Field,
			Op:      mfOp,
			CountOp: countOp,
			CountN:  mf.CountN,
			Value:   value,
		}), nil
	case len(cd.Children) > 0 || cd.Group != "":
		children := make([]domain.Condition, 0, len(cd.Children))
		for _, ch := range cd.Children {
			c, err := toCondition(ch)
			if err != nil {
				return domain.Condition{}, err
			}
			children = append(children, c)
		}
		switch cd.Group {
		case "", "and":
			return domain.And(children...), nil
		case "or":
			return domain.Or(children...), nil
		default:
			return domain.Condition{}, fmt.Errorf("ruledef: unknown group kind %q", cd.Group)
		}
	default:
		return domain.And(), nil
	}
}

func toOperand(od OperandDef) (domain.Operand, error) {
	if od.Literal != nil {
		return domain.Literal(toLiteral(*od.Literal)), nil
	}
	if od.Alias == "" {
		return domain.Operand{}, fmt.Errorf("ruledef: operand has neither literal nor alias")
	}
	return domain.FieldRef(od.Alias, od.Field), nil
}

func toLiteral(l LiteralDef) domain.Value {
	switch {
	case l.Int != nil:
		return domain.IntValue(*l.Int)
	case l.Float != nil:
		return domain.FloatValue(*l.Float)
	case l.Bool != nil:
		return domain.BoolValue(*l.Bool)
	case l.String != nil:
		return domain.StringValue(*l.String)
	default:
		return domain.Value{}
	}
}

func toOperator(s string) (domain.Operator, error) {
	switch s {
	case "==":
		return domain.OpEq, nil
	case "!=":
		return domain.OpNeq, nil
	case "<":
		return domain.OpLt, nil
	case "<=":
		return domain.OpLte, nil
	case ">":
		return domain.OpGt, nil
	case ">=":
		return domain.OpGte, nil
	case "in":
		return domain.OpIn, nil
	case "contains":
		return domain.OpContains, nil
	default:
		return "", fmt.Errorf("ruledef: unknown operator %q", s)
	}
}

func toMultiFieldOp(s string) (domain.MultiFieldOp, error) {
	switch s {
	case "empty":
		return domain.MFEmpty, nil
	case "not_empty":
		return domain.MFNotEmpty, nil
	case "count":
		return domain.MFCount, nil
	case "contains_value":
		return domain.MFContainsValue, nil
	case "first_eq":
		return domain.MFFirstEq, nil
	case "last_eq":
		return domain.MFLastEq, nil
	default:
		return 0, fmt.Errorf("ruledef: unknown multi-field operator %q", s)
	}
}

func toAction(ad ActionDef) (domain.Action, error) {
	kind, err := toActionKind(ad.Kind)
	if err != nil {
		return domain.Action{}, err
	}
	a := domain.Action{
		Kind:         kind,
		FieldPath:    ad.FieldPath,
		ValueExpr:    ad.ValueExpr,
		TypeName:     ad.TypeName,
		ObjectExpr:   ad.ObjectExpr,
		BindingRef:   ad.BindingRef,
		Message:      ad.Message,
		MessageExpr:  ad.MessageExpr,
		FunctionName: ad.FunctionName,
		Method:       ad.Method,
		Args:         ad.Args,
	}
	if ad.Literal != nil {
		v := toLiteral(*ad.Literal)
		a.Literal = &v
	}
	return a, nil
}

func toActionKind(s string) (domain.ActionKind, error) {
	switch s {
	case "set":
		return domain.ActionSet, nil
	case "insert":
		return domain.ActionInsert, nil
	case "retract":
		return domain.ActionRetract, nil
	case "modify":
		return domain.ActionModify, nil
	case "log":
		return domain.ActionLog, nil
	case "call_function":
		return domain.ActionCallFunction, nil
	case "method_call":
		return domain.ActionMethodCall, nil
	default:
		return 0, fmt.Errorf("ruledef: unknown action kind %q", s)
	}
}
