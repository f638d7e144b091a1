package network

import (
	"fmt"

	"github.com/rengine/rengine/internal/domain"
)

// evalCondition tests cond against env, a map from bound alias to the fact
// currently bound to it (§4.2/§4.3: the discrimination network evaluates
// conditions by pattern-matching on the condition-tree variant).
func evalCondition(cond domain.Condition, env map[string]*domain.Fact) (bool, error) {
	if cond.IsEmpty() {
		return true, nil
	}
	switch cond.Kind {
	case domain.CondPredicate:
		return evalPredicate(cond.Predicate, env)
	case domain.CondMultiField:
		return evalMultiField(cond.MultiField, env)
	case domain.CondGroup:
		if cond.Negated() {
			r, err := evalCondition(cond.Children[0], env)
			if err != nil {
				return false, err
			}
			return !r, nil
		}
		switch cond.GroupKind {
		case domain.GroupAnd:
			for _, ch := range cond.Children {
				r, err := evalCondition(ch, env)
				if err != nil {
					return false, err
				}
				if !r {
					return false, nil
				}
			}
			return true, nil
		case domain.GroupOr:
			for _, ch := range cond.Children {
				r, err := evalCondition(ch, env)
				if err != nil {
					return false, err
				}
				if r {
					return true, nil
				}
			}
			return false, nil
		}
	}
	return true, nil
}

func bindingErr(alias string) error {
	return domain.NewEngineError(domain.ErrCodeInvariantViolated, fmt.Sprintf("alias %q not bound while evaluating condition", alias), nil)
}

func evalPredicate(p *domain.Predicate, env map[string]*domain.Fact) (bool, error) {
	lf, ok := env[p.Alias]
	if !ok {
		return false, bindingErr(p.Alias)
	}
	lv, err := domain.ResolvePath(lf.Data, p.Field)
	if err != nil {
		return false, err
	}

	var rv domain.Value
	if p.RHS.IsLiteral {
		rv = p.RHS.Literal
	} else {
		rf, ok := env[p.RHS.Alias]
		if !ok {
			return false, bindingErr(p.RHS.Alias)
		}
		rv, err = domain.ResolvePath(rf.Data, p.RHS.Field)
		if err != nil {
			return false, err
		}
	}

	switch p.Op {
	case domain.OpEq:
		return lv.Equal(rv), nil
	case domain.OpNeq:
		return !lv.Equal(rv), nil
	case domain.OpLt, domain.OpLte, domain.OpGt, domain.OpGte:
		c, err := lv.Compare(rv)
		if err != nil {
			return false, err
		}
		switch p.Op {
		case domain.OpLt:
			return c < 0, nil
		case domain.OpLte:
			return c <= 0, nil
		case domain.OpGt:
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	case domain.OpIn:
		arr, ok := rv.AsArray()
		if !ok {
			return false, domain.NewEngineError(domain.ErrCodeTypeError, "in operator requires an array right-hand side", nil)
		}
		for _, item := range arr {
			if lv.Equal(item) {
				return true, nil
			}
		}
		return false, nil
	case domain.OpContains:
		arr, ok := lv.AsArray()
		if !ok {
			return false, domain.NewEngineError(domain.ErrCodeTypeError, "contains operator requires an array left-hand side", nil)
		}
		for _, item := range arr {
			if item.Equal(rv) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, domain.NewEngineError(domain.ErrCodeTypeError, fmt.Sprintf("unknown operator %q", p.Op), nil)
	}
}

func evalMultiField(m *domain.MultiFieldCond, env map[string]*domain.Fact) (bool, error) {
	f, ok := env[m.Alias]
	if !ok {
		return false, bindingErr(m.Alias)
	}
	fv, err := domain.ResolvePath(f.Data, m.Field)
	if err != nil {
		return false, err
	}
	arr, ok := fv.AsArray()
	if !ok {
		return false, domain.NewEngineError(domain.ErrCodeTypeError, fmt.Sprintf("field %q is not an array", m.Field), nil)
	}

	switch m.Op {
	case domain.MFEmpty:
		return len(arr) == 0, nil
	case domain.MFNotEmpty:
		return len(arr) != 0, nil
	case domain.MFCount:
		n := len(arr)
		var c int
		switch {
		case n < m.CountN:
			c = -1
		case n > m.CountN:
			c = 1
		}
		switch m.CountOp {
		case domain.OpEq:
			return c == 0, nil
		case domain.OpNeq:
			return c != 0, nil
		case domain.OpLt:
			return c < 0, nil
		case domain.OpLte:
			return c <= 0, nil
		case domain.OpGt:
			return c > 0, nil
		case domain.OpGte:
			return c >= 0, nil
		default:
			return false, domain.NewEngineError(domain.ErrCodeTypeError, "unsupported count comparison operator", nil)
		}
	case domain.MFContainsValue:
		for _, item := range arr {
			if item.Equal(m.Value) {
				return true, nil
			}
		}
		return false, nil
	case domain.MFFirstEq:
		if len(arr) == 0 {
			return false, nil
		}
		return arr[0].Equal(m.Value), nil
	case domain.MFLastEq:
		if len(arr) == 0 {
			return false, nil
		}
		return arr[len(arr)-1].Equal(m.Value), nil
	default:
		return false, domain.NewEngineError(domain.ErrCodeTypeError, "unknown multi-field operator", nil)
	}
}
