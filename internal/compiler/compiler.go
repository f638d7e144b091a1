// Package compiler translates a Rule's pattern chains into discrimination
// network nodes (§4.3): it normalizes each disjunct into an alpha chain plus
// a beta chain, pushing self-contained tests to the alpha level and
// extracting simple equality joins into the beta network's hash index.
package compiler

import (
	"fmt"

	"github.com/rengine/rengine/internal/domain"
	"github.com/rengine/rengine/internal/network"
)

// CompileRule builds (or reuses, via node sharing) the network nodes for
// every disjunct of rule and returns one terminal node per disjunct.
func CompileRule(net *network.Network, rule domain.Rule) ([]*network.TerminalNode, error) {
	if len(rule.Disjuncts) == 0 {
		return nil, domain.NewEngineError(domain.ErrCodeRuleCompilationError, fmt.Sprintf("rule %q has no patterns", rule.Name), nil)
	}
	terminals := make([]*network.TerminalNode, 0, len(rule.Disjuncts))
	for _, chain := range rule.Disjuncts {
		t, err := compileChain(net, chain, rule)
		if err != nil {
			return nil, err
		}
		terminals = append(terminals, t)
	}
	return terminals, nil
}

func compileChain(net *network.Network, chain []domain.Pattern, rule domain.Rule) (*network.TerminalNode, error) {
	if len(chain) == 0 {
		return nil, domain.NewEngineError(domain.ErrCodeRuleCompilationError, fmt.Sprintf("rule %q has an empty pattern chain", rule.Name), nil)
	}
	first := chain[0]
	if first.Kind != domain.PatternPositive {
		return nil, domain.NewEngineError(domain.ErrCodeRuleCompilationError, fmt.Sprintf("rule %q: the first pattern must be positive", rule.Name), nil)
	}

	alphaPart, _, alphaOnly := splitCondition(first.Where, first.Alias)
	if !alphaOnly {
		return nil, domain.NewEngineError(domain.ErrCodeRuleCompilationError, fmt.Sprintf("rule %q: first pattern's condition references an unbound alias", rule.Name), nil)
	}
	alpha := net.GetOrCreateAlpha(first.FactType, alphaPart)
	beta := net.GetOrCreateBetaRoot(alpha, first.Alias)

	for _, p := range chain[1:] {
		var err error
		beta, err = compilePattern(net, beta, p, rule)
		if err != nil {
			return nil, err
		}
	}

	return net.CreateTerminal(beta, rule.Name, rule.Salience, rule.NoLoop), nil
}

func compilePattern(net *network.Network, left *network.BetaNode, p domain.Pattern, rule domain.Rule) (*network.BetaNode, error) {
	switch p.Kind {
	case domain.PatternPositive:
		alphaPart, betaPart, alphaOnly := splitCondition(p.Where, p.Alias)
		if alphaOnly {
			rightAlpha := net.GetOrCreateAlpha(p.FactType, alphaPart)
			return net.GetOrCreateBetaJoin(left, rightAlpha, p.Alias, domain.And(), "", "", ""), nil
		}
		rightAlpha := net.GetOrCreateAlpha(p.FactType, domain.And())
		residual, indexField, joinAlias, joinField := extractEqualityJoin(betaPart, p.Alias)
		return net.GetOrCreateBetaJoin(left, rightAlpha, p.Alias, residual, indexField, joinAlias, joinField), nil

	case domain.PatternNot, domain.PatternExists:
		kind := network.BetaNegation
		if p.Kind == domain.PatternExists {
			kind = network.BetaExists
		}
		alphaPart, betaPart, alphaOnly := splitCondition(p.Where, p.Alias)
		if alphaOnly {
			rightAlpha := net.GetOrCreateAlpha(p.FactType, alphaPart)
			return net.GetOrCreateBetaGate(kind, left, rightAlpha, p.Alias, domain.And()), nil
		}
		rightAlpha := net.GetOrCreateAlpha(p.FactType, domain.And())
		return net.GetOrCreateBetaGate(kind, left, rightAlpha, p.Alias, betaPart), nil

	case domain.PatternForall:
		// FORALL(type, where) == NOT EXISTS a fact of type where NOT where.
		// Vacuously true over an empty universe falls out of the negation
		// node's own semantics (§9 design note c).
		negWhere := domain.Negate(p.Where)
		alphaPart, betaPart, alphaOnly := splitCondition(negWhere, p.Alias)
		if alphaOnly {
			rightAlpha := net.GetOrCreateAlpha(p.FactType, alphaPart)
			return net.GetOrCreateBetaGate(network.BetaNegation, left, rightAlpha, p.Alias, domain.And()), nil
		}
		rightAlpha := net.GetOrCreateAlpha(p.FactType, domain.And())
		return net.GetOrCreateBetaGate(network.BetaNegation, left, rightAlpha, p.Alias, betaPart), nil

	default:
		return nil, domain.NewEngineError(domain.ErrCodeRuleCompilationError, fmt.Sprintf("rule %q: unknown pattern kind", rule.Name), nil)
	}
}

// splitCondition partitions cond into the part that can be tested against a
// single fact of ownAlias alone (alphaPart) and the part that needs another
// bound alias (betaPart). Mixed trees are conservatively pushed whole to the
// beta level (§9): only a condition that provably touches nothing but its
// own alias is moved to the alpha node.
func splitCondition(cond domain.Condition, ownAlias string) (alphaPart, betaPart domain.Condition, alphaOnly bool) {
	refs := cond.References()
	if len(refs) == 0 {
		return cond, domain.And(), true
	}
	if len(refs) == 1 {
		if _, ok := refs[ownAlias]; ok {
			return cond, domain.And(), true
		}
	}
	return domain.And(), cond, false
}

// extractEqualityJoin looks for a top-level equality predicate comparing
// ownAlias's field against an earlier alias's field, and pulls it out into
// an indexed join key, leaving the remainder as a residual test (§4.4).
func extractEqualityJoin(cond domain.Condition, ownAlias string) (residual domain.Condition, indexField, joinFromAlias, joinFromField string) {
	if f, fa, ff, ok := equalityLeaf(cond, ownAlias); ok {
		return domain.And(), f, fa, ff
	}
	if cond.Kind == domain.CondGroup && cond.GroupKind == domain.GroupAnd && !cond.Negated() {
		for i, ch := range cond.Children {
			if f, fa, ff, ok := equalityLeaf(ch, ownAlias); ok {
				rest := make([]domain.Condition, 0, len(cond.Children)-1)
				for j, ch2 := range cond.Children {
					if j != i {
						rest = append(rest, ch2)
					}
				}
				return domain.And(rest...), f, fa, ff
			}
		}
	}
	return cond, "", "", ""
}

func equalityLeaf(c domain.Condition, ownAlias string) (ownField, otherAlias, otherField string, ok bool) {
	if c.Kind != domain.CondPredicate || c.Predicate.Op != domain.OpEq || c.Predicate.RHS.IsLiteral {
		return "", "", "", false
	}
	p := c.Predicate
	if p.Alias == ownAlias && p.RHS.Alias != ownAlias {
		return p.Field, p.RHS.Alias, p.RHS.Field, true
	}
	if p.RHS.Alias == ownAlias && p.Alias != ownAlias {
		return p.RHS.Field, p.Alias, p.Field, true
	}
	return "", "", "", false
}
