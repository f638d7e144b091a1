package rengine

import (
	"fmt"
	"strings"

	"github.com/rengine/rengine/internal/domain"
	"github.com/rengine/rengine/internal/expression"
	"github.com/rengine/rengine/internal/registry"
)

// executeAction runs one right-hand-side effect of a fired activation
// (§4.5). It dispatches on Action.Kind; every branch that mutates working
// memory folds the resulting terminal events back through processEvents so
// cascading matches/withdrawals are handled uniformly whether they came from
// a host Insert or a rule's own action.
func (e *Engine) executeAction(a domain.Action, act *domain.Activation, report *domain.FireReport) error {
	switch a.Kind {
	case domain.ActionSet:
		return e.execSet(a, act.Token, report)
	case domain.ActionModify:
		return e.execModify(a, act.Token, report)
	case domain.ActionInsert:
		return e.execInsert(a, act, report)
	case domain.ActionRetract:
		return e.execRetract(a, act.Token, report)
	case domain.ActionLog:
		return e.execLog(a, act.Token)
	case domain.ActionCallFunction:
		return e.execCallFunction(a, act.Token)
	case domain.ActionMethodCall:
		return e.execMethodCall(a, act.Token)
	default:
		return domain.UnknownActionError(a.Kind)
	}
}

// tokenBindings resolves every alias in tok to the fact data currently
// bound to it, for use as an expr-lang environment.
func (e *Engine) tokenBindings(tok domain.Token) (map[string]domain.Value, error) {
	aliases, handles := tok.Aliases(), tok.Handles()
	out := make(map[string]domain.Value, len(aliases))
	for i, alias := range aliases {
		f, ok := e.store.Get(handles[i])
		if !ok {
			return nil, domain.UnknownHandleError(handles[i])
		}
		out[alias] = f.Data
	}
	return out, nil
}

// resolveFieldTarget parses an Action.FieldPath, either "$alias.field"
// (a fact bound in the token) or "Type.field" (the first live fact of that
// type in working memory), per the FieldPath doc comment on domain.Action.
func (e *Engine) resolveFieldTarget(tok domain.Token, path string) (domain.Handle, string, error) {
	if strings.HasPrefix(path, "$") {
		rest := path[1:]
		idx := strings.IndexByte(rest, '.')
		if idx < 0 {
			return 0, "", fmt.Errorf("rengine: malformed field path %q", path)
		}
		alias, field := rest[:idx], rest[idx+1:]
		h, ok := tok.Get(alias)
		if !ok {
			return 0, "", fmt.Errorf("rengine: alias %q not bound in token", alias)
		}
		return h, field, nil
	}
	idx := strings.IndexByte(path, '.')
	if idx < 0 {
		return 0, "", fmt.Errorf("rengine: malformed field path %q", path)
	}
	typeName, field := path[:idx], path[idx+1:]
	facts := e.store.GetByType(typeName)
	if len(facts) == 0 {
		return 0, "", fmt.Errorf("rengine: no live fact of type %q", typeName)
	}
	return facts[0].Handle, field, nil
}

func (e *Engine) resolveValue(valueExpr string, literal *domain.Value, tok domain.Token) (domain.Value, error) {
	if valueExpr != "" {
		bindings, err := e.tokenBindings(tok)
		if err != nil {
			return domain.Value{}, err
		}
		return e.eval.RunValue(valueExpr, expression.Env(bindings, nil))
	}
	if literal != nil {
		return *literal, nil
	}
	return domain.Value{}, fmt.Errorf("rengine: action has neither a value expression nor a literal")
}

func (e *Engine) evalArgs(exprs []string, tok domain.Token) ([]domain.Value, error) {
	bindings, err := e.tokenBindings(tok)
	if err != nil {
		return nil, err
	}
	env := expression.Env(bindings, nil)
	out := make([]domain.Value, len(exprs))
	for i, src := range exprs {
		v, err := e.eval.RunValue(src, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// execSet updates a single field on an existing fact (§4.5, §D "set"
// action).
func (e *Engine) execSet(a domain.Action, tok domain.Token, report *domain.FireReport) error {
	handle, field, err := e.resolveFieldTarget(tok, a.FieldPath)
	if err != nil {
		return err
	}
	value, err := e.resolveValue(a.ValueExpr, a.Literal, tok)
	if err != nil {
		return err
	}
	f, ok := e.store.Get(handle)
	if !ok {
		return domain.UnknownHandleError(handle)
	}
	newData := f.Data.WithField(field, value)
	_, events, warnings := e.prop.Modify(handle, newData)
	e.processEvents(events, warnings, report)
	return nil
}

// execModify wholesale-replaces the bound fact's data with the result of
// ObjectExpr, unlike Set's single-field update.
func (e *Engine) execModify(a domain.Action, tok domain.Token, report *domain.FireReport) error {
	handle, ok := tok.Get(a.BindingRef)
	if !ok {
		return fmt.Errorf("rengine: alias %q not bound in token", a.BindingRef)
	}
	bindings, err := e.tokenBindings(tok)
	if err != nil {
		return err
	}
	native, err := e.eval.Run(a.ObjectExpr, expression.Env(bindings, nil))
	if err != nil {
		return err
	}
	_, events, warnings := e.prop.Modify(handle, domain.FromNative(native))
	e.processEvents(events, warnings, report)
	return nil
}

// execInsert derives a new fact from ObjectExpr and tags it
// SourceLogicallyDerived, recording the derivation so it cascade-retracts if
// this activation is later withdrawn (§4.6).
func (e *Engine) execInsert(a domain.Action, act *domain.Activation, report *domain.FireReport) error {
	bindings, err := e.tokenBindings(act.Token)
	if err != nil {
		return err
	}
	native, err := e.eval.Run(a.ObjectExpr, expression.Env(bindings, nil))
	if err != nil {
		return err
	}
	f, events, warnings := e.prop.Insert(a.TypeName, domain.FromNative(native), domain.SourceLogicallyDerived, act.ID)
	e.tracker.RecordDerivation(act.ID, f.Handle)
	e.observers.NotifyFactInserted(f)
	e.processEvents(events, warnings, report)
	return nil
}

// execRetract retracts the fact bound to BindingRef. Already-gone is not an
// error (§4.1).
func (e *Engine) execRetract(a domain.Action, tok domain.Token, report *domain.FireReport) error {
	handle, ok := tok.Get(a.BindingRef)
	if !ok {
		return fmt.Errorf("rengine: alias %q not bound in token", a.BindingRef)
	}
	f, ok := e.store.Get(handle)
	if !ok {
		return nil
	}
	events, warnings := e.prop.Retract(handle)
	e.observers.NotifyFactRetracted(f)
	e.tracker.Forget(handle)
	e.processEvents(events, warnings, report)
	return nil
}

// execLog writes a message through the engine's logger, the rule-author's
// escape hatch for "print a line" without registering a host function.
func (e *Engine) execLog(a domain.Action, tok domain.Token) error {
	msg := a.Message
	if a.MessageExpr != "" {
		bindings, err := e.tokenBindings(tok)
		if err != nil {
			return err
		}
		out, err := e.eval.Run(a.MessageExpr, expression.Env(bindings, nil))
		if err != nil {
			return err
		}
		msg = msg + fmt.Sprint(out)
	}
	e.logger.Info().Msg(msg)
	return nil
}

// execCallFunction invokes a host-registered function for its side effects;
// its return value is not bound anywhere (§D). The function is handed a
// FactView so it can read working memory (§6 register_function) without
// being able to mutate it.
func (e *Engine) execCallFunction(a domain.Action, tok domain.Token) error {
	args, err := e.evalArgs(a.Args, tok)
	if err != nil {
		return err
	}
	_, err = e.functions.Call(a.FunctionName, args, registry.NewFactView(e.store))
	return err
}

// execMethodCall invokes a host-registered method handler against the fact
// bound to BindingRef, passing the same read-only FactView as CallFunction.
func (e *Engine) execMethodCall(a domain.Action, tok domain.Token) error {
	handle, ok := tok.Get(a.BindingRef)
	if !ok {
		return fmt.Errorf("rengine: alias %q not bound in token", a.BindingRef)
	}
	f, ok := e.store.Get(handle)
	if !ok {
		return domain.UnknownHandleError(handle)
	}
	args, err := e.evalArgs(a.Args, tok)
	if err != nil {
		return err
	}
	_, err = e.functions.CallMethod(a.Method, f.Data, args, registry.NewFactView(e.store))
	return err
}
