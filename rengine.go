// Package rengine is a forward-chaining RETE rule engine: a discrimination
// network over a content-addressable fact store, a LEX conflict-resolution
// agenda and a logical truth-maintenance layer, wired together behind this
// root-package facade.
package rengine

import (
	"errors"
	"fmt"
	"time"

	"github.com/rengine/rengine/internal/compiler"
	"github.com/rengine/rengine/internal/domain"
	"github.com/rengine/rengine/internal/infrastructure/monitoring"
	"github.com/rengine/rengine/internal/network"
	"github.com/rengine/rengine/internal/tms"
	"github.com/rengine/rengine/pkg/ruledef"
)

func newTracker() *tms.Tracker { return tms.New() }

// InsertFact adds a new fact to working memory and propagates it through
// the discrimination network, creating or withdrawing activations as
// needed. It never fails (§4.1).
func (e *Engine) InsertFact(factType string, data Value) Handle {
	f, events, warnings := e.prop.Insert(factType, data, domain.SourceExplicit, 0)
	e.observers.NotifyFactInserted(f)
	e.processEvents(events, warnings, nil)
	return f.Handle
}

// RetractFact removes a fact from working memory. Retracting an
// already-unknown handle is a no-op (§4.1).
func (e *Engine) RetractFact(h Handle) {
	f, ok := e.store.Get(h)
	if !ok {
		return
	}
	events, warnings := e.prop.Retract(h)
	e.observers.NotifyFactRetracted(f)
	e.tracker.Forget(h)
	e.processEvents(events, warnings, nil)
}

// ModifyFact replaces a fact's data in place, implemented as retract-then-
// insert at the network level while keeping the same handle (§4.1 design
// latitude).
func (e *Engine) ModifyFact(h Handle, data Value) (*Fact, error) {
	f, events, warnings := e.prop.Modify(h, data)
	if f == nil {
		return nil, domain.UnknownHandleError(h)
	}
	e.processEvents(events, warnings, nil)
	return f, nil
}

// GetFact returns the live fact bound to handle, if any.
func (e *Engine) GetFact(h Handle) (*Fact, bool) { return e.store.Get(h) }

// GetFactsByType returns every live fact of the given type, in insertion
// order.
func (e *Engine) GetFactsByType(factType string) []*Fact { return e.store.GetByType(factType) }

// FactCount returns the number of live facts of the given type.
func (e *Engine) FactCount(factType string) int { return e.store.Count(factType) }

// WorkingMemorySize returns the total number of live facts across all
// types.
func (e *Engine) WorkingMemorySize() int { return e.store.Len() }

// LoadFacts batch-inserts a set of fact templates tagged SourceTemplate, the
// bulk-seeding convenience described in §D.
func (e *Engine) LoadFacts(templates []ruledef.FactTemplate) []Handle {
	handles := make([]Handle, 0, len(templates))
	for _, t := range templates {
		data := domain.ObjectFromMap(nativeMapToValues(t.Data))
		f, events, warnings := e.prop.Insert(t.Type, data, domain.SourceTemplate, 0)
		e.observers.NotifyFactInserted(f)
		e.processEvents(events, warnings, nil)
		handles = append(handles, f.Handle)
	}
	return handles
}

func nativeMapToValues(m map[string]any) map[string]domain.Value {
	out := make(map[string]domain.Value, len(m))
	for k, v := range m {
		out[k] = domain.FromNative(v)
	}
	return out
}

// LoadRule compiles rule into the discrimination network and replays
// existing working memory through it, so facts inserted before the rule
// existed can still produce matches (§4.3).
func (e *Engine) LoadRule(rule domain.Rule) error {
	if _, exists := e.rules[rule.Name]; exists {
		return fmt.Errorf("rengine: rule %q is already loaded", rule.Name)
	}
	terminals, err := compiler.CompileRule(e.net, rule)
	if err != nil {
		return err
	}
	e.rules[rule.Name] = rule
	e.terminals[rule.Name] = terminals

	for _, f := range e.store.All() {
		e.net.InsertFact(f)
	}
	events, warnings := e.net.DrainEvents()
	e.processEvents(events, warnings, nil)
	e.observers.NotifyRuleLoaded(rule.Name)
	return nil
}

// UnloadRule detaches every terminal node the rule compiled to. Any
// activation it had pending is withdrawn and any facts it had logically
// derived are cascade-retracted; upstream alpha/beta nodes shared with other
// rules are left in place (§4.3).
func (e *Engine) UnloadRule(name string) error {
	terminals, ok := e.terminals[name]
	if !ok {
		return fmt.Errorf("rengine: rule %q is not loaded", name)
	}
	for _, t := range terminals {
		events := e.net.WithdrawTerminal(t)
		e.processEvents(events, nil, nil)
	}
	delete(e.terminals, name)
	delete(e.rules, name)
	e.observers.NotifyRuleUnloaded(name)
	return nil
}

// ListRules returns the name of every currently loaded rule.
func (e *Engine) ListRules() []string {
	out := make([]string, 0, len(e.rules))
	for name := range e.rules {
		out = append(out, name)
	}
	return out
}

// Reset clears all working memory and agenda state but keeps every loaded
// rule's compiled network nodes in place (§4.4).
func (e *Engine) Reset() {
	e.store.Reset()
	e.net.ResetMemory()
	e.agenda.Reset()
	e.tracker = newTracker()
}

// FireAll drains the agenda, firing the highest-priority pending activation
// repeatedly until it empties, config.MaxCycles is reached, or config.Timeout
// elapses (§4.5, §6). The timeout is only ever checked between cycles, never
// in the middle of firing an activation's actions.
func (e *Engine) FireAll() *FireReport {
	e.agenda.ClearNoLoop()
	report := &domain.FireReport{}

	var deadline time.Time
	if e.config.Timeout > 0 {
		deadline = time.Now().Add(e.config.Timeout)
	}

	for !e.agenda.Empty() {
		if e.config.MaxCycles > 0 && report.Cycles >= e.config.MaxCycles {
			report.Warnings = append(report.Warnings, "cycle limit reached with activations still pending")
			e.observers.NotifyCycleLimitReached(report.Cycles)
			break
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			report.Warnings = append(report.Warnings, "timeout reached with activations still pending")
			e.observers.NotifyCycleLimitReached(report.Cycles)
			break
		}
		act := e.agenda.Pop()
		report.Cycles++
		e.fireActivation(act, report)
	}
	return report
}

// processEvents turns a batch of discrimination-network terminal transitions
// into agenda pushes and truth-maintenance withdrawals. report is nil when
// called outside FireAll (a bare Insert/Retract/Modify/LoadRule), in which
// case evaluation warnings are logged rather than accumulated.
//
// An ErrCodeInvariantViolated warning is never one of these ordinary
// warnings: it means the network itself is in a state the compiler should
// have made impossible (an unbound join alias), so it is fatal (§7) rather
// than merely recorded — it panics instead of being folded into
// FireReport.Warnings.
func (e *Engine) processEvents(events []network.TerminalEvent, warnings []error, report *domain.FireReport) {
	for _, w := range warnings {
		var engErr *domain.EngineError
		if errors.As(w, &engErr) && engErr.Code == domain.ErrCodeInvariantViolated {
			panic(fmt.Sprintf("rengine: internal invariant violated during propagation: %v", engErr))
		}
		if report != nil {
			report.Warnings = append(report.Warnings, w.Error())
		} else {
			e.logger.Warn().Err(w).Msg("condition evaluation warning")
		}
	}
	for _, ev := range events {
		if ev.Inserted {
			id, seq := e.agenda.NewActivationID()
			act := &domain.Activation{
				ID:       id,
				RuleName: ev.Terminal.RuleName(),
				Token:    ev.Token,
				Salience: ev.Terminal.Salience(),
				NoLoop:   ev.Terminal.NoLoop(),
				State:    domain.ActivationPending,
				Seq:      seq,
			}
			if e.agenda.Push(act) {
				e.net.RecordActivation(ev.Terminal, ev.Token, act.ID)
				e.observers.NotifyActivationCreated(act)
			}
			continue
		}
		if !ev.HasActivation {
			continue
		}
		if withdrawn, stillPending := e.agenda.Withdraw(ev.Terminal.RuleName(), ev.Token); stillPending {
			e.observers.NotifyActivationWithdrawn(withdrawn)
			if report != nil {
				report.ActivationsWithdrawn++
			}
		}
		e.cascadeWithdraw(ev.ActivationID, report)
	}
}

// cascadeWithdraw retracts every fact activation logically derived, and
// recursively cascades to whatever those retractions in turn invalidate
// (§4.6).
func (e *Engine) cascadeWithdraw(activation domain.ActivationID, report *domain.FireReport) {
	for _, h := range e.tracker.Withdraw(activation) {
		f, ok := e.store.Get(h)
		if !ok {
			continue
		}
		e.observers.NotifyFactRetracted(f)
		events, warnings := e.prop.Retract(h)
		e.processEvents(events, warnings, report)
	}
}

// fireActivation runs a fired activation's action list in order, stopping
// at the first error, and folds the resulting network events back into the
// agenda (§4.5).
func (e *Engine) fireActivation(act *domain.Activation, report *domain.FireReport) {
	act.State = domain.ActivationFired
	rule, ok := e.rules[act.RuleName]
	outcome := &monitoring.ActionOutcome{}
	if ok {
		for _, action := range rule.Actions {
			outcome.ActionsRun++
			if err := e.executeAction(action, act, report); err != nil {
				outcome.Err = err
				report.Warnings = append(report.Warnings, fmt.Sprintf("rule %q: %v", act.RuleName, err))
				break
			}
		}
	}
	report.RulesFired++
	e.observers.NotifyActivationFired(act, outcome)
}
