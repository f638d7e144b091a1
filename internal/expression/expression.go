// Package expression wraps expr-lang/expr to evaluate action right-hand
// sides (Set/Insert/CallFunction expressions) against a token's bound
// aliases, with compiled-program caching so a rule's action expressions are
// parsed once regardless of how many times its activation fires.
package expression

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rengine/rengine/internal/domain"
)

// Evaluator compiles and caches expr-lang programs keyed by source text.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

func NewEvaluator() *Evaluator {
	return &Evaluator{cache: make(map[string]*vm.Program)}
}

func (e *Evaluator) getProgram(source string) (*vm.Program, error) {
	e.mu.RLock()
	p, ok := e.cache[source]
	e.mu.RUnlock()
	if ok {
		return p, nil
	}

	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, domain.NewEngineError(domain.ErrCodeRuleCompilationError, fmt.Sprintf("invalid expression %q", source), err)
	}

	e.mu.Lock()
	e.cache[source] = program
	e.mu.Unlock()
	return program, nil
}

// Run evaluates source against env and returns the raw result.
func (e *Evaluator) Run(source string, env map[string]any) (any, error) {
	program, err := e.getProgram(source)
	if err != nil {
		return nil, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, domain.NewEngineError(domain.ErrCodeTypeError, fmt.Sprintf("error evaluating %q", source), err)
	}
	return out, nil
}

// RunValue evaluates source and converts the result to a domain.Value.
func (e *Evaluator) RunValue(source string, env map[string]any) (domain.Value, error) {
	out, err := e.Run(source, env)
	if err != nil {
		return domain.Value{}, err
	}
	return domain.FromNative(out), nil
}

// RunBool evaluates source and requires a boolean result.
func (e *Evaluator) RunBool(source string, env map[string]any) (bool, error) {
	out, err := e.Run(source, env)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, domain.NewEngineError(domain.ErrCodeTypeError, fmt.Sprintf("expression %q did not return a boolean", source), nil)
	}
	return b, nil
}

// Env builds an expr-lang environment from a token's bound aliases, each
// exposed as a native map/scalar under its alias name (without the leading
// "$"), plus any extra globals the caller supplies (e.g. function bindings).
func Env(bindings map[string]domain.Value, extra map[string]any) map[string]any {
	env := make(map[string]any, len(bindings)+len(extra))
	for alias, v := range bindings {
		env[alias] = v.Native()
	}
	for k, v := range extra {
		env[k] = v
	}
	return env
}
