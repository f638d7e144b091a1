// Package network implements the discrimination network described in §4.2:
// alpha nodes/memories and beta join/negation/existential nodes, terminating
// in one terminal node per rule disjunct. Node sharing is keyed by the
// structural identity of the condition each node tests (§4.3).
package network

import (
	"fmt"
	"strconv"

	"github.com/rengine/rengine/internal/domain"
)

// TerminalEvent is emitted whenever a token starts or stops passing a
// terminal node. The propagation engine drains these after each top-level
// fact mutation and turns them into activation lifecycle transitions.
type TerminalEvent struct {
	Terminal     *TerminalNode
	Token        domain.Token
	Inserted     bool // true: token now passes; false: token was withdrawn
	ActivationID domain.ActivationID
	HasActivation bool
}

// Resolver looks up the current fact bound to a handle.
type Resolver func(domain.Handle) (*domain.Fact, bool)

// Network owns every alpha/beta/terminal node and the sharing indices that
// let two rules with identical sub-patterns reuse the same nodes.
type Network struct {
	resolve Resolver

	alphaByKey map[string]*AlphaNode
	alphaByType map[string][]*AlphaNode

	betaByKey map[string]*BetaNode

	nextID   int
	terminals []*TerminalNode

	pending  []TerminalEvent
	warnings []error
}

func NewNetwork(resolve Resolver) *Network {
	return &Network{
		resolve:     resolve,
		alphaByKey:  make(map[string]*AlphaNode),
		alphaByType: make(map[string][]*AlphaNode),
		betaByKey:   make(map[string]*BetaNode),
	}
}

func (n *Network) allocID() NodeID {
	n.nextID++
	return NodeID(n.nextID)
}

// GetOrCreateAlpha returns the shared alpha node for (factType, test),
// creating it if this is the first rule to need it.
func (n *Network) GetOrCreateAlpha(factType string, test domain.Condition) *AlphaNode {
	key := factType + "|" + test.Key()
	if existing, ok := n.alphaByKey[key]; ok {
		return existing
	}
	node := &AlphaNode{
		id:       n.allocID(),
		factType: factType,
		test:     test,
		facts:    make(map[domain.Handle]bool),
	}
	n.alphaByKey[key] = node
	n.alphaByType[factType] = append(n.alphaByType[factType], node)
	return node
}

func betaKey(kind BetaKind, leftKey string, rightAlpha *AlphaNode, alias string, joinTest domain.Condition) string {
	return fmt.Sprintf("%d|%s|%d|%s|%s", kind, leftKey, rightAlpha.id, alias, joinTest.Key())
}

// GetOrCreateBetaRoot returns the shared root beta node binding alias to
// facts passing rightAlpha.
func (n *Network) GetOrCreateBetaRoot(rightAlpha *AlphaNode, alias string) *BetaNode {
	key := betaKey(BetaRoot, "-", rightAlpha, alias, domain.And())
	if existing, ok := n.betaByKey[key]; ok {
		return existing
	}
	node := &BetaNode{
		id:         n.allocID(),
		kind:       BetaRoot,
		alias:      alias,
		rightAlpha: rightAlpha,
	}
	n.betaByKey[key] = node
	rightAlpha.children = append(rightAlpha.children, node)
	return node
}

// GetOrCreateBetaJoin returns the shared join node extending left with
// facts passing rightAlpha under alias, subject to joinTest. indexField,
// joinFromAlias and joinFromField describe an extracted equality join key;
// pass empty strings when none could be extracted.
func (n *Network) GetOrCreateBetaJoin(left *BetaNode, rightAlpha *AlphaNode, alias string, joinTest domain.Condition, indexField, joinFromAlias, joinFromField string) *BetaNode {
	key := betaKey(BetaJoin, strconv.Itoa(int(left.id)), rightAlpha, alias, joinTest) +
		"|" + indexField + "=" + joinFromAlias + "." + joinFromField
	if existing, ok := n.betaByKey[key]; ok {
		return existing
	}
	node := &BetaNode{
		id:            n.allocID(),
		kind:          BetaJoin,
		alias:         alias,
		rightAlpha:    rightAlpha,
		joinTest:      joinTest,
		indexField:    indexField,
		joinFromAlias: joinFromAlias,
		joinFromField: joinFromField,
		leftTokens:    make(map[string]map[string]domain.Token),
	}
	n.betaByKey[key] = node
	left.betaChildren = append(left.betaChildren, node)
	rightAlpha.children = append(rightAlpha.children, node)
	return node
}

// GetOrCreateBetaGate returns the shared negation (kind==BetaNegation) or
// existential (kind==BetaExists) node gating left on whether any fact
// passing rightAlpha satisfies joinTest.
func (n *Network) GetOrCreateBetaGate(kind BetaKind, left *BetaNode, rightAlpha *AlphaNode, alias string, joinTest domain.Condition) *BetaNode {
	key := betaKey(kind, strconv.Itoa(int(left.id)), rightAlpha, alias, joinTest)
	if existing, ok := n.betaByKey[key]; ok {
		return existing
	}
	node := &BetaNode{
		id:         n.allocID(),
		kind:       kind,
		alias:      alias,
		rightAlpha: rightAlpha,
		joinTest:   joinTest,
		negCounts:  make(map[string]int),
		negTokens:  make(map[string]domain.Token),
	}
	n.betaByKey[key] = node
	left.betaChildren = append(left.betaChildren, node)
	rightAlpha.children = append(rightAlpha.children, node)
	return node
}

// CreateTerminal attaches a fresh (never shared) terminal node to parent.
func (n *Network) CreateTerminal(parent *BetaNode, ruleName string, salience int, noLoop bool) *TerminalNode {
	t := &TerminalNode{
		id:          n.allocID(),
		ruleName:    ruleName,
		salience:    salience,
		noLoop:      noLoop,
		activations: make(map[string]domain.ActivationID),
		tokens:      make(map[string]domain.Token),
		parent:      parent,
	}
	parent.terminalChildren = append(parent.terminalChildren, t)
	n.terminals = append(n.terminals, t)
	return t
}

// Terminals returns every terminal node in the network, for introspection.
func (n *Network) Terminals() []*TerminalNode { return n.terminals }

// WithdrawTerminal synthesizes a withdrawal TerminalEvent for every token
// currently passing t, then detaches t from the network so it stops
// receiving propagation. Used by Engine.UnloadRule (§4.3): every activation
// the rule has pending or fired must still unwind through the normal
// withdrawal/cascade path even though the rule itself is going away.
func (n *Network) WithdrawTerminal(t *TerminalNode) []TerminalEvent {
	events := make([]TerminalEvent, 0, len(t.tokens))
	for key, tok := range t.tokens {
		ev := TerminalEvent{Terminal: t, Token: tok, Inserted: false}
		if id, ok := t.activations[key]; ok {
			ev.ActivationID = id
			ev.HasActivation = true
		}
		events = append(events, ev)
	}
	t.tokens = make(map[string]domain.Token)
	t.activations = make(map[string]domain.ActivationID)
	n.RemoveTerminal(t)
	return events
}

// RemoveTerminal detaches t from its parent beta node and from the
// network's terminal list, so it no longer receives token propagation. Used
// by Engine.UnloadRule (§4.3); shared upstream alpha/beta nodes are left in
// place for any other rule still using them, the node-removal simplification
// recorded in DESIGN.md.
func (n *Network) RemoveTerminal(t *TerminalNode) {
	if t.parent != nil {
		kept := t.parent.terminalChildren[:0]
		for _, tc := range t.parent.terminalChildren {
			if tc != t {
				kept = append(kept, tc)
			}
		}
		t.parent.terminalChildren = kept
	}
	kept := n.terminals[:0]
	for _, tn := range n.terminals {
		if tn != t {
			kept = append(kept, tn)
		}
	}
	n.terminals = kept
}

// ResetMemory clears every alpha/beta/terminal memory while keeping node
// structure and sharing intact, used by Engine.Reset to drop all working
// memory without forcing rules to be recompiled (§4.4).
func (n *Network) ResetMemory() {
	for _, a := range n.alphaByKey {
		a.facts = make(map[domain.Handle]bool)
	}
	for _, b := range n.betaByKey {
		if b.leftTokens != nil {
			b.leftTokens = make(map[string]map[string]domain.Token)
		}
		if b.negCounts != nil {
			b.negCounts = make(map[string]int)
			b.negTokens = make(map[string]domain.Token)
		}
	}
	for _, t := range n.terminals {
		t.activations = make(map[string]domain.ActivationID)
		t.tokens = make(map[string]domain.Token)
	}
	n.pending = nil
	n.warnings = nil
}

// RecordActivation remembers which ActivationID was assigned to the token
// currently passing a terminal, so a later withdrawal can report it back.
func (n *Network) RecordActivation(t *TerminalNode, tok domain.Token, id domain.ActivationID) {
	t.activations[tok.Key()] = id
}

// --- propagation ---

func passesGate(kind BetaKind, count int) bool {
	if kind == BetaNegation {
		return count == 0
	}
	return count > 0 // BetaExists
}

func factFieldKey(f *domain.Fact, field string) (string, error) {
	v, err := domain.ResolvePath(f.Data, field)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (n *Network) tokenFieldKey(tok domain.Token, alias, field string) (string, error) {
	h, ok := tok.Get(alias)
	if !ok {
		return "", domain.NewEngineError(domain.ErrCodeInvariantViolated, fmt.Sprintf("join alias %q not bound in token", alias), nil)
	}
	f, ok := n.resolve(h)
	if !ok {
		return "", domain.UnknownHandleError(h)
	}
	return factFieldKey(f, field)
}

func (n *Network) tokenEnv(tok domain.Token, extraAlias string, extraFact *domain.Fact) (map[string]*domain.Fact, error) {
	env := make(map[string]*domain.Fact, tok.Len()+1)
	aliases := tok.Aliases()
	handles := tok.Handles()
	for i, alias := range aliases {
		f, ok := n.resolve(handles[i])
		if !ok {
			return nil, domain.UnknownHandleError(handles[i])
		}
		env[alias] = f
	}
	if extraAlias != "" && extraFact != nil {
		env[extraAlias] = extraFact
	}
	return env, nil
}

// warn records a condition-evaluation error alongside the batch of terminal
// events being built. Most warnings here are ordinary (a TypeError from a
// malformed "in"/"contains" operand) and stay non-fatal; the caller escalates
// any ErrCodeInvariantViolated among them to a panic (§7: network-level
// errors are fatal, they indicate a compiler bug), since an unbound join
// alias can only happen if the compiler built a beta node referencing an
// alias no upstream node ever binds.
func (n *Network) warn(err error) {
	if err != nil {
		n.warnings = append(n.warnings, err)
	}
}

// InsertFact fans a newly inserted fact out through every alpha node
// registered for its type.
func (n *Network) InsertFact(f *domain.Fact) {
	for _, alpha := range n.alphaByType[f.Type] {
		env := map[string]*domain.Fact{anyAlias(alpha.test): f}
		ok, err := evalCondition(alpha.test, env)
		if err != nil {
			n.warn(err)
			continue
		}
		if ok && !alpha.facts[f.Handle] {
			alpha.facts[f.Handle] = true
			n.alphaFactChanged(alpha, f, true)
		}
	}
}

// RetractFact fans a retracted fact's removal out through every alpha node
// that currently holds it.
func (n *Network) RetractFact(f *domain.Fact) {
	for _, alpha := range n.alphaByType[f.Type] {
		if alpha.facts[f.Handle] {
			delete(alpha.facts, f.Handle)
			n.alphaFactChanged(alpha, f, false)
		}
	}
}

// anyAlias extracts the single alias an alpha test is allowed to reference
// (alpha tests are always self-contained, §9); empty conditions reference
// no alias, so any placeholder works since evalCondition short-circuits.
func anyAlias(test domain.Condition) string {
	refs := test.References()
	for a := range refs {
		return a
	}
	return "_"
}

func (n *Network) alphaFactChanged(alpha *AlphaNode, f *domain.Fact, inserted bool) {
	for _, child := range alpha.children {
		switch child.kind {
		case BetaRoot:
			tok := domain.EmptyToken().Extend(child.alias, f.Handle)
			n.propagateToChildren(child, tok, inserted)
		case BetaJoin:
			key := "*"
			if child.indexField != "" {
				k, err := factFieldKey(f, child.indexField)
				if err != nil {
					n.warn(err)
					continue
				}
				key = k
			}
			for _, tok := range child.leftTokens[key] {
				env, err := n.tokenEnv(tok, child.alias, f)
				if err != nil {
					n.warn(err)
					continue
				}
				ok, err := evalCondition(child.joinTest, env)
				if err != nil {
					n.warn(err)
					continue
				}
				if ok {
					extended := tok.Extend(child.alias, f.Handle)
					n.propagateToChildren(child, extended, inserted)
				}
			}
		case BetaNegation, BetaExists:
			for key, tok := range child.negTokens {
				env, err := n.tokenEnv(tok, child.alias, f)
				if err != nil {
					n.warn(err)
					continue
				}
				ok, err := evalCondition(child.joinTest, env)
				if err != nil {
					n.warn(err)
					continue
				}
				if !ok {
					continue
				}
				before := child.negCounts[key]
				after := before
				if inserted {
					after++
				} else {
					after--
				}
				child.negCounts[key] = after
				passBefore := passesGate(child.kind, before)
				passAfter := passesGate(child.kind, after)
				if passBefore != passAfter {
					n.propagateToChildren(child, tok, passAfter)
				}
			}
		}
	}
}

// onLeftToken delivers a token produced by a parent beta node into child.
func (n *Network) onLeftToken(child *BetaNode, tok domain.Token, inserted bool) {
	switch child.kind {
	case BetaJoin:
		key := "*"
		if child.indexField != "" {
			k, err := n.tokenFieldKey(tok, child.joinFromAlias, child.joinFromField)
			if err != nil {
				n.warn(err)
				return
			}
			key = k
		}
		if inserted {
			bucket, ok := child.leftTokens[key]
			if !ok {
				bucket = make(map[string]domain.Token)
				child.leftTokens[key] = bucket
			}
			bucket[tok.Key()] = tok
		} else if bucket, ok := child.leftTokens[key]; ok {
			delete(bucket, tok.Key())
		}
		for h := range child.rightAlpha.facts {
			f, ok := n.resolve(h)
			if !ok {
				continue
			}
			if child.indexField != "" {
				// the extracted equality is not part of joinTest, so it is
				// checked here against the right fact's index value.
				fk, err := factFieldKey(f, child.indexField)
				if err != nil || fk != key {
					continue
				}
			}
			env, err := n.tokenEnv(tok, child.alias, f)
			if err != nil {
				n.warn(err)
				continue
			}
			ok2, err := evalCondition(child.joinTest, env)
			if err != nil {
				n.warn(err)
				continue
			}
			if ok2 {
				extended := tok.Extend(child.alias, h)
				n.propagateToChildren(child, extended, inserted)
			}
		}
	case BetaNegation, BetaExists:
		key := tok.Key()
		if inserted {
			count := 0
			for h := range child.rightAlpha.facts {
				f, ok := n.resolve(h)
				if !ok {
					continue
				}
				env, err := n.tokenEnv(tok, child.alias, f)
				if err != nil {
					n.warn(err)
					continue
				}
				ok2, err := evalCondition(child.joinTest, env)
				if err != nil {
					n.warn(err)
					continue
				}
				if ok2 {
					count++
				}
			}
			child.negCounts[key] = count
			child.negTokens[key] = tok
			if passesGate(child.kind, count) {
				n.propagateToChildren(child, tok, true)
			}
		} else {
			before := child.negCounts[key]
			wasPass := passesGate(child.kind, before)
			delete(child.negCounts, key)
			delete(child.negTokens, key)
			if wasPass {
				n.propagateToChildren(child, tok, false)
			}
		}
	}
}

func (n *Network) propagateToChildren(node *BetaNode, tok domain.Token, inserted bool) {
	for _, bc := range node.betaChildren {
		n.onLeftToken(bc, tok, inserted)
	}
	for _, tc := range node.terminalChildren {
		n.onTerminalToken(tc, tok, inserted)
	}
}

func (n *Network) onTerminalToken(t *TerminalNode, tok domain.Token, inserted bool) {
	key := tok.Key()
	if inserted {
		if _, exists := t.tokens[key]; exists {
			return
		}
		t.tokens[key] = tok
		n.pending = append(n.pending, TerminalEvent{Terminal: t, Token: tok, Inserted: true})
	} else {
		if _, exists := t.tokens[key]; !exists {
			return
		}
		delete(t.tokens, key)
		ev := TerminalEvent{Terminal: t, Token: tok, Inserted: false}
		if id, ok := t.activations[key]; ok {
			ev.ActivationID = id
			ev.HasActivation = true
			delete(t.activations, key)
		}
		n.pending = append(n.pending, ev)
	}
}

// DrainEvents returns and clears every terminal event accumulated since the
// last call, along with any evaluation warnings raised along the way.
func (n *Network) DrainEvents() ([]TerminalEvent, []error) {
	events := n.pending
	warnings := n.warnings
	n.pending = nil
	n.warnings = nil
	return events, warnings
}

// Stats reports per-node-kind counts, a supplemented introspection feature
// (§D).
type Stats struct {
	AlphaNodes    int
	BetaJoins     int
	BetaNegations int
	BetaExists    int
	BetaRoots     int
	Terminals     int
	AlphaFacts    int
}

func (n *Network) Stats() Stats {
	var s Stats
	s.AlphaNodes = len(n.alphaByKey)
	for _, a := range n.alphaByKey {
		s.AlphaFacts += len(a.facts)
	}
	for _, b := range n.betaByKey {
		switch b.kind {
		case BetaRoot:
			s.BetaRoots++
		case BetaJoin:
			s.BetaJoins++
		case BetaNegation:
			s.BetaNegations++
		case BetaExists:
			s.BetaExists++
		}
	}
	s.Terminals = len(n.terminals)
	return s
}
