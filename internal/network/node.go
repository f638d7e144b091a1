package network

import "github.com/rengine/rengine/internal/domain"

// NodeID addresses a node within a Network's arena.
type NodeID int

// AlphaNode tests single facts of FactType against Test and remembers which
// handles currently pass, the alpha memory of §4.2. When Test is empty the
// node is a pure type filter (used whenever a pattern's condition could not
// be proven self-contained and was pushed entirely to the beta join, §9).
type AlphaNode struct {
	id       NodeID
	factType string
	test     domain.Condition
	facts    map[domain.Handle]bool
	children []*BetaNode
}

// BetaKind distinguishes the four beta-node behaviors of §4.2. BetaRoot
// feeds a rule's first (always positive) pattern, turning single facts into
// one-element tokens, so that every pattern position uniformly owns exactly
// one BetaNode.
type BetaKind int

const (
	BetaRoot BetaKind = iota
	BetaJoin
	BetaNegation
	BetaExists
)

// BetaNode is a join, negation or existential node in the beta network.
// FORALL patterns compile to a BetaNegation whose rightAlpha test is the
// logical negation of the pattern's own Where (§4.2).
type BetaNode struct {
	id   NodeID
	kind BetaKind

	alias      string // right fact's alias; Negation/Exists use it only inside joinTest and never add it to the token
	rightAlpha *AlphaNode
	joinTest   domain.Condition // cross-alias predicate evaluated at join time

	// equality-index fast path for BetaJoin only (§4.4: "hash-indexed
	// joins"). indexField names a field on the new alias's fact; joinFrom*
	// names the earlier alias/field it is compared against. Left empty when
	// no simple equality join could be extracted, falling back to a full
	// scan over leftTokens bucketed under a single "*" key.
	indexField    string
	joinFromAlias string
	joinFromField string

	// leftTokens stores every token currently flowing into this node,
	// bucketed by join-key value (or "*" when unindexed). This is the
	// node's only required state: right-side arrivals/removals recompute
	// matches deterministically against it and the current alpha memory.
	leftTokens map[string]map[string]domain.Token

	// negCounts/negTokens track, per left token key, how many right facts
	// currently satisfy joinTest — used by BetaNegation/BetaExists.
	negCounts map[string]int
	negTokens map[string]domain.Token

	betaChildren     []*BetaNode
	terminalChildren []*TerminalNode
}

// TerminalNode is a rule's production node: one per disjunct (§4.3). It
// tracks the live activation for each passing token so that token
// withdrawal can find and withdraw the matching activation.
type TerminalNode struct {
	id          NodeID
	ruleName    string
	salience    int
	noLoop      bool
	activations map[string]domain.ActivationID
	tokens      map[string]domain.Token
	parent      *BetaNode // owning node, so UnloadRule can detach it (§4.3)
}

func (n *AlphaNode) ID() NodeID    { return n.id }
func (n *BetaNode) ID() NodeID     { return n.id }
func (n *TerminalNode) ID() NodeID { return n.id }

// RuleName and Salience/NoLoop are exposed for agenda construction.
func (t *TerminalNode) RuleName() string { return t.ruleName }
func (t *TerminalNode) Salience() int    { return t.salience }
func (t *TerminalNode) NoLoop() bool     { return t.noLoop }
