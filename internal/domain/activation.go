package domain

// ActivationID uniquely identifies an activation for the life of the
// engine, used by the logical dependency tracker to tag facts a rule
// derived (§4.6).
type ActivationID uint64

// ActivationState is the activation lifecycle described in §4.5.
type ActivationState int

const (
	ActivationPending ActivationState = iota
	ActivationFired
	ActivationWithdrawn
)

// Activation is one agenda entry: a rule instantiation against a specific
// token, ordered by (Salience desc, seq asc) for LEX conflict resolution
// (§4.5).
type Activation struct {
	ID       ActivationID
	RuleName string
	Token    Token
	Salience int
	NoLoop   bool
	State    ActivationState
	// Seq is a monotonically increasing counter assigned at creation time,
	// the secondary LEX sort key; ID breaks any remaining tie.
	Seq uint64
}

// FireReport summarizes one FireAll call (§4.5, §7).
type FireReport struct {
	RulesFired           int
	Cycles               int
	ActivationsWithdrawn int
	Warnings             []string
}
