package domain

import (
	"strconv"
	"strings"
)

// Token is a partial match flowing through the beta network: an ordered
// list of fact handles bound to the aliases of the positive patterns joined
// so far. Negated/existential/universal patterns gate a token's passage but
// contribute no handle of their own (§3).
type Token struct {
	handles []Handle
	aliases []string
}

// EmptyToken is the root token fed into a rule's first pattern.
func EmptyToken() Token { return Token{} }

// Extend returns a new token with (alias, handle) appended.
func (t Token) Extend(alias string, handle Handle) Token {
	handles := make([]Handle, len(t.handles)+1)
	copy(handles, t.handles)
	handles[len(handles)-1] = handle
	aliases := make([]string, len(t.aliases)+1)
	copy(aliases, t.aliases)
	aliases[len(aliases)-1] = alias
	return Token{handles: handles, aliases: aliases}
}

// Get returns the handle bound to alias, if any.
func (t Token) Get(alias string) (Handle, bool) {
	for i, a := range t.aliases {
		if a == alias {
			return t.handles[i], true
		}
	}
	return 0, false
}

// Len reports how many positive patterns have bound a handle so far.
func (t Token) Len() int { return len(t.handles) }

// Aliases returns the alias bound at each position, in join order.
func (t Token) Aliases() []string { return t.aliases }

// Handles returns the handle bound at each position, in join order.
func (t Token) Handles() []Handle { return t.handles }

// Key returns a deterministic, hashable identity for the token, used as a
// map key throughout the network and agenda.
func (t Token) Key() string {
	var b strings.Builder
	for i, h := range t.handles {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(h), 10))
	}
	return b.String()
}
