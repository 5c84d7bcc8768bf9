package bpe

import (
	"fmt"
	"sort"
)

// Reserved token IDs shared with downstream consumers.
const (
	PadID = 0
	UnkID = 1
	SOSID = 2
	EOSID = 3

	// FirstLearnedID is the ID of the first learned symbol.
	FirstLearnedID = 4
)

// Reserved token strings, indexed by their IDs.
const (
	PadToken = "<pad>"
	UnkToken = "<unk>"
	SOSToken = "<sos>"
	EOSToken = "<eos>"
)

// SpecialTokens lists the reserved tokens in ID order.
var SpecialTokens = [FirstLearnedID]string{PadToken, UnkToken, SOSToken, EOSToken}

// TokenTable maps tokens to dense integer IDs.
type TokenTable struct {
	ids    map[string]int
	tokens []string // index = ID
}

// AssignTokenIDs numbers every distinct symbol of vocab. Symbols are sorted
// byte-wise and numbered from FirstLearnedID; IDs below that belong to
// SpecialTokens. A learned symbol spelled like a special token is rejected
// with *SpecialTokenCollisionError rather than sharing an ID.
func AssignTokenIDs(vocab Vocabulary) (*TokenTable, error) {
	seen := make(map[string]struct{})
	for w := range vocab {
		for _, s := range w.Symbols() {
			seen[s] = struct{}{}
		}
	}

	for _, special := range SpecialTokens {
		if _, ok := seen[special]; ok {
			return nil, &SpecialTokenCollisionError{Symbol: special}
		}
	}

	learned := make([]string, 0, len(seen))
	for s := range seen {
		learned = append(learned, s)
	}
	sort.Strings(learned)

	tokens := make([]string, 0, FirstLearnedID+len(learned))
	tokens = append(tokens, SpecialTokens[:]...)
	tokens = append(tokens, learned...)

	return NewTokenTable(tokens)
}

// NewTokenTable builds a table where tokens[i] has ID i. It fails on
// duplicates or when the reserved prefix is missing.
func NewTokenTable(tokens []string) (*TokenTable, error) {
	if len(tokens) < FirstLearnedID {
		return nil, errMissingSpecials
	}
	ids := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		if i < FirstLearnedID && tok != SpecialTokens[i] {
			return nil, errMissingSpecials
		}
		if _, dup := ids[tok]; dup {
			return nil, fmt.Errorf("%w: %q", errDuplicateToken, tok)
		}
		ids[tok] = i
	}
	return &TokenTable{ids: ids, tokens: append([]string(nil), tokens...)}, nil
}

// ID returns the ID of tok, or UnkID and false when tok is unknown.
func (t *TokenTable) ID(tok string) (int, bool) {
	id, ok := t.ids[tok]
	if !ok {
		return UnkID, false
	}
	return id, true
}

// Token returns the token with the given ID.
func (t *TokenTable) Token(id int) (string, bool) {
	if id < 0 || id >= len(t.tokens) {
		return "", false
	}
	return t.tokens[id], true
}

// Len returns the number of tokens including the reserved ones.
func (t *TokenTable) Len() int { return len(t.tokens) }

// Tokens returns all tokens ordered by ID.
func (t *TokenTable) Tokens() []string { return append([]string(nil), t.tokens...) }

// Map returns a copy of the token to ID mapping.
func (t *TokenTable) Map() map[string]int {
	out := make(map[string]int, len(t.ids))
	for k, v := range t.ids {
		out[k] = v
	}
	return out
}
