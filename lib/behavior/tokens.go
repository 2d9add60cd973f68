// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package behavior

import "strings"

// TokenSet is an insertion-ordered set of behavior tokens.
type TokenSet struct {
	tokens []string
	seen   map[string]struct{}
}

// ParseTokens splits a comma-separated behavior string into a
// TokenSet. Tokens are trimmed and lowercased; empty tokens are
// skipped; repeats collapse. Tokens that select no behavior are left
// out of the set and returned separately so the caller can report them.
func ParseTokens(value string) (TokenSet, []string) {
	var set TokenSet
	var unknown []string
	for _, field := range strings.Split(value, ",") {
		token := NormalizeToken(field)
		if token == "" {
			continue
		}
		if !Known(token) {
			unknown = append(unknown, token)
			continue
		}
		set.Add(token)
	}
	return set, unknown
}

// Add inserts token and reports whether it was not already present.
func (s *TokenSet) Add(token string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, exists := s.seen[token]; exists {
		return false
	}
	s.seen[token] = struct{}{}
	s.tokens = append(s.tokens, token)
	return true
}

// Contains reports whether token is in the set.
func (s TokenSet) Contains(token string) bool {
	_, ok := s.seen[token]
	return ok
}

// Tokens returns the tokens in first-insertion order.
func (s TokenSet) Tokens() []string {
	return append([]string(nil), s.tokens...)
}

// Len returns the number of distinct tokens.
func (s TokenSet) Len() int { return len(s.tokens) }

// String joins the tokens with commas, the form ParseTokens accepts.
func (s TokenSet) String() string { return strings.Join(s.tokens, ",") }
