// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package behavior

// Set is the ordered collection of behaviors owned by one bot. It
// holds at most one behavior per token. Set is not safe for concurrent
// use; the owning bot serializes access.
type Set struct {
	behaviors []Behavior
}

// NewSet builds fresh behavior instances for every token in tokens, in
// token order.
func NewSet(tokens TokenSet) *Set {
	set := &Set{}
	for _, token := range tokens.Tokens() {
		behavior, err := New(token)
		if err != nil {
			continue
		}
		set.Add(behavior)
	}
	return set
}

// Add appends behavior unless one with the same token is present.
func (s *Set) Add(behavior Behavior) bool {
	if s.Has(behavior.Token()) {
		return false
	}
	s.behaviors = append(s.behaviors, behavior)
	return true
}

// Remove takes the behavior with token out of the set and returns it.
// token is normalized first.
func (s *Set) Remove(token string) (Behavior, bool) {
	token = NormalizeToken(token)
	for i, behavior := range s.behaviors {
		if behavior.Token() == token {
			s.behaviors = append(s.behaviors[:i:i], s.behaviors[i+1:]...)
			return behavior, true
		}
	}
	return nil, false
}

// Has reports whether a behavior with token is in the set.
func (s *Set) Has(token string) bool {
	token = NormalizeToken(token)
	for _, behavior := range s.behaviors {
		if behavior.Token() == token {
			return true
		}
	}
	return false
}

// Behaviors returns a copy of the behaviors in order.
func (s *Set) Behaviors() []Behavior {
	return append([]Behavior(nil), s.behaviors...)
}

// Names returns the behavior names in order.
func (s *Set) Names() []string {
	names := make([]string, len(s.behaviors))
	for i, behavior := range s.behaviors {
		names[i] = behavior.Name()
	}
	return names
}

// Len returns the number of behaviors.
func (s *Set) Len() int { return len(s.behaviors) }
