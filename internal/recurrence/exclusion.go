package recurrence

import (
	"sort"
	"strings"
	"time"
)

const exclusionSeparator = ","

// ExclusionSet holds canonical slot tokens that must be skipped during expansion.
// Membership is exact string equality: two tokens naming the same instant in
// different forms are different members.
type ExclusionSet struct {
	slots map[string]struct{}
}

// ParseExclusions parses comma separated slot tokens. Blank tokens are ignored.
func ParseExclusions(s string) ExclusionSet {
	set := ExclusionSet{slots: make(map[string]struct{})}
	for _, token := range strings.Split(s, exclusionSeparator) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		set.slots[token] = struct{}{}
	}
	return set
}

// Contains reports whether the canonical form of t is excluded
func (s ExclusionSet) Contains(t time.Time) bool {
	return s.ContainsToken(Canonical(t))
}

// ContainsToken reports whether token is excluded
func (s ExclusionSet) ContainsToken(token string) bool {
	_, ok := s.slots[token]
	return ok
}

// Add excludes the canonical form of t
func (s *ExclusionSet) Add(t time.Time) {
	if s.slots == nil {
		s.slots = make(map[string]struct{})
	}
	s.slots[Canonical(t)] = struct{}{}
}

// Len returns the number of excluded slots
func (s ExclusionSet) Len() int {
	return len(s.slots)
}

// String serializes the set in sorted order for storage
func (s ExclusionSet) String() string {
	tokens := make([]string, 0, len(s.slots))
	for token := range s.slots {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return strings.Join(tokens, exclusionSeparator)
}
