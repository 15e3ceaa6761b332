package service

import (
	"math/rand"
	"strings"
)

// Follow-up priority categories, checked in order. The keyword is matched
// against the answer, the marker against the candidate follow-ups. The
// technical category uses the literal "?" marker carried by generic technical
// follow-ups in the question sets.
var followUpPriorities = []struct {
	keyword string
	marker  string
}{
	{"challenge", "challenge"},
	{"team", "team"},
	{"goal", "goal"},
	{"problem", "problem"},
	{"technical", "?"},
	{"leadership", "leadership"},
}

// FollowUpSelector decides whether to inject a follow-up question and which
// candidate to use. The random source is injectable so tests can pin it.
type FollowUpSelector struct {
	minWords    int
	probability float64
	randFloat   func() float64
}

// NewFollowUpSelector creates a selector with the given minimum answer length
// and injection probability.
func NewFollowUpSelector(minWords int, probability float64) *FollowUpSelector {
	return &FollowUpSelector{
		minWords:    minWords,
		probability: probability,
		randFloat:   rand.Float64,
	}
}

// SetRandSource overrides the random source. Intended for tests.
func (s *FollowUpSelector) SetRandSource(f func() float64) {
	s.randFloat = f
}

// ShouldAsk reports whether a follow-up should be injected for this answer:
// never for empty or short answers, otherwise with the configured probability.
func (s *FollowUpSelector) ShouldAsk(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return false
	}

	wordCount := len(strings.Fields(trimmed))
	return wordCount > s.minWords && s.randFloat() > 1-s.probability
}

// Pick returns the most relevant candidate follow-up for an answer. Keyword
// categories are checked in fixed priority order; if none match, a candidate
// is chosen uniformly at random. A single candidate is returned
// unconditionally, an empty list yields an empty string.
func (s *FollowUpSelector) Pick(answer string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	lowerAnswer := strings.ToLower(answer)
	for _, p := range followUpPriorities {
		if !strings.Contains(lowerAnswer, p.keyword) {
			continue
		}
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(c), p.marker) {
				return c
			}
		}
	}

	i := int(s.randFloat() * float64(len(candidates)))
	if i >= len(candidates) {
		i = len(candidates) - 1
	}
	return candidates[i]
}
