package merge

import (
	"fmt"

	"github.com/ankidiff/ankidiff/internal/model"
)

// CardSet is a keyed card collection: key is the question text, value the
// answer. Duplicate questions collapse last-write-wins during construction.
// Key order is first-appearance order so merges stay deterministic.
type CardSet struct {
	headers     map[string]string
	headerOrder []string
	keys        []string
	answers     map[string]string
}

// NewCardSet creates an empty set carrying the given header block.
func NewCardSet(headers map[string]string, headerOrder []string) *CardSet {
	set := &CardSet{
		headers: make(map[string]string, len(headers)),
		answers: make(map[string]string),
	}
	for _, key := range headerOrder {
		set.headers[key] = headers[key]
		set.headerOrder = append(set.headerOrder, key)
	}
	return set
}

// FromCards builds a keyed set from parsed cards.
func FromCards(headers map[string]string, headerOrder []string, cards []*model.Card) *CardSet {
	set := NewCardSet(headers, headerOrder)
	for _, card := range cards {
		set.Add(card.Question, card.Answer)
	}
	return set
}

// Add inserts or overwrites a card. The last write for a question wins.
func (s *CardSet) Add(question, answer string) {
	if _, exists := s.answers[question]; !exists {
		s.keys = append(s.keys, question)
	}
	s.answers[question] = answer
}

// Answer returns the answer for a question.
func (s *CardSet) Answer(question string) (string, bool) {
	answer, ok := s.answers[question]
	return answer, ok
}

// Has reports whether the question is present.
func (s *CardSet) Has(question string) bool {
	_, ok := s.answers[question]
	return ok
}

// Keys returns the questions in first-appearance order.
func (s *CardSet) Keys() []string {
	return s.keys
}

// Len returns the number of distinct questions.
func (s *CardSet) Len() int {
	return len(s.keys)
}

// Headers returns the header block.
func (s *CardSet) Headers() map[string]string {
	return s.headers
}

// HeaderOrder returns the header keys in file order.
func (s *CardSet) HeaderOrder() []string {
	return s.headerOrder
}

// Cards materializes the set back into card values, in key order.
func (s *CardSet) Cards() []*model.Card {
	cards := make([]*model.Card, 0, len(s.keys))
	for _, key := range s.keys {
		cards = append(cards, model.NewCard(key, s.answers[key]))
	}
	return cards
}

// DecisionSource supplies per-conflict decisions for the manual policy.
// Ordinal is 1-based and follows the resolver's conflict iteration order
// (first-set key order). Returning ok=false means no decision was supplied
// and the resolver falls back to use_first.
type DecisionSource interface {
	Decide(ordinal int, key, firstAnswer, secondAnswer string) (model.Decision, bool)
}

// Options configures one merge.
type Options struct {
	Policy        model.MergePolicy
	IncludeUnique bool           // include cards present on only one side (default true at the config layer)
	Source        DecisionSource // consulted only under PolicyManual
}

// Classify partitions the keys of two sets into identical, conflicting, and
// one-side-only groups. Conflict detection is exact, case-sensitive string
// inequality on answers; similarity matching plays no part in merge key
// equality. Key order follows each set's first-appearance order.
func Classify(first, second *CardSet) model.MergeOutcome {
	var outcome model.MergeOutcome
	for _, key := range first.Keys() {
		if answer2, ok := second.Answer(key); ok {
			answer1, _ := first.Answer(key)
			if answer1 != answer2 {
				outcome.CommonConflicting = append(outcome.CommonConflicting, key)
			} else {
				outcome.CommonIdentical = append(outcome.CommonIdentical, key)
			}
		} else {
			outcome.OnlyInFirst = append(outcome.OnlyInFirst, key)
		}
	}
	for _, key := range second.Keys() {
		if !first.Has(key) {
			outcome.OnlyInSecond = append(outcome.OnlyInSecond, key)
		}
	}
	return outcome
}

// Resolver merges two keyed card sets under a conflict-resolution policy.
type Resolver struct{}

// NewResolver creates a new resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve classifies the two sets and produces the merged set plus the
// outcome report. Conflict detection is exact, case-sensitive string
// inequality on answers; no normalization is applied. The merged set keeps
// the first source's headers.
func (r *Resolver) Resolve(first, second *CardSet, opts Options) (*CardSet, model.MergeOutcome, error) {
	if !opts.Policy.Valid() {
		return nil, model.MergeOutcome{}, fmt.Errorf("unknown merge policy %q", opts.Policy)
	}

	outcome := Classify(first, second)

	merged := NewCardSet(first.Headers(), first.HeaderOrder())

	for _, key := range outcome.CommonIdentical {
		answer, _ := first.Answer(key)
		merged.Add(key, answer)
	}

	for i, key := range outcome.CommonConflicting {
		answer1, _ := first.Answer(key)
		answer2, _ := second.Answer(key)

		resolution := r.decide(i+1, key, answer1, answer2, opts)
		switch resolution.Decision {
		case model.UseFirst:
			merged.Add(key, answer1)
		case model.UseSecond:
			merged.Add(key, answer2)
		case model.UseBoth:
			merged.Add(key, answer1)
			altKey := disambiguate(key, func(candidate string) bool {
				return merged.Has(candidate) || first.Has(candidate) || second.Has(candidate)
			})
			merged.Add(altKey, answer2)
			resolution.AltKey = altKey
		}
		outcome.Resolutions = append(outcome.Resolutions, resolution)
	}

	if opts.IncludeUnique {
		for _, key := range outcome.OnlyInFirst {
			answer, _ := first.Answer(key)
			merged.Add(key, answer)
		}
		for _, key := range outcome.OnlyInSecond {
			answer, _ := second.Answer(key)
			merged.Add(key, answer)
		}
	}

	return merged, outcome, nil
}

// decide resolves a single conflict per the policy. A manual conflict with
// no supplied decision defaults to use_first and is flagged, never dropped.
func (r *Resolver) decide(ordinal int, key, answer1, answer2 string, opts Options) model.Resolution {
	switch opts.Policy {
	case model.PolicyPreferFirst:
		return model.Resolution{Key: key, Decision: model.UseFirst}
	case model.PolicyPreferSecond:
		return model.Resolution{Key: key, Decision: model.UseSecond}
	default: // PolicyManual
		if opts.Source != nil {
			if decision, ok := opts.Source.Decide(ordinal, key, answer1, answer2); ok {
				return model.Resolution{Key: key, Decision: decision}
			}
		}
		return model.Resolution{Key: key, Decision: model.UseFirst, Defaulted: true}
	}
}

// disambiguate appends an " (alt)" suffix, extending it until the key
// collides with nothing else in play. The suffix contains no tab, so the
// result survives round-trip parsing as its own card.
func disambiguate(key string, taken func(string) bool) string {
	candidate := key + " (alt)"
	for n := 2; taken(candidate); n++ {
		candidate = fmt.Sprintf("%s (alt %d)", key, n)
	}
	return candidate
}
