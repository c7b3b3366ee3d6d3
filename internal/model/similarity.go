package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
)

// Algorithm selects the similarity scoring strategy.
type Algorithm string

const (
	AlgorithmSequence    Algorithm = "sequence"    // Ratcliff/Obershelp matching-block ratio
	AlgorithmJaccard     Algorithm = "jaccard"     // token set intersection over union
	AlgorithmCosine      Algorithm = "cosine"      // term-frequency vector cosine
	AlgorithmLevenshtein Algorithm = "levenshtein" // 1 - edit_distance/max_len
	AlgorithmCombined    Algorithm = "combined"    // fixed weighted blend of the four
)

// Valid reports whether the algorithm name is one of the known variants.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmSequence, AlgorithmJaccard, AlgorithmCosine, AlgorithmLevenshtein, AlgorithmCombined:
		return true
	}
	return false
}

// MatchType is the coarse similarity tier assigned to a comparison.
type MatchType string

const (
	MatchExact     MatchType = "exact"
	MatchSimilar   MatchType = "similar"
	MatchPartial   MatchType = "partial"
	MatchDifferent MatchType = "different"
)

// weightTolerance is the allowed deviation of question_weight+answer_weight from 1.0.
const weightTolerance = 1e-3

// SimilarityConfig configures similarity comparisons. It is validated once at
// construction and never mutated; invalid values fail construction, never a
// comparison mid-batch.
type SimilarityConfig struct {
	Algorithm         Algorithm `json:"algorithm" yaml:"algorithm"`
	ExactThreshold    float64   `json:"exact_threshold" yaml:"exact_threshold"`
	SimilarThreshold  float64   `json:"similar_threshold" yaml:"similar_threshold"`
	PartialThreshold  float64   `json:"partial_threshold" yaml:"partial_threshold"`
	QuestionWeight    float64   `json:"question_weight" yaml:"question_weight"`
	AnswerWeight      float64   `json:"answer_weight" yaml:"answer_weight"`
	CaseSensitive     bool      `json:"case_sensitive" yaml:"case_sensitive"`
	IgnoreHTML        bool      `json:"ignore_html" yaml:"ignore_html"`
	IgnorePunctuation bool      `json:"ignore_punctuation" yaml:"ignore_punctuation"`
}

// NewSimilarityConfig validates cfg and returns it unchanged on success.
func NewSimilarityConfig(cfg SimilarityConfig) (SimilarityConfig, error) {
	if err := cfg.Validate(); err != nil {
		return SimilarityConfig{}, err
	}
	return cfg, nil
}

// Validate checks every construction-time invariant and reports the specific
// one violated.
func (c SimilarityConfig) Validate() error {
	if !c.Algorithm.Valid() {
		return fmt.Errorf("unknown similarity algorithm %q", c.Algorithm)
	}
	for _, t := range []struct {
		name  string
		value float64
	}{
		{"exact_threshold", c.ExactThreshold},
		{"similar_threshold", c.SimilarThreshold},
		{"partial_threshold", c.PartialThreshold},
		{"question_weight", c.QuestionWeight},
		{"answer_weight", c.AnswerWeight},
	} {
		if t.value < 0.0 || t.value > 1.0 {
			return fmt.Errorf("%s must be between 0.0 and 1.0, got %g", t.name, t.value)
		}
	}
	if c.ExactThreshold < c.SimilarThreshold || c.SimilarThreshold < c.PartialThreshold {
		return fmt.Errorf("thresholds must satisfy exact (%g) >= similar (%g) >= partial (%g)",
			c.ExactThreshold, c.SimilarThreshold, c.PartialThreshold)
	}
	if diff := math.Abs(c.QuestionWeight + c.AnswerWeight - 1.0); diff > weightTolerance {
		return fmt.Errorf("question_weight (%g) + answer_weight (%g) must equal 1.0",
			c.QuestionWeight, c.AnswerWeight)
	}
	return nil
}

// DefaultSimilarityConfig returns the standard comparison configuration.
// Callers hold and pass this value explicitly; there is no package-level
// mutable default.
func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		Algorithm:         AlgorithmSequence,
		ExactThreshold:    1.0,
		SimilarThreshold:  0.8,
		PartialThreshold:  0.5,
		QuestionWeight:    0.6,
		AnswerWeight:      0.4,
		CaseSensitive:     false,
		IgnoreHTML:        true,
		IgnorePunctuation: true,
	}
}

// SimilarityResult is the outcome of comparing two cards. It is a pure value,
// produced fresh per comparison; every score is within [0,1].
type SimilarityResult struct {
	QuestionSimilarity float64                `json:"question_similarity"`
	AnswerSimilarity   float64                `json:"answer_similarity"`
	OverallSimilarity  float64                `json:"overall_similarity"`
	MatchType          MatchType              `json:"match_type"`
	Confidence         float64                `json:"confidence"`
	AlgorithmData      map[string]interface{} `json:"algorithm_data,omitempty"`
}

// UserAction is an explicit decision recorded on a similar pair.
type UserAction string

const (
	ActionAccept  UserAction = "accept"
	ActionReject  UserAction = "reject"
	ActionPending UserAction = "pending"
)

// SimilarCardPair couples two cards with their similarity result. Both cards
// carry the pair's ID in their similarity metadata so the latest match is
// discoverable from either side.
type SimilarCardPair struct {
	ID         string            `json:"id"`
	Card1      *Card             `json:"card1"`
	Card2      *Card             `json:"card2"`
	Result     SimilarityResult  `json:"similarity_result"`
	UserAction UserAction        `json:"user_action,omitempty"`
	Notes      string            `json:"notes,omitempty"`
}

// NewSimilarCardPair creates a pair and records the match on both cards.
func NewSimilarCardPair(card1, card2 *Card, result SimilarityResult) *SimilarCardPair {
	pair := &SimilarCardPair{
		ID:         PairID(card1, card2),
		Card1:      card1,
		Card2:      card2,
		Result:     result,
		UserAction: ActionPending,
	}
	card1.SetMatch(pair.ID, result.OverallSimilarity, result.AlgorithmData)
	card2.SetMatch(pair.ID, result.OverallSimilarity, result.AlgorithmData)
	return pair
}

// PairID derives a stable identifier for a card pair.
func PairID(card1, card2 *Card) string {
	hash := sha256.Sum256([]byte(card1.Question + "\x1f" + card1.Answer + "\x1f" + card2.Question + "\x1f" + card2.Answer))
	return "pair_" + hex.EncodeToString(hash[:8])
}

// Accept marks the pair as a confirmed match.
func (p *SimilarCardPair) Accept(notes string) {
	p.UserAction = ActionAccept
	p.Notes = notes
	p.Card1.MarkReviewed()
	p.Card2.MarkReviewed()
}

// Reject marks the pair as a false match.
func (p *SimilarCardPair) Reject(notes string) {
	p.UserAction = ActionReject
	p.Notes = notes
	p.Card1.MarkRejected()
	p.Card2.MarkRejected()
}

// IsHighQuality reports whether both similarity and confidence are high.
func (p *SimilarCardPair) IsHighQuality() bool {
	return p.Result.OverallSimilarity > 0.8 && p.Result.Confidence > 0.8
}

func (p *SimilarCardPair) String() string {
	return fmt.Sprintf("SimilarCardPair(similarity=%.3f, type=%s)", p.Result.OverallSimilarity, p.Result.MatchType)
}
