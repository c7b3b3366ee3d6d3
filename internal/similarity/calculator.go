package similarity

import (
	"fmt"

	"github.com/ankidiff/ankidiff/internal/cache"
	"github.com/ankidiff/ankidiff/internal/model"
	"github.com/ankidiff/ankidiff/internal/textnorm"
)

// Calculator compares cards under one validated configuration. It is safe
// for concurrent use: comparisons share no mutable state beyond the
// optional normalization cache, which is itself concurrency-safe.
type Calculator struct {
	config     model.SimilarityConfig
	normalizer *textnorm.Normalizer
	scorer     TextSimilarity
	cache      cache.Cache
	cacheSalt  string
}

// NewCalculator validates the configuration and creates a calculator.
// Configuration errors surface here and never mid-comparison.
func NewCalculator(cfg model.SimilarityConfig) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("similarity config: %w", err)
	}
	scorer, err := ForAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	return &Calculator{
		config:     cfg,
		normalizer: textnorm.New(cfg),
		scorer:     scorer,
		cacheSalt:  fmt.Sprintf("%v|%v|%v", cfg.CaseSensitive, cfg.IgnoreHTML, cfg.IgnorePunctuation),
	}, nil
}

// WithCache enables normalization memoization and returns the calculator.
func (c *Calculator) WithCache(store cache.Cache) *Calculator {
	c.cache = store
	return c
}

// Config returns the calculator's configuration.
func (c *Calculator) Config() model.SimilarityConfig {
	return c.config
}

// Compare calculates the similarity between two cards.
func (c *Calculator) Compare(card1, card2 *model.Card) model.SimilarityResult {
	q1 := c.normalize(card1.Question)
	a1 := c.normalize(card1.Answer)
	q2 := c.normalize(card2.Question)
	a2 := c.normalize(card2.Answer)

	questionSim := c.scorer.Score(q1, q2)
	answerSim := c.scorer.Score(a1, a2)

	overall := questionSim*c.config.QuestionWeight + answerSim*c.config.AnswerWeight

	return model.SimilarityResult{
		QuestionSimilarity: questionSim,
		AnswerSimilarity:   answerSim,
		OverallSimilarity:  overall,
		MatchType:          c.matchType(overall),
		Confidence:         confidence(questionSim, answerSim, overall),
		AlgorithmData: map[string]interface{}{
			"algorithm":            string(c.config.Algorithm),
			"question_processed":   q1,
			"answer_processed":     a1,
			"question_processed_2": q2,
			"answer_processed_2":   a2,
			"weights": map[string]float64{
				"question": c.config.QuestionWeight,
				"answer":   c.config.AnswerWeight,
			},
		},
	}
}

// matchType classifies an overall score against the threshold ladder,
// highest tier first.
func (c *Calculator) matchType(overall float64) model.MatchType {
	switch {
	case overall >= c.config.ExactThreshold:
		return model.MatchExact
	case overall >= c.config.SimilarThreshold:
		return model.MatchSimilar
	case overall >= c.config.PartialThreshold:
		return model.MatchPartial
	default:
		return model.MatchDifferent
	}
}

// confidence blends the overall score with how closely question and answer
// similarity agree. A high score carried by only one field is less
// trustworthy than the same score spread over both.
func confidence(questionSim, answerSim, overall float64) float64 {
	balance := 1.0 - abs(questionSim-answerSim)
	value := overall*0.7 + balance*0.3
	if value < 0.0 {
		return 0.0
	}
	if value > 1.0 {
		return 1.0
	}
	return value
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (c *Calculator) normalize(text string) string {
	if c.cache == nil {
		return c.normalizer.Normalize(text)
	}
	key := cache.Key(c.cacheSalt, text)
	if normalized, ok := c.cache.Get(key); ok {
		return normalized
	}
	normalized := c.normalizer.Normalize(text)
	c.cache.Set(key, normalized)
	return normalized
}
