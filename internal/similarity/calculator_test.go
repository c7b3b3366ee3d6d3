package similarity

import (
	"math"
	"testing"
	"time"

	"github.com/ankidiff/ankidiff/internal/cache"
	"github.com/ankidiff/ankidiff/internal/model"
)

func TestNewCalculator_InvalidConfig(t *testing.T) {
	cfg := model.DefaultSimilarityConfig()
	cfg.SimilarThreshold = 0.3
	cfg.PartialThreshold = 0.5
	if _, err := NewCalculator(cfg); err == nil {
		t.Error("Expected error for similar_threshold below partial_threshold")
	}

	cfg = model.DefaultSimilarityConfig()
	cfg.QuestionWeight = 0.9
	cfg.AnswerWeight = 0.9
	if _, err := NewCalculator(cfg); err == nil {
		t.Error("Expected error for weights not summing to 1.0")
	}

	cfg = model.DefaultSimilarityConfig()
	cfg.Algorithm = "soundex"
	if _, err := NewCalculator(cfg); err == nil {
		t.Error("Expected error for unknown algorithm")
	}
}

func TestCalculator_Compare_IdenticalCards(t *testing.T) {
	calc, err := NewCalculator(model.DefaultSimilarityConfig())
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	card1 := model.NewCard("What is the capital of France?", "Paris")
	card2 := model.NewCard("What is the capital of France?", "Paris")

	result := calc.Compare(card1, card2)

	if result.OverallSimilarity != 1.0 {
		t.Errorf("Expected overall 1.0, got %g", result.OverallSimilarity)
	}
	if result.MatchType != model.MatchExact {
		t.Errorf("Expected exact match, got %s", result.MatchType)
	}
	if result.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %g", result.Confidence)
	}
}

func TestCalculator_Compare_CaseAndMarkupInsensitive(t *testing.T) {
	calc, err := NewCalculator(model.DefaultSimilarityConfig())
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	card1 := model.NewCard("<b>What is DNA?</b>", "Deoxyribonucleic acid")
	card2 := model.NewCard("what is dna", "deoxyribonucleic ACID")

	result := calc.Compare(card1, card2)
	if result.OverallSimilarity != 1.0 {
		t.Errorf("Expected 1.0 after normalization, got %g", result.OverallSimilarity)
	}
}

func TestCalculator_Compare_WeightedOverall(t *testing.T) {
	calc, err := NewCalculator(model.DefaultSimilarityConfig())
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	// Same question, completely different answer: overall = 1*0.6 + 0*0.4.
	card1 := model.NewCard("same question", "alpha beta")
	card2 := model.NewCard("same question", "zzz")

	result := calc.Compare(card1, card2)
	if result.QuestionSimilarity != 1.0 {
		t.Errorf("Expected question similarity 1.0, got %g", result.QuestionSimilarity)
	}
	if result.AnswerSimilarity >= 0.5 {
		t.Errorf("Expected low answer similarity, got %g", result.AnswerSimilarity)
	}
	want := 1.0*0.6 + result.AnswerSimilarity*0.4
	if math.Abs(result.OverallSimilarity-want) > 1e-9 {
		t.Errorf("Expected overall %g, got %g", want, result.OverallSimilarity)
	}
}

func TestCalculator_Compare_ThresholdLadder(t *testing.T) {
	cfg := model.DefaultSimilarityConfig()
	cfg.ExactThreshold = 0.95
	cfg.SimilarThreshold = 0.8
	cfg.PartialThreshold = 0.5
	calc, err := NewCalculator(cfg)
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	// Identical cards score 1.0, which clears every tier; the highest wins.
	result := calc.Compare(model.NewCard("q", "a"), model.NewCard("q", "a"))
	if result.MatchType != model.MatchExact {
		t.Errorf("Expected exact at the top of the ladder, got %s", result.MatchType)
	}

	// Same question, different answer: overall 0.6 lands in partial.
	result = calc.Compare(model.NewCard("same question", "one thing"), model.NewCard("same question", "zzzz"))
	if result.MatchType != model.MatchPartial && result.MatchType != model.MatchSimilar {
		t.Errorf("Expected partial or similar for overall %g, got %s", result.OverallSimilarity, result.MatchType)
	}

	// Nothing in common lands in different.
	result = calc.Compare(model.NewCard("aaaa", "bbbb"), model.NewCard("cccc", "dddd"))
	if result.MatchType != model.MatchDifferent {
		t.Errorf("Expected different, got %s", result.MatchType)
	}
}

func TestCalculator_Compare_ConfidencePenalizesImbalance(t *testing.T) {
	calc, err := NewCalculator(model.DefaultSimilarityConfig())
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	balanced := calc.Compare(model.NewCard("alpha beta", "gamma delta"), model.NewCard("alpha beta", "gamma delta"))
	lopsided := calc.Compare(model.NewCard("alpha beta", "gamma delta"), model.NewCard("alpha beta", "zzzz"))

	if lopsided.Confidence >= balanced.Confidence {
		t.Errorf("Expected lopsided confidence (%g) below balanced (%g)",
			lopsided.Confidence, balanced.Confidence)
	}
	if lopsided.Confidence < 0.0 || lopsided.Confidence > 1.0 {
		t.Errorf("Confidence %g outside [0,1]", lopsided.Confidence)
	}
}

func TestCalculator_Compare_AlgorithmData(t *testing.T) {
	calc, err := NewCalculator(model.DefaultSimilarityConfig())
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	result := calc.Compare(model.NewCard("Q1", "A1"), model.NewCard("Q2", "A2"))
	if result.AlgorithmData["algorithm"] != string(model.AlgorithmSequence) {
		t.Errorf("Expected algorithm recorded, got %v", result.AlgorithmData["algorithm"])
	}
	if result.AlgorithmData["question_processed"] != "q1" {
		t.Errorf("Expected processed question recorded, got %v", result.AlgorithmData["question_processed"])
	}
}

func TestCalculator_WithCache_SameResults(t *testing.T) {
	plain, err := NewCalculator(model.DefaultSimilarityConfig())
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}
	cached, err := NewCalculator(model.DefaultSimilarityConfig())
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}
	cached.WithCache(cache.NewMemoryCache(time.Minute, 2*time.Minute))

	card1 := model.NewCard("<b>What is DNA?</b>", "Deoxyribonucleic acid")
	card2 := model.NewCard("What is DNA", "deoxyribonucleic acid")

	for i := 0; i < 3; i++ {
		want := plain.Compare(card1, card2)
		got := cached.Compare(card1, card2)
		if got.OverallSimilarity != want.OverallSimilarity {
			t.Errorf("Cached overall %g differs from uncached %g", got.OverallSimilarity, want.OverallSimilarity)
		}
	}
}
