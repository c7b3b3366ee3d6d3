package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Card represents a single flashcard: a question/answer pair plus free-form
// metadata. Question and answer are immutable once parsed; only the
// similarity metadata and merge-selection metadata change after construction.
type Card struct {
	ID         string                 `json:"id"`
	Question   string                 `json:"question"`
	Answer     string                 `json:"answer"`
	Similarity SimilarityMetadata     `json:"similarity"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewCard creates a card with a content-derived ID.
func NewCard(question, answer string) *Card {
	return &Card{
		ID:       CardID(question, answer),
		Question: question,
		Answer:   answer,
		Similarity: SimilarityMetadata{
			Status: StatusUnmatched,
		},
	}
}

// CardID derives a stable opaque identifier from card content.
func CardID(question, answer string) string {
	hash := sha256.Sum256([]byte(question + "\x1f" + answer))
	return "card_" + hex.EncodeToString(hash[:8])
}

// SetMatch records a similarity match on the card. Status moves to matched
// unless an explicit status is recorded later via MarkReviewed/MarkRejected.
func (c *Card) SetMatch(pairID string, score float64, algorithmData map[string]interface{}) {
	c.Similarity.Score = score
	c.Similarity.MatchID = pairID
	c.Similarity.Status = StatusMatched
	if algorithmData != nil {
		c.Similarity.AlgorithmData = algorithmData
	}
}

// MarkReviewed marks the card's current match as reviewed by the user.
func (c *Card) MarkReviewed() {
	c.Similarity.Status = StatusReviewed
}

// MarkRejected marks the card's current match as rejected by the user.
func (c *Card) MarkRejected() {
	c.Similarity.Status = StatusRejected
}

func (c *Card) String() string {
	return fmt.Sprintf("Card(q=%q, a=%q, score=%.2f)", truncate(c.Question, 50), truncate(c.Answer, 50), c.Similarity.Score)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// SimilarityMetadata tracks the latest similarity match recorded for a card.
// Score is always within [0,1]; status only changes through explicit matcher
// or user actions.
type SimilarityMetadata struct {
	Score         float64                `json:"score"`
	MatchID       string                 `json:"match_id,omitempty"`
	Status        SimilarityStatus       `json:"status"`
	AlgorithmData map[string]interface{} `json:"algorithm_data,omitempty"`
}

// SimilarityStatus is the matching state of a card.
type SimilarityStatus string

const (
	StatusUnmatched SimilarityStatus = "unmatched"
	StatusMatched   SimilarityStatus = "matched"
	StatusRejected  SimilarityStatus = "rejected"
	StatusReviewed  SimilarityStatus = "reviewed"
	StatusPending   SimilarityStatus = "pending"
)
