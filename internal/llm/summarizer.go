package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ankidiff/ankidiff/internal/model"
)

// maxPromptConflicts bounds how many conflicts are quoted in the prompt so
// large decks don't blow the context window.
const maxPromptConflicts = 25

// Summarizer turns a finished report into a short prose summary.
type Summarizer struct {
	provider Provider
	model    string
}

// NewSummarizer creates a summarizer for the configured provider.
func NewSummarizer(cfg model.LLMConfig) (*Summarizer, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, model: cfg.Model}, nil
}

// Summarize generates the summary. The prompt contains only facts already in
// the report; the instruction forbids inventing cards or counts.
func (s *Summarizer) Summarize(ctx context.Context, report *model.Report) (*model.LLMSummary, error) {
	response, err := s.provider.Complete(ctx, buildPrompt(report))
	if err != nil {
		return nil, err
	}

	summary := &model.LLMSummary{
		Enabled:   true,
		Provider:  s.provider.Name(),
		Model:     s.model,
		SummaryMD: strings.TrimSpace(response),
	}
	if summary.SummaryMD == "" {
		summary.Warnings = append(summary.Warnings, "provider returned an empty summary")
	}
	return summary, nil
}

func buildPrompt(report *model.Report) string {
	var b strings.Builder

	b.WriteString("You are summarizing a flashcard deck comparison report. ")
	b.WriteString("Use ONLY the facts below; do not invent cards, counts, or causes. ")
	b.WriteString("Write a short Markdown summary (3-6 sentences) a deck owner can act on.\n\n")

	fmt.Fprintf(&b, "First file: %s (%d cards)\n", report.First.Path, report.First.CardCount)
	if report.Second.Path != "" {
		fmt.Fprintf(&b, "Second file: %s (%d cards)\n", report.Second.Path, report.Second.CardCount)
		fmt.Fprintf(&b, "Identical: %d, conflicting: %d, only in first: %d, only in second: %d\n",
			report.Diff.IdenticalCount, report.Diff.ConflictCount,
			report.Diff.OnlyFirstCount, report.Diff.OnlySecond)
	}
	if len(report.SimilarPairs) > 0 {
		fmt.Fprintf(&b, "Similar pairs found: %d (top score %.3f)\n",
			len(report.SimilarPairs), report.SimilarPairs[0].Result.OverallSimilarity)
	}
	if len(report.Groups) > 0 {
		fmt.Fprintf(&b, "Similarity groups: %d\n", len(report.Groups))
	}
	if report.Merge != nil {
		fmt.Fprintf(&b, "Merge policy: %s, merged cards: %d, defaulted conflicts: %d\n",
			report.Merge.Policy, report.Merge.MergedCount, report.Merge.Outcome.DefaultedCount())
	}

	if len(report.Diff.Conflicts) > 0 {
		b.WriteString("\nConflicting questions:\n")
		for i, conflict := range report.Diff.Conflicts {
			if i == maxPromptConflicts {
				fmt.Fprintf(&b, "- ... and %d more\n", len(report.Diff.Conflicts)-maxPromptConflicts)
				break
			}
			fmt.Fprintf(&b, "- %s\n", conflict.Question)
		}
	}

	return b.String()
}
