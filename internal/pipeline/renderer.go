package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ankidiff/ankidiff/internal/model"
)

// Renderer writes reports as JSON, Markdown, and a stdout summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON.
func (r *Renderer) RenderJSON(report *model.Report, path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(report)
}

// RenderMarkdown writes a human-readable report.
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	b.WriteString("# Card Comparison Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&b, "- First:  `%s` (%d cards)\n", report.First.Path, report.First.CardCount)
	if report.Second.Path != "" {
		fmt.Fprintf(&b, "- Second: `%s` (%d cards)\n", report.Second.Path, report.Second.CardCount)
	}
	b.WriteString("\n")

	if report.Second.Path != "" {
		b.WriteString("## Classification\n\n")
		fmt.Fprintf(&b, "| Category | Count |\n|---|---|\n")
		fmt.Fprintf(&b, "| Identical | %d |\n", report.Diff.IdenticalCount)
		fmt.Fprintf(&b, "| Conflicting | %d |\n", report.Diff.ConflictCount)
		fmt.Fprintf(&b, "| Only in first | %d |\n", report.Diff.OnlyFirstCount)
		fmt.Fprintf(&b, "| Only in second | %d |\n\n", report.Diff.OnlySecond)
	}

	if len(report.Diff.Conflicts) > 0 {
		b.WriteString("## Conflicts\n\n")
		for i, conflict := range report.Diff.Conflicts {
			fmt.Fprintf(&b, "%d. **%s**\n", i+1, conflict.Question)
			fmt.Fprintf(&b, "   - First:  %s\n", conflict.FirstAnswer)
			fmt.Fprintf(&b, "   - Second: %s\n", conflict.SecondAnswer)
		}
		b.WriteString("\n")
	}

	if len(report.SimilarPairs) > 0 {
		b.WriteString("## Similar pairs\n\n")
		for i, pair := range report.SimilarPairs {
			fmt.Fprintf(&b, "%d. %.3f (%s, confidence %.2f)\n", i+1,
				pair.Result.OverallSimilarity, pair.Result.MatchType, pair.Result.Confidence)
			fmt.Fprintf(&b, "   - %s\n", pair.Card1.Question)
			fmt.Fprintf(&b, "   - %s\n", pair.Card2.Question)
		}
		b.WriteString("\n")
	}

	if len(report.Groups) > 0 {
		b.WriteString("## Similarity groups\n\n")
		for i, group := range report.Groups {
			fmt.Fprintf(&b, "### Group %d (%d cards)\n\n", i+1, len(group))
			for _, card := range group {
				fmt.Fprintf(&b, "- %s\n", card.Question)
			}
			b.WriteString("\n")
		}
	}

	if report.Merge != nil {
		b.WriteString("## Merge\n\n")
		fmt.Fprintf(&b, "- Policy: %s\n", report.Merge.Policy)
		fmt.Fprintf(&b, "- Merged cards: %d\n", report.Merge.MergedCount)
		fmt.Fprintf(&b, "- Output: `%s`\n", report.Merge.OutputPath)
		if defaulted := report.Merge.Outcome.DefaultedCount(); defaulted > 0 {
			fmt.Fprintf(&b, "- Conflicts defaulted to the first source: %d\n", defaulted)
		}
		b.WriteString("\n")
		if len(report.Merge.Outcome.Resolutions) > 0 {
			b.WriteString("### Resolutions\n\n")
			for i, resolution := range report.Merge.Outcome.Resolutions {
				note := ""
				if resolution.Defaulted {
					note = " (defaulted)"
				}
				fmt.Fprintf(&b, "%d. %s → %s%s\n", i+1, resolution.Key, resolution.Decision, note)
				if resolution.AltKey != "" {
					fmt.Fprintf(&b, "   - alternate entry: %s\n", resolution.AltKey)
				}
			}
			b.WriteString("\n")
		}
	}

	if report.LLM != nil && report.LLM.Enabled {
		b.WriteString("## Summary (LLM-generated, informational only)\n\n")
		b.WriteString(report.LLM.SummaryMD)
		b.WriteString("\n\n")
		for _, warning := range report.LLM.Warnings {
			fmt.Fprintf(&b, "> Warning: %s\n", warning)
		}
	}

	if r.includeFooter {
		b.WriteString("---\n\nGenerated by ankidiff. Classification is deterministic; review conflicts before importing.\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// RenderSummary prints the short stdout summary.
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Card Comparison Summary")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("First:  %s (%d cards)\n", report.First.Path, report.First.CardCount)
	if report.Second.Path != "" {
		fmt.Printf("Second: %s (%d cards)\n", report.Second.Path, report.Second.CardCount)
		fmt.Printf("Identical: %d  Conflicts: %d  Only-first: %d  Only-second: %d\n",
			report.Diff.IdenticalCount, report.Diff.ConflictCount,
			report.Diff.OnlyFirstCount, report.Diff.OnlySecond)
	}
	if len(report.SimilarPairs) > 0 {
		fmt.Printf("Similar pairs: %d\n", len(report.SimilarPairs))
	}
	if len(report.Groups) > 0 {
		fmt.Printf("Similarity groups: %d\n", len(report.Groups))
	}
	if report.Merge != nil {
		fmt.Printf("Merged cards: %d (policy %s", report.Merge.MergedCount, report.Merge.Policy)
		if defaulted := report.Merge.Outcome.DefaultedCount(); defaulted > 0 {
			fmt.Printf(", %d defaulted", defaulted)
		}
		fmt.Println(")")
	}
	fmt.Println()
}
