package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ankidiff/ankidiff/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	diffJSON    string
	diffMD      string
	diffSimilar bool
	diffTimeout time.Duration
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff <file1> <file2>",
	Short: "Compare two flashcard exports and report the differences",
	Long: `Diff loads two flashcard export files and classifies every card:
- Identical in both files
- Same question with conflicting answers
- Only in the first file
- Only in the second file

With --similar it additionally runs the pairwise matcher across the two
files to surface near-duplicate cards whose questions are not exact matches.

Example:
  ankidiff diff deck_a.txt deck_b.txt
  ankidiff diff deck_a.txt deck_b.txt --json report.json --md report.md
  ankidiff diff deck_a.txt deck_b.txt --similar --min-similarity 0.7`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	// Output flags
	diffCmd.Flags().StringVar(&diffJSON, "json", "", "output JSON path (optional)")
	diffCmd.Flags().StringVar(&diffMD, "md", "", "output Markdown path (optional)")

	diffCmd.Flags().BoolVar(&diffSimilar, "similar", false, "also report near-duplicate pairs across the two files")
	diffCmd.Flags().DurationVar(&diffTimeout, "timeout", 2*time.Minute, "overall run timeout")

	addSimilarityFlags(diffCmd)
	addLLMFlags(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), diffTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Comparing: %s vs %s\n", args[0], args[1])
		fmt.Fprintf(os.Stderr, "Algorithm: %s\n", cfg.Similarity.Algorithm)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.Diff(ctx, args[0], args[1], diffSimilar)
	if err != nil {
		return fmt.Errorf("diff failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Identical cards: %d\n", report.Diff.IdenticalCount)
		fmt.Fprintf(os.Stderr, "✓ Conflicting cards: %d\n", report.Diff.ConflictCount)
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, diffJSON, diffMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
