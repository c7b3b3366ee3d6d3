package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ankidiff/ankidiff/internal/model"
	"github.com/ankidiff/ankidiff/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	similarJSON    string
	similarMD      string
	similarGroup   bool
	similarBest    int
	similarThresh  float64
	similarTimeout time.Duration
)

// similarCmd represents the similar command
var similarCmd = &cobra.Command{
	Use:   "similar <file1> [file2]",
	Short: "Find near-duplicate cards",
	Long: `Similar finds cards whose questions and answers resemble each other
without being exact matches.

With two files it compares every card in the first file against every card
in the second and reports pairs at or above --min-similarity, strongest
first. With one file and --group it partitions the file's own cards into
groups of mutually similar cards at --group-threshold.

Example:
  ankidiff similar deck_a.txt deck_b.txt --min-similarity 0.7
  ankidiff similar deck_a.txt deck_b.txt --algorithm combined
  ankidiff similar deck.txt --group --group-threshold 0.8`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().StringVar(&similarJSON, "json", "", "output JSON path (optional)")
	similarCmd.Flags().StringVar(&similarMD, "md", "", "output Markdown path (optional)")
	similarCmd.Flags().BoolVar(&similarGroup, "group", false, "group similar cards within a single file")
	similarCmd.Flags().IntVar(&similarBest, "best", 0, "report only the strongest N pairs (0 reports all above --min-similarity)")
	similarCmd.Flags().Float64Var(&similarThresh, "group-threshold", 0.8, "minimum similarity for two cards to share a group")
	similarCmd.Flags().DurationVar(&similarTimeout, "timeout", 2*time.Minute, "overall run timeout")

	addSimilarityFlags(similarCmd)
	addLLMFlags(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), similarTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	switch {
	case similarGroup:
		if len(args) != 1 {
			return fmt.Errorf("--group takes exactly one file")
		}
		report, err := p.Group(ctx, args[0], similarThresh)
		if err != nil {
			return fmt.Errorf("grouping failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Found %d similarity groups\n\n", len(report.Groups))
		}
		return p.RenderReport(report, similarJSON, similarMD, verbose)

	case len(args) == 2:
		var report *model.Report
		if similarBest > 0 {
			report, err = p.BestMatches(ctx, args[0], args[1], similarBest)
		} else {
			report, err = p.Similar(ctx, args[0], args[1], cfg.Match.MinSimilarity)
		}
		if err != nil {
			return fmt.Errorf("similarity search failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Found %d similar pairs\n\n", len(report.SimilarPairs))
		}
		return p.RenderReport(report, similarJSON, similarMD, verbose)

	default:
		return fmt.Errorf("comparing needs two files; pass --group to search within one file")
	}
}
