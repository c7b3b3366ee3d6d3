package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ankidiff/ankidiff/internal/merge"
	"github.com/ankidiff/ankidiff/internal/model"
	"github.com/ankidiff/ankidiff/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	mergeOutput    string
	mergePolicy    string
	mergeSelection string
	mergeNoUnique  bool
	mergeJSON      string
	mergeMD        string
	mergeTimeout   time.Duration
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge <file1> <file2>",
	Short: "Merge two flashcard exports into one file",
	Long: `Merge combines two flashcard export files. Cards with the same question
and answer are kept once; cards unique to either file are carried over.
Cards that share a question but disagree on the answer are conflicts,
resolved by the chosen policy:

  prefer_first   keep the first file's answer (default)
  prefer_second  keep the second file's answer
  manual         ask per conflict, or read answers from --selection

Under manual policy a selection file (see 'ankidiff selective generate')
answers conflicts non-interactively; conflicts it leaves out fall back to
the first file's answer and are flagged in the report.

Example:
  ankidiff merge deck_a.txt deck_b.txt -o merged.txt
  ankidiff merge deck_a.txt deck_b.txt -o merged.txt --policy prefer_second
  ankidiff merge deck_a.txt deck_b.txt -o merged.txt --policy manual --selection merge_selection.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.txt", "merged export path")
	mergeCmd.Flags().StringVar(&mergePolicy, "policy", string(model.PolicyPreferFirst), "conflict policy (prefer_first, prefer_second, manual)")
	mergeCmd.Flags().StringVar(&mergeSelection, "selection", "", "selection file answering conflicts (implies --policy manual)")
	mergeCmd.Flags().BoolVar(&mergeNoUnique, "no-unique", false, "drop cards that appear in only one file")
	mergeCmd.Flags().StringVar(&mergeJSON, "json", "", "output JSON report path (optional)")
	mergeCmd.Flags().StringVar(&mergeMD, "md", "", "output Markdown report path (optional)")
	mergeCmd.Flags().DurationVar(&mergeTimeout, "timeout", 2*time.Minute, "overall run timeout")

	addLLMFlags(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), mergeTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	policy := model.MergePolicy(mergePolicy)
	if mergeSelection != "" {
		policy = model.PolicyManual
	}
	if !policy.Valid() {
		return fmt.Errorf("unknown merge policy %q (supported: prefer_first, prefer_second, manual)", mergePolicy)
	}
	cfg.Merge.Policy = policy
	cfg.Merge.IncludeUnique = !mergeNoUnique

	var source merge.DecisionSource
	if policy == model.PolicyManual {
		if mergeSelection != "" {
			source, err = merge.LoadSelectionFile(mergeSelection)
			if err != nil {
				return err
			}
		} else {
			source = merge.NewPromptSource(os.Stdin, os.Stderr)
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Merging: %s + %s -> %s\n", args[0], args[1], mergeOutput)
		fmt.Fprintf(os.Stderr, "Policy: %s\n", policy)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.Merge(ctx, args[0], args[1], mergeOutput, source)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Merged %d cards\n", report.Merge.MergedCount)
		fmt.Fprintf(os.Stderr, "✓ Resolved %d conflicts\n", report.Diff.ConflictCount)
		if defaulted := report.Merge.Outcome.DefaultedCount(); defaulted > 0 {
			fmt.Fprintf(os.Stderr, "! %d conflicts defaulted to the first file's answer\n", defaulted)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, mergeJSON, mergeMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	fmt.Printf("✓ Wrote merged export: %s\n", mergeOutput)
	return nil
}
