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
	selectivePrefix   string
	selectiveFile     string
	selectiveOutput   string
	selectiveNoUnique bool
	selectiveTimeout  time.Duration
)

// selectiveCmd represents the selective command
var selectiveCmd = &cobra.Command{
	Use:   "selective",
	Short: "Merge with per-conflict choices prepared in a file",
	Long: `Selective merging splits a manual merge into two offline steps so no
interactive session is needed:

  generate  writes a human-readable differences report plus a selection
            template listing every conflict as "<number>,1"
  apply     merges the files using an edited selection file

Edit the template between the two steps, switching lines to ",2" where the
second file's answer should win. Conflicts missing from the file keep the
first file's answer and are flagged in the report.`,
}

var selectiveGenerateCmd = &cobra.Command{
	Use:   "generate <file1> <file2>",
	Short: "Write the differences report and selection template",
	Args:  cobra.ExactArgs(2),
	RunE:  runSelectiveGenerate,
}

var selectiveApplyCmd = &cobra.Command{
	Use:   "apply <file1> <file2>",
	Short: "Merge using an edited selection file",
	Args:  cobra.ExactArgs(2),
	RunE:  runSelectiveApply,
}

func init() {
	rootCmd.AddCommand(selectiveCmd)
	selectiveCmd.AddCommand(selectiveGenerateCmd)
	selectiveCmd.AddCommand(selectiveApplyCmd)

	selectiveGenerateCmd.Flags().StringVar(&selectivePrefix, "output-prefix", "merge", "prefix for the generated _differences.txt and _selection.txt files")

	selectiveApplyCmd.Flags().StringVar(&selectiveFile, "selection", "merge_selection.txt", "edited selection file")
	selectiveApplyCmd.Flags().StringVarP(&selectiveOutput, "output", "o", "merged.txt", "merged export path")
	selectiveApplyCmd.Flags().BoolVar(&selectiveNoUnique, "no-unique", false, "drop cards that appear in only one file")
	selectiveApplyCmd.Flags().DurationVar(&selectiveTimeout, "timeout", 2*time.Minute, "overall run timeout")
}

func runSelectiveGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	diffPath, selectionPath, err := p.GenerateSelection(args[0], args[1], selectivePrefix)
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}

	fmt.Printf("✓ Wrote differences report: %s\n", diffPath)
	fmt.Printf("✓ Wrote selection template: %s\n", selectionPath)
	fmt.Printf("\nEdit the template, then apply it:\n")
	fmt.Printf("  ankidiff selective apply %s %s --selection %s\n", args[0], args[1], selectionPath)
	return nil
}

func runSelectiveApply(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), selectiveTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Merge.Policy = model.PolicyManual
	cfg.Merge.IncludeUnique = !selectiveNoUnique

	source, err := merge.LoadSelectionFile(selectiveFile)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.Merge(ctx, args[0], args[1], selectiveOutput, source)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Merged %d cards\n", report.Merge.MergedCount)
		if defaulted := report.Merge.Outcome.DefaultedCount(); defaulted > 0 {
			fmt.Fprintf(os.Stderr, "! %d conflicts defaulted to the first file's answer\n", defaulted)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, "", "", verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	fmt.Printf("✓ Wrote merged export: %s\n", selectiveOutput)
	return nil
}
