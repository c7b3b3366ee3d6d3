package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/ankidiff/ankidiff/internal/merge"
	"github.com/ankidiff/ankidiff/internal/model"
)

// writeSelectionArtifacts emits the differences report and the selection
// template for a selective merge. Ordinals in the template follow the
// classifier's conflict order, which the resolver uses too, so edited
// selections line up with the conflicts they resolve.
func writeSelectionArtifacts(prefix string, outcome model.MergeOutcome, set1, set2 *merge.CardSet) (string, string, error) {
	diffPath := prefix + "_differences.txt"
	selectionPath := prefix + "_selection.txt"

	var diff strings.Builder
	diff.WriteString("Differences between overlapping cards\n")
	diff.WriteString("=====================================\n\n")
	fmt.Fprintf(&diff, "Total overlapping cards: %d\n", len(outcome.CommonIdentical)+len(outcome.CommonConflicting))
	fmt.Fprintf(&diff, "Cards with differences: %d\n\n", len(outcome.CommonConflicting))

	for i, key := range outcome.CommonConflicting {
		answer1, _ := set1.Answer(key)
		answer2, _ := set2.Answer(key)
		fmt.Fprintf(&diff, "Card %d:\n", i+1)
		fmt.Fprintf(&diff, "Question: %s\n", key)
		fmt.Fprintf(&diff, "First answer: %s\n", answer1)
		fmt.Fprintf(&diff, "Second answer: %s\n\n", answer2)
	}

	if err := os.WriteFile(diffPath, []byte(diff.String()), 0644); err != nil {
		return "", "", fmt.Errorf("write differences report: %w", err)
	}

	var selection strings.Builder
	selection.WriteString("# Selection template for overlapping cards with differences\n")
	selection.WriteString("# Format: <card_number>,<selection>\n")
	selection.WriteString("# Selection can be 1 (use first file) or 2 (use second file)\n\n")
	for i := range outcome.CommonConflicting {
		fmt.Fprintf(&selection, "%d,1\n", i+1)
	}

	if err := os.WriteFile(selectionPath, []byte(selection.String()), 0644); err != nil {
		return "", "", fmt.Errorf("write selection template: %w", err)
	}

	return diffPath, selectionPath, nil
}
