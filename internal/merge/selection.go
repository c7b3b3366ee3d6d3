package merge

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ankidiff/ankidiff/internal/model"
)

// SelectionSource decides conflicts from a pre-edited selection file:
// one `ordinal,choice` line per conflict, choice 1 for the first source and
// 2 for the second. `#`-prefixed and blank lines are ignored.
type SelectionSource struct {
	selections map[int]int
}

// NewSelectionSource wraps already-parsed selections.
func NewSelectionSource(selections map[int]int) *SelectionSource {
	return &SelectionSource{selections: selections}
}

// LoadSelectionFile reads a selection file from disk.
func LoadSelectionFile(path string) (*SelectionSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open selection file: %w", err)
	}
	defer func() { _ = file.Close() }()

	selections, err := ParseSelections(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewSelectionSource(selections), nil
}

// ParseSelections parses selection lines from a reader.
func ParseSelections(r io.Reader) (map[int]int, error) {
	selections := make(map[int]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ordinalStr, choiceStr, found := strings.Cut(line, ",")
		if !found {
			return nil, fmt.Errorf("line %d: expected ordinal,choice, got %q", lineNo, line)
		}
		ordinal, err := strconv.Atoi(strings.TrimSpace(ordinalStr))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad ordinal %q", lineNo, ordinalStr)
		}
		choice, err := strconv.Atoi(strings.TrimSpace(choiceStr))
		if err != nil || (choice != 1 && choice != 2) {
			return nil, fmt.Errorf("line %d: choice must be 1 or 2, got %q", lineNo, choiceStr)
		}
		selections[ordinal] = choice
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan selections: %w", err)
	}
	return selections, nil
}

// Decide implements DecisionSource.
func (s *SelectionSource) Decide(ordinal int, key, firstAnswer, secondAnswer string) (model.Decision, bool) {
	choice, ok := s.selections[ordinal]
	if !ok {
		return "", false
	}
	if choice == 2 {
		return model.UseSecond, true
	}
	return model.UseFirst, true
}

// PromptSource decides conflicts interactively: it prints each conflict to
// out and reads 1, 2, or B (both as separate cards) from in. Anything else
// counts as no decision and falls back to the resolver's default.
type PromptSource struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPromptSource creates an interactive decision source.
func NewPromptSource(in io.Reader, out io.Writer) *PromptSource {
	return &PromptSource{in: bufio.NewScanner(in), out: out}
}

// Decide implements DecisionSource.
func (p *PromptSource) Decide(ordinal int, key, firstAnswer, secondAnswer string) (model.Decision, bool) {
	fmt.Fprintf(p.out, "\nConflict %d:\n", ordinal)
	fmt.Fprintf(p.out, "Question: %s\n", clip(key))
	fmt.Fprintf(p.out, "First answer:  %s\n", clip(firstAnswer))
	fmt.Fprintf(p.out, "Second answer: %s\n", clip(secondAnswer))
	fmt.Fprintf(p.out, "Choose (1 for first, 2 for second, B for both as separate cards): ")

	if !p.in.Scan() {
		return "", false
	}
	switch strings.ToUpper(strings.TrimSpace(p.in.Text())) {
	case "1":
		return model.UseFirst, true
	case "2":
		return model.UseSecond, true
	case "B":
		return model.UseBoth, true
	default:
		fmt.Fprintln(p.out, "Invalid choice, keeping the first answer.")
		return "", false
	}
}

func clip(s string) string {
	if len(s) <= 100 {
		return s
	}
	return s[:100] + "..."
}
