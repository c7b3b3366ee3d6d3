// Package export reads and writes Anki export files: `#key:value` header
// lines followed by one `question<TAB>answer` line per card.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ankidiff/ankidiff/internal/model"
)

// Export is one parsed export file.
type Export struct {
	Path        string
	Headers     map[string]string
	HeaderOrder []string
	Cards       []*model.Card
	Warnings    []string
}

// Load reads and parses an export file from disk.
func Load(path string) (*Export, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer func() { _ = file.Close() }()

	parsed, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	parsed.Path = path
	return parsed, nil
}

// Parse parses export lines from a reader. Lines without a tab separator are
// not fatal: they are recorded as warnings and skipped, matching the
// garbage-in/garbage-out stance of the comparison engine.
func Parse(r io.Reader) (*Export, error) {
	parsed := &Export{
		Headers: make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			key, value, found := strings.Cut(line[1:], ":")
			if !found {
				parsed.Warnings = append(parsed.Warnings, fmt.Sprintf("line %d: header without ':': %s", lineNo, line))
				continue
			}
			if _, exists := parsed.Headers[key]; !exists {
				parsed.HeaderOrder = append(parsed.HeaderOrder, key)
			}
			parsed.Headers[key] = value
			continue
		}

		question, answer, found := strings.Cut(line, "\t")
		if !found {
			parsed.Warnings = append(parsed.Warnings, fmt.Sprintf("line %d: no tab separator: %s", lineNo, clip(line)))
			continue
		}
		parsed.Cards = append(parsed.Cards, model.NewCard(question, answer))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan export: %w", err)
	}
	return parsed, nil
}

// Write emits a complete export: headers in file order, then cards.
func Write(w io.Writer, headers map[string]string, headerOrder []string, cards []*model.Card) error {
	bw := bufio.NewWriter(w)
	for _, key := range headerOrder {
		if _, err := fmt.Fprintf(bw, "#%s:%s\n", key, headers[key]); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, card := range cards {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", card.Question, card.Answer); err != nil {
			return fmt.Errorf("write card: %w", err)
		}
	}
	return bw.Flush()
}

// Save writes a complete export file to disk.
func Save(path string, headers map[string]string, headerOrder []string, cards []*model.Card) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close export: %w", closeErr)
		}
	}()
	return Write(file, headers, headerOrder, cards)
}

// Info summarizes the export for reports.
func (e *Export) Info() model.SourceInfo {
	return model.SourceInfo{
		Path:      e.Path,
		Headers:   e.Headers,
		CardCount: len(e.Cards),
	}
}

func clip(s string) string {
	if len(s) <= 80 {
		return s
	}
	return s[:80] + "..."
}
