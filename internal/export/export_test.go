package export

import (
	"path/filepath"
	"strings"
	"testing"
)

const sampleExport = "#separator:tab\n#html:true\nWhat is Go?\tA programming language\nCapital of France\tParis\n"

func TestParse_Basic(t *testing.T) {
	parsed, err := Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(parsed.Cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(parsed.Cards))
	}
	if parsed.Cards[0].Question != "What is Go?" || parsed.Cards[0].Answer != "A programming language" {
		t.Errorf("First card parsed wrong: %+v", parsed.Cards[0])
	}
	if parsed.Headers["separator"] != "tab" || parsed.Headers["html"] != "true" {
		t.Errorf("Headers parsed wrong: %v", parsed.Headers)
	}
	if len(parsed.HeaderOrder) != 2 || parsed.HeaderOrder[0] != "separator" {
		t.Errorf("Header order parsed wrong: %v", parsed.HeaderOrder)
	}
	if len(parsed.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", parsed.Warnings)
	}
}

func TestParse_SkipsMalformedLines(t *testing.T) {
	input := "good question\tgood answer\nline without any tab\nanother\tcard\n"
	parsed, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(parsed.Cards) != 2 {
		t.Errorf("Expected 2 cards, got %d", len(parsed.Cards))
	}
	if len(parsed.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %v", parsed.Warnings)
	}
	if !strings.Contains(parsed.Warnings[0], "line 2") {
		t.Errorf("Expected warning to carry the line number, got %q", parsed.Warnings[0])
	}
}

func TestParse_BlankLinesAndEmptyInput(t *testing.T) {
	parsed, err := Parse(strings.NewReader("\n\n  \n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed.Cards) != 0 || len(parsed.Warnings) != 0 {
		t.Errorf("Expected empty result, got %d cards, %v", len(parsed.Cards), parsed.Warnings)
	}
}

func TestParse_HeaderWithoutColon(t *testing.T) {
	parsed, err := Parse(strings.NewReader("#notaheader\nq\ta\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed.Warnings) != 1 {
		t.Errorf("Expected a warning for the malformed header, got %v", parsed.Warnings)
	}
	if len(parsed.Cards) != 1 {
		t.Errorf("Expected the card still parsed, got %d", len(parsed.Cards))
	}
}

func TestParse_AnswerWithExtraTabs(t *testing.T) {
	// Only the first tab splits; the rest belongs to the answer.
	parsed, err := Parse(strings.NewReader("q\ta\twith\ttabs\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.Cards[0].Answer != "a\twith\ttabs" {
		t.Errorf("Expected answer to keep later tabs, got %q", parsed.Cards[0].Answer)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	parsed, err := Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var buf strings.Builder
	if err := Write(&buf, parsed.Headers, parsed.HeaderOrder, parsed.Cards); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.String() != sampleExport {
		t.Errorf("Round trip changed the file:\nwant %q\ngot  %q", sampleExport, buf.String())
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.txt")

	parsed, err := Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := Save(path, parsed.Headers, parsed.HeaderOrder, parsed.Cards); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Path != path {
		t.Errorf("Expected path %q recorded, got %q", path, loaded.Path)
	}
	if len(loaded.Cards) != 2 {
		t.Errorf("Expected 2 cards after reload, got %d", len(loaded.Cards))
	}

	info := loaded.Info()
	if info.CardCount != 2 || info.Path != path {
		t.Errorf("Info wrong: %+v", info)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("Expected error for a missing file")
	}
}
