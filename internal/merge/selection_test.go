package merge

import (
	"strings"
	"testing"

	"github.com/ankidiff/ankidiff/internal/model"
)

func TestParseSelections_Basic(t *testing.T) {
	input := `# Selection template
# Format: <card_number>,<selection>

1,1
2,2
3,1
`
	selections, err := ParseSelections(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSelections failed: %v", err)
	}

	want := map[int]int{1: 1, 2: 2, 3: 1}
	if len(selections) != len(want) {
		t.Fatalf("Expected %d selections, got %d", len(want), len(selections))
	}
	for ordinal, choice := range want {
		if selections[ordinal] != choice {
			t.Errorf("Ordinal %d: expected %d, got %d", ordinal, choice, selections[ordinal])
		}
	}
}

func TestParseSelections_WhitespaceTolerant(t *testing.T) {
	selections, err := ParseSelections(strings.NewReader("  1 , 2  \n"))
	if err != nil {
		t.Fatalf("ParseSelections failed: %v", err)
	}
	if selections[1] != 2 {
		t.Errorf("Expected choice 2 for ordinal 1, got %d", selections[1])
	}
}

func TestParseSelections_Errors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"no comma", "1\n"},
		{"bad ordinal", "x,1\n"},
		{"bad choice", "1,3\n"},
		{"non-numeric choice", "1,first\n"},
	}
	for _, tc := range cases {
		if _, err := ParseSelections(strings.NewReader(tc.input)); err == nil {
			t.Errorf("%s: expected error for %q", tc.name, tc.input)
		}
	}
}

func TestSelectionSource_Decide(t *testing.T) {
	source := NewSelectionSource(map[int]int{1: 1, 2: 2})

	decision, ok := source.Decide(1, "Q", "A", "B")
	if !ok || decision != model.UseFirst {
		t.Errorf("Expected use_first for choice 1, got %s (ok=%v)", decision, ok)
	}
	decision, ok = source.Decide(2, "Q", "A", "B")
	if !ok || decision != model.UseSecond {
		t.Errorf("Expected use_second for choice 2, got %s (ok=%v)", decision, ok)
	}
	if _, ok := source.Decide(3, "Q", "A", "B"); ok {
		t.Error("Expected no decision for an unlisted ordinal")
	}
}

func TestPromptSource_Decide(t *testing.T) {
	cases := []struct {
		input   string
		want    model.Decision
		decided bool
	}{
		{"1\n", model.UseFirst, true},
		{"2\n", model.UseSecond, true},
		{"B\n", model.UseBoth, true},
		{"b\n", model.UseBoth, true},
		{"maybe\n", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		var out strings.Builder
		source := NewPromptSource(strings.NewReader(tc.input), &out)
		decision, ok := source.Decide(1, "Question?", "first", "second")
		if ok != tc.decided || decision != tc.want {
			t.Errorf("Input %q: expected (%s, %v), got (%s, %v)", tc.input, tc.want, tc.decided, decision, ok)
		}
		if !strings.Contains(out.String(), "Question?") {
			t.Errorf("Input %q: expected the conflict printed, got %q", tc.input, out.String())
		}
	}
}

func TestPromptSource_ClipsLongText(t *testing.T) {
	long := strings.Repeat("x", 300)
	var out strings.Builder
	source := NewPromptSource(strings.NewReader("1\n"), &out)
	if _, ok := source.Decide(1, long, long, long); !ok {
		t.Fatal("Expected a decision")
	}
	if strings.Contains(out.String(), strings.Repeat("x", 150)) {
		t.Error("Expected long text clipped in the prompt")
	}
}
