package merge

import (
	"strings"
	"testing"

	"github.com/ankidiff/ankidiff/internal/model"
)

func setFrom(pairs ...[2]string) *CardSet {
	set := NewCardSet(nil, nil)
	for _, pair := range pairs {
		set.Add(pair[0], pair[1])
	}
	return set
}

func TestCardSet_Add_LastWriteWins(t *testing.T) {
	set := setFrom([2]string{"Q1", "old"}, [2]string{"Q1", "new"})

	if set.Len() != 1 {
		t.Fatalf("Expected 1 key, got %d", set.Len())
	}
	answer, _ := set.Answer("Q1")
	if answer != "new" {
		t.Errorf("Expected last write to win, got %q", answer)
	}
}

func TestCardSet_Keys_FirstAppearanceOrder(t *testing.T) {
	set := setFrom([2]string{"B", "1"}, [2]string{"A", "2"}, [2]string{"B", "3"}, [2]string{"C", "4"})

	keys := set.Keys()
	want := []string{"B", "A", "C"}
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Key %d: expected %q, got %q", i, want[i], keys[i])
		}
	}
}

func TestClassify_Basic(t *testing.T) {
	first := setFrom(
		[2]string{"Q1", "same"},
		[2]string{"Q2", "first answer"},
		[2]string{"Q3", "only here"},
	)
	second := setFrom(
		[2]string{"Q1", "same"},
		[2]string{"Q2", "second answer"},
		[2]string{"Q4", "only there"},
	)

	outcome := Classify(first, second)

	if len(outcome.CommonIdentical) != 1 || outcome.CommonIdentical[0] != "Q1" {
		t.Errorf("Expected Q1 identical, got %v", outcome.CommonIdentical)
	}
	if len(outcome.CommonConflicting) != 1 || outcome.CommonConflicting[0] != "Q2" {
		t.Errorf("Expected Q2 conflicting, got %v", outcome.CommonConflicting)
	}
	if len(outcome.OnlyInFirst) != 1 || outcome.OnlyInFirst[0] != "Q3" {
		t.Errorf("Expected Q3 only in first, got %v", outcome.OnlyInFirst)
	}
	if len(outcome.OnlyInSecond) != 1 || outcome.OnlyInSecond[0] != "Q4" {
		t.Errorf("Expected Q4 only in second, got %v", outcome.OnlyInSecond)
	}
}

func TestClassify_ExactStringInequality(t *testing.T) {
	// Conflict detection is raw string comparison: case and markup count.
	first := setFrom([2]string{"Q1", "Paris"})
	second := setFrom([2]string{"Q1", "paris"})

	outcome := Classify(first, second)
	if len(outcome.CommonConflicting) != 1 {
		t.Errorf("Expected case difference to conflict, got %v", outcome)
	}
}

func TestResolver_Resolve_PreferFirst(t *testing.T) {
	first := setFrom([2]string{"Q1", "A"}, [2]string{"Q2", "shared"})
	second := setFrom([2]string{"Q1", "B"}, [2]string{"Q2", "shared"})

	merged, outcome, err := NewResolver().Resolve(first, second, Options{
		Policy:        model.PolicyPreferFirst,
		IncludeUnique: true,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	answer, _ := merged.Answer("Q1")
	if answer != "A" {
		t.Errorf("Expected first answer kept, got %q", answer)
	}
	if len(outcome.Resolutions) != 1 {
		t.Fatalf("Expected 1 resolution, got %d", len(outcome.Resolutions))
	}
	if outcome.Resolutions[0].Decision != model.UseFirst || outcome.Resolutions[0].Defaulted {
		t.Errorf("Expected explicit use_first, got %+v", outcome.Resolutions[0])
	}
}

func TestResolver_Resolve_PreferSecond(t *testing.T) {
	first := setFrom([2]string{"Q1", "A"})
	second := setFrom([2]string{"Q1", "B"})

	merged, _, err := NewResolver().Resolve(first, second, Options{
		Policy:        model.PolicyPreferSecond,
		IncludeUnique: true,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	answer, _ := merged.Answer("Q1")
	if answer != "B" {
		t.Errorf("Expected second answer kept, got %q", answer)
	}
}

func TestResolver_Resolve_ManualWithSelections(t *testing.T) {
	first := setFrom([2]string{"Q1", "A1"}, [2]string{"Q2", "A2"})
	second := setFrom([2]string{"Q1", "B1"}, [2]string{"Q2", "B2"})

	source := NewSelectionSource(map[int]int{1: 2})

	merged, outcome, err := NewResolver().Resolve(first, second, Options{
		Policy:        model.PolicyManual,
		IncludeUnique: true,
		Source:        source,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	answer, _ := merged.Answer("Q1")
	if answer != "B1" {
		t.Errorf("Expected selected second answer for Q1, got %q", answer)
	}

	// Q2 has no selection: defaults to the first answer and is flagged.
	answer, _ = merged.Answer("Q2")
	if answer != "A2" {
		t.Errorf("Expected defaulted first answer for Q2, got %q", answer)
	}
	if outcome.DefaultedCount() != 1 {
		t.Errorf("Expected 1 defaulted resolution, got %d", outcome.DefaultedCount())
	}
	if !outcome.Resolutions[1].Defaulted {
		t.Errorf("Expected the Q2 resolution flagged, got %+v", outcome.Resolutions[1])
	}
}

func TestResolver_Resolve_UseBothAddsAltCard(t *testing.T) {
	first := setFrom([2]string{"Q1", "A"})
	second := setFrom([2]string{"Q1", "B"})

	merged, outcome, err := NewResolver().Resolve(first, second, Options{
		Policy:        model.PolicyManual,
		IncludeUnique: true,
		Source:        NewPromptSource(strings.NewReader("B\n"), &strings.Builder{}),
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	answer, _ := merged.Answer("Q1")
	if answer != "A" {
		t.Errorf("Expected original key to keep the first answer, got %q", answer)
	}
	alt, ok := merged.Answer("Q1 (alt)")
	if !ok || alt != "B" {
		t.Errorf("Expected alt card with second answer, got %q (ok=%v)", alt, ok)
	}
	if outcome.Resolutions[0].AltKey != "Q1 (alt)" {
		t.Errorf("Expected alt key recorded, got %q", outcome.Resolutions[0].AltKey)
	}
}

func TestResolver_Resolve_AltKeyCollision(t *testing.T) {
	// "Q1 (alt)" already exists as a real card, so the alt lands on "Q1 (alt 2)".
	first := setFrom([2]string{"Q1", "A"}, [2]string{"Q1 (alt)", "existing"})
	second := setFrom([2]string{"Q1", "B"})

	merged, outcome, err := NewResolver().Resolve(first, second, Options{
		Policy:        model.PolicyManual,
		IncludeUnique: true,
		Source:        NewPromptSource(strings.NewReader("B\n"), &strings.Builder{}),
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	existing, _ := merged.Answer("Q1 (alt)")
	if existing != "existing" {
		t.Errorf("Expected the real card untouched, got %q", existing)
	}
	alt, ok := merged.Answer("Q1 (alt 2)")
	if !ok || alt != "B" {
		t.Errorf("Expected alt on Q1 (alt 2), got %q (ok=%v)", alt, ok)
	}
	if outcome.Resolutions[0].AltKey != "Q1 (alt 2)" {
		t.Errorf("Expected recorded alt key Q1 (alt 2), got %q", outcome.Resolutions[0].AltKey)
	}
}

func TestResolver_Resolve_ExcludeUnique(t *testing.T) {
	first := setFrom([2]string{"shared", "x"}, [2]string{"only first", "y"})
	second := setFrom([2]string{"shared", "x"}, [2]string{"only second", "z"})

	merged, _, err := NewResolver().Resolve(first, second, Options{
		Policy:        model.PolicyPreferFirst,
		IncludeUnique: false,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if merged.Len() != 1 {
		t.Errorf("Expected only the shared card, got %d cards", merged.Len())
	}
	if merged.Has("only first") || merged.Has("only second") {
		t.Error("Expected unique cards excluded")
	}
}

func TestResolver_Resolve_KeepsFirstHeaders(t *testing.T) {
	first := FromCards(
		map[string]string{"separator": "tab", "html": "true"},
		[]string{"separator", "html"},
		[]*model.Card{model.NewCard("Q1", "A")},
	)
	second := FromCards(
		map[string]string{"separator": "comma"},
		[]string{"separator"},
		[]*model.Card{model.NewCard("Q1", "A")},
	)

	merged, _, err := NewResolver().Resolve(first, second, Options{
		Policy:        model.PolicyPreferFirst,
		IncludeUnique: true,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if merged.Headers()["separator"] != "tab" {
		t.Errorf("Expected first source headers, got %v", merged.Headers())
	}
	if len(merged.HeaderOrder()) != 2 {
		t.Errorf("Expected header order preserved, got %v", merged.HeaderOrder())
	}
}

func TestResolver_Resolve_UnknownPolicy(t *testing.T) {
	if _, _, err := NewResolver().Resolve(setFrom(), setFrom(), Options{Policy: "coin_flip"}); err == nil {
		t.Error("Expected error for unknown policy")
	}
}
