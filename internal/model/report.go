package model

import "time"

// Report is the complete comparison report for two export files. The same
// structure backs the diff, similar, and merge commands; sections not
// produced by a command stay empty.
type Report struct {
	First       SourceInfo `json:"first"`
	Second      SourceInfo `json:"second"`
	GeneratedAt time.Time  `json:"generated_at"`

	Diff         DiffSummary        `json:"diff"`
	SimilarPairs []*SimilarCardPair `json:"similar_pairs,omitempty"`
	Groups       [][]*Card          `json:"groups,omitempty"`
	Merge        *MergeSummary      `json:"merge,omitempty"`

	LLM *LLMSummary `json:"llm,omitempty"` // optional, never affects classification
}

// SourceInfo describes one input export file.
type SourceInfo struct {
	Path      string            `json:"path"`
	Headers   map[string]string `json:"headers,omitempty"`
	CardCount int               `json:"card_count"`
}

// DiffSummary is the key-level classification of the two sources.
type DiffSummary struct {
	IdenticalCount int        `json:"identical_count"`
	ConflictCount  int        `json:"conflict_count"`
	OnlyFirstCount int        `json:"only_first_count"`
	OnlySecond     int        `json:"only_second_count"`
	Conflicts      []Conflict `json:"conflicts,omitempty"`
}

// Conflict is one question present in both sources with differing answers.
type Conflict struct {
	Question     string `json:"question"`
	FirstAnswer  string `json:"first_answer"`
	SecondAnswer string `json:"second_answer"`
}

// MergeSummary records the merge performed and where the output went.
type MergeSummary struct {
	Policy      MergePolicy  `json:"policy"`
	Outcome     MergeOutcome `json:"outcome"`
	MergedCount int          `json:"merged_count"`
	OutputPath  string       `json:"output_path,omitempty"`
}

// LLMSummary contains the optional generated summary. It is produced after
// all classification is complete and never feeds back into it.
type LLMSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
