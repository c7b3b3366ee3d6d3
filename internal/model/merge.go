package model

import "fmt"

// MergePolicy selects how conflicting answers are resolved during a merge.
type MergePolicy string

const (
	PolicyPreferFirst  MergePolicy = "prefer_first"
	PolicyPreferSecond MergePolicy = "prefer_second"
	PolicyManual       MergePolicy = "manual"
)

// Valid reports whether the policy is one of the known strategies.
func (p MergePolicy) Valid() bool {
	switch p {
	case PolicyPreferFirst, PolicyPreferSecond, PolicyManual:
		return true
	}
	return false
}

// Decision is the per-conflict resolution choice.
type Decision string

const (
	UseFirst  Decision = "use_first"
	UseSecond Decision = "use_second"
	UseBoth   Decision = "use_both_as_alt"
)

// Resolution records how one conflicting key was resolved. Defaulted is set
// when the decision source supplied no answer and use_first was applied.
type Resolution struct {
	Key       string   `json:"key"`
	Decision  Decision `json:"decision"`
	Defaulted bool     `json:"defaulted,omitempty"`
	AltKey    string   `json:"alt_key,omitempty"` // second entry's key for use_both
}

// MergeOutcome is the set-level classification of two keyed card collections
// plus the resolution applied to every conflicting key.
type MergeOutcome struct {
	CommonIdentical   []string     `json:"common_identical"`
	CommonConflicting []string     `json:"common_conflicting"`
	OnlyInFirst       []string     `json:"only_in_first"`
	OnlyInSecond      []string     `json:"only_in_second"`
	Resolutions       []Resolution `json:"resolutions"`
}

// DefaultedCount returns how many conflicts fell back to use_first because
// the decision source supplied nothing.
func (o MergeOutcome) DefaultedCount() int {
	n := 0
	for _, r := range o.Resolutions {
		if r.Defaulted {
			n++
		}
	}
	return n
}

func (o MergeOutcome) String() string {
	return fmt.Sprintf("MergeOutcome(identical=%d, conflicts=%d, only1=%d, only2=%d)",
		len(o.CommonIdentical), len(o.CommonConflicting), len(o.OnlyInFirst), len(o.OnlyInSecond))
}
