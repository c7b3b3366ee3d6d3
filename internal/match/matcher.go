package match

import (
	"context"
	"sort"

	"github.com/ankidiff/ankidiff/internal/model"
	"github.com/ankidiff/ankidiff/internal/similarity"
	"github.com/ankidiff/ankidiff/internal/worker"
)

// DefaultMinSimilarity is the cutoff used by FindBestMatches.
const DefaultMinSimilarity = 0.5

// Matcher applies a similarity calculator across card sets. It owns the
// card-id to latest-pair-id index; cards themselves only carry the metadata
// the matcher records on them.
type Matcher struct {
	calc    *similarity.Calculator
	workers int
	index   map[string]string
}

// NewMatcher creates a matcher that runs comparisons across the given number
// of workers.
func NewMatcher(calc *similarity.Calculator, workers int) *Matcher {
	if workers <= 0 {
		workers = 1
	}
	return &Matcher{
		calc:    calc,
		workers: workers,
		index:   make(map[string]string),
	}
}

// PairFor returns the latest pair recorded for a card id.
func (m *Matcher) PairFor(cardID string) (string, bool) {
	pairID, ok := m.index[cardID]
	return pairID, ok
}

// compareJob is one cell of the pairwise cross product.
type compareJob struct {
	calc  *similarity.Calculator
	card1 *model.Card
	card2 *model.Card
	i, j  int
}

type compareResult struct {
	job    compareJob
	result model.SimilarityResult
}

func (r *compareResult) Err() error { return nil }

func (j compareJob) Execute(ctx context.Context) worker.Result {
	return &compareResult{job: j, result: j.calc.Compare(j.card1, j.card2)}
}

// FindSimilarPairs compares every card in set1 against every card in set2
// and returns the pairs at or above minSimilarity, sorted by descending
// overall similarity. The cross product runs on the worker pool; ordering is
// restored by a final sort, never taken from completion order.
func (m *Matcher) FindSimilarPairs(set1, set2 []*model.Card, minSimilarity float64) []*model.SimilarCardPair {
	jobs := make([]worker.Job, 0, len(set1)*len(set2))
	for i, card1 := range set1 {
		for j, card2 := range set2 {
			jobs = append(jobs, compareJob{calc: m.calc, card1: card1, card2: card2, i: i, j: j})
		}
	}

	results := worker.Run(m.workers, jobs)

	compared := make([]*compareResult, 0, len(results))
	for _, r := range results {
		compared = append(compared, r.(*compareResult))
	}
	// Restore cross-product order before creating pairs so card metadata and
	// tie order do not depend on scheduling.
	sort.Slice(compared, func(a, b int) bool {
		if compared[a].job.i != compared[b].job.i {
			return compared[a].job.i < compared[b].job.i
		}
		return compared[a].job.j < compared[b].job.j
	})

	var pairs []*model.SimilarCardPair
	for _, c := range compared {
		if c.result.OverallSimilarity >= minSimilarity {
			pairs = append(pairs, m.recordPair(c.job.card1, c.job.card2, c.result))
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Result.OverallSimilarity > pairs[b].Result.OverallSimilarity
	})
	return pairs
}

// FindBestMatches returns the top maxMatches pairs at the default cutoff.
func (m *Matcher) FindBestMatches(set1, set2 []*model.Card, maxMatches int) []*model.SimilarCardPair {
	pairs := m.FindSimilarPairs(set1, set2, DefaultMinSimilarity)
	if maxMatches > 0 && len(pairs) > maxMatches {
		pairs = pairs[:maxMatches]
	}
	return pairs
}

// GroupSimilarCards partitions cards into similarity groups with a single
// greedy pass: each unassigned card seeds a group and absorbs every later
// unassigned card scoring at or above threshold against the seed. Members
// are only ever compared to the seed, so two members of one group can score
// below threshold against each other. That non-transitive behavior is
// intentional and relied upon.
func (m *Matcher) GroupSimilarCards(cards []*model.Card, threshold float64) [][]*model.Card {
	groups := make([][]*model.Card, 0)
	assigned := make([]bool, len(cards))

	for i, seed := range cards {
		if assigned[i] {
			continue
		}
		group := []*model.Card{seed}
		assigned[i] = true

		for j := i + 1; j < len(cards); j++ {
			if assigned[j] {
				continue
			}
			result := m.calc.Compare(seed, cards[j])
			if result.OverallSimilarity >= threshold {
				group = append(group, cards[j])
				assigned[j] = true
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// recordPair creates the pair and updates the id index for both cards.
func (m *Matcher) recordPair(card1, card2 *model.Card, result model.SimilarityResult) *model.SimilarCardPair {
	pair := model.NewSimilarCardPair(card1, card2, result)
	m.index[card1.ID] = pair.ID
	m.index[card2.ID] = pair.ID
	return pair
}
