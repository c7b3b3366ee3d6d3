package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ankidiff/ankidiff/internal/cache"
	"github.com/ankidiff/ankidiff/internal/export"
	"github.com/ankidiff/ankidiff/internal/llm"
	"github.com/ankidiff/ankidiff/internal/match"
	"github.com/ankidiff/ankidiff/internal/merge"
	"github.com/ankidiff/ankidiff/internal/model"
	"github.com/ankidiff/ankidiff/internal/similarity"
)

// Pipeline wires the engine together for the CLI: load exports, classify,
// match, merge, render.
type Pipeline struct {
	calc       *similarity.Calculator
	matcher    *match.Matcher
	resolver   *merge.Resolver
	renderer   *Renderer
	summarizer *llm.Summarizer // nil when disabled
	config     *model.Config
}

// NewPipeline builds a pipeline from validated configuration.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	calc, err := similarity.NewCalculator(cfg.Similarity)
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
		calc.WithCache(cache.NewMemoryCache(ttl, 2*ttl))
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		summarizer, err = llm.NewSummarizer(cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("init LLM provider: %w", err)
		}
	}

	return &Pipeline{
		calc:       calc,
		matcher:    match.NewMatcher(calc, cfg.Match.Workers),
		resolver:   merge.NewResolver(),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		summarizer: summarizer,
		config:     cfg,
	}, nil
}

// Matcher exposes the pipeline's matcher for pair lookups.
func (p *Pipeline) Matcher() *match.Matcher {
	return p.matcher
}

// Diff loads both exports and classifies their cards. With withSimilar set it
// also runs the pairwise matcher across the two sets at the configured
// minimum similarity.
func (p *Pipeline) Diff(ctx context.Context, path1, path2 string, withSimilar bool) (*model.Report, error) {
	first, second, err := p.loadBoth(path1, path2)
	if err != nil {
		return nil, err
	}

	set1 := merge.FromCards(first.Headers, first.HeaderOrder, first.Cards)
	set2 := merge.FromCards(second.Headers, second.HeaderOrder, second.Cards)
	outcome := merge.Classify(set1, set2)

	report := p.newReport(first, second)
	report.Diff = diffSummary(outcome, set1, set2)

	if withSimilar {
		report.SimilarPairs = p.matcher.FindSimilarPairs(first.Cards, second.Cards, p.config.Match.MinSimilarity)
	}

	p.summarize(ctx, report)
	return report, nil
}

// Merge loads both exports, resolves them under the configured policy, and
// writes the merged export to outputPath.
func (p *Pipeline) Merge(ctx context.Context, path1, path2, outputPath string, source merge.DecisionSource) (*model.Report, error) {
	first, second, err := p.loadBoth(path1, path2)
	if err != nil {
		return nil, err
	}

	set1 := merge.FromCards(first.Headers, first.HeaderOrder, first.Cards)
	set2 := merge.FromCards(second.Headers, second.HeaderOrder, second.Cards)

	merged, outcome, err := p.resolver.Resolve(set1, set2, merge.Options{
		Policy:        p.config.Merge.Policy,
		IncludeUnique: p.config.Merge.IncludeUnique,
		Source:        source,
	})
	if err != nil {
		return nil, err
	}

	if err := export.Save(outputPath, merged.Headers(), merged.HeaderOrder(), merged.Cards()); err != nil {
		return nil, fmt.Errorf("write merged export: %w", err)
	}

	report := p.newReport(first, second)
	report.Diff = diffSummary(outcome, set1, set2)
	report.Merge = &model.MergeSummary{
		Policy:      p.config.Merge.Policy,
		Outcome:     outcome,
		MergedCount: merged.Len(),
		OutputPath:  outputPath,
	}

	p.summarize(ctx, report)
	return report, nil
}

// Similar loads both exports and reports ranked cross-file pairs.
func (p *Pipeline) Similar(ctx context.Context, path1, path2 string, minSimilarity float64) (*model.Report, error) {
	first, second, err := p.loadBoth(path1, path2)
	if err != nil {
		return nil, err
	}

	report := p.newReport(first, second)
	report.SimilarPairs = p.matcher.FindSimilarPairs(first.Cards, second.Cards, minSimilarity)

	p.summarize(ctx, report)
	return report, nil
}

// BestMatches loads both exports and reports only the strongest maxMatches
// pairs at the default cutoff. Non-positive maxMatches falls back to the
// configured limit.
func (p *Pipeline) BestMatches(ctx context.Context, path1, path2 string, maxMatches int) (*model.Report, error) {
	if maxMatches <= 0 {
		maxMatches = p.config.Match.MaxMatches
	}
	first, second, err := p.loadBoth(path1, path2)
	if err != nil {
		return nil, err
	}

	report := p.newReport(first, second)
	report.SimilarPairs = p.matcher.FindBestMatches(first.Cards, second.Cards, maxMatches)

	p.summarize(ctx, report)
	return report, nil
}

// Group loads one export and partitions its cards into similarity groups.
func (p *Pipeline) Group(ctx context.Context, path string, threshold float64) (*model.Report, error) {
	source, err := export.Load(path)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		First:       source.Info(),
		GeneratedAt: time.Now().UTC(),
	}
	report.Groups = p.matcher.GroupSimilarCards(source.Cards, threshold)

	p.summarize(ctx, report)
	return report, nil
}

// GenerateSelection writes the differences report and the selection template
// a user edits before a selective merge. Returns both paths.
func (p *Pipeline) GenerateSelection(path1, path2, outputPrefix string) (string, string, error) {
	first, second, err := p.loadBoth(path1, path2)
	if err != nil {
		return "", "", err
	}

	set1 := merge.FromCards(first.Headers, first.HeaderOrder, first.Cards)
	set2 := merge.FromCards(second.Headers, second.HeaderOrder, second.Cards)
	outcome := merge.Classify(set1, set2)

	return writeSelectionArtifacts(outputPrefix, outcome, set1, set2)
}

// RenderReport renders the report to the requested outputs plus a stdout
// summary.
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}
	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)
	return nil
}

func (p *Pipeline) loadBoth(path1, path2 string) (*export.Export, *export.Export, error) {
	first, err := export.Load(path1)
	if err != nil {
		return nil, nil, err
	}
	second, err := export.Load(path2)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

func (p *Pipeline) newReport(first, second *export.Export) *model.Report {
	return &model.Report{
		First:       first.Info(),
		Second:      second.Info(),
		GeneratedAt: time.Now().UTC(),
	}
}

// summarize attaches the optional LLM summary. It runs after every
// classification is final and failures only warn, never fail the run.
func (p *Pipeline) summarize(ctx context.Context, report *model.Report) {
	if p.summarizer == nil {
		return
	}
	summary, err := p.summarizer.Summarize(ctx, report)
	if err != nil {
		fmt.Printf("Warning: LLM summary generation failed: %v\n", err)
		return
	}
	report.LLM = summary
}

// diffSummary converts a merge outcome into the report's diff section.
func diffSummary(outcome model.MergeOutcome, set1, set2 *merge.CardSet) model.DiffSummary {
	summary := model.DiffSummary{
		IdenticalCount: len(outcome.CommonIdentical),
		ConflictCount:  len(outcome.CommonConflicting),
		OnlyFirstCount: len(outcome.OnlyInFirst),
		OnlySecond:     len(outcome.OnlyInSecond),
	}
	for _, key := range outcome.CommonConflicting {
		answer1, _ := set1.Answer(key)
		answer2, _ := set2.Answer(key)
		summary.Conflicts = append(summary.Conflicts, model.Conflict{
			Question:     key,
			FirstAnswer:  answer1,
			SecondAnswer: answer2,
		})
	}
	return summary
}
