package cli

import (
	"fmt"
	"os"

	"github.com/ankidiff/ankidiff/internal/model"
	"github.com/spf13/cobra"
)

// Similarity and LLM flags shared by the comparison commands. Each command
// opts in via addSimilarityFlags/addLLMFlags; buildConfig layers the flags
// over the built-in defaults.
var (
	algorithm        string
	exactThreshold   float64
	similarThreshold float64
	partialThreshold float64
	questionWeight   float64
	answerWeight     float64
	minSimilarity    float64
	caseSensitive    bool
	keepHTML         bool
	keepPunctuation  bool
	workers          int
	noCache          bool
	noFooter         bool

	llmEnabled  bool
	llmProvider string
	llmModel    string
)

func addSimilarityFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&algorithm, "algorithm", string(model.AlgorithmSequence), "similarity algorithm (sequence, jaccard, cosine, levenshtein, combined)")
	cmd.Flags().Float64Var(&exactThreshold, "exact-threshold", 1.0, "score at or above which a pair counts as exact")
	cmd.Flags().Float64Var(&similarThreshold, "similar-threshold", 0.8, "score at or above which a pair counts as similar")
	cmd.Flags().Float64Var(&partialThreshold, "partial-threshold", 0.5, "score at or above which a pair counts as partial")
	cmd.Flags().Float64Var(&questionWeight, "question-weight", 0.6, "weight of question similarity in the overall score")
	cmd.Flags().Float64Var(&answerWeight, "answer-weight", 0.4, "weight of answer similarity in the overall score")
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0.5, "minimum overall similarity for a pair to be reported")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "compare text case-sensitively")
	cmd.Flags().BoolVar(&keepHTML, "keep-html", false, "keep HTML markup when normalizing text")
	cmd.Flags().BoolVar(&keepPunctuation, "keep-punctuation", false, "keep punctuation when normalizing text")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent comparison workers")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable normalization caching")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// buildConfig assembles the configuration from defaults and flags. Flags the
// command never registered keep their default values, so the result is safe
// for every command.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	cfg.Similarity.Algorithm = model.Algorithm(algorithm)
	cfg.Similarity.ExactThreshold = exactThreshold
	cfg.Similarity.SimilarThreshold = similarThreshold
	cfg.Similarity.PartialThreshold = partialThreshold
	cfg.Similarity.QuestionWeight = questionWeight
	cfg.Similarity.AnswerWeight = answerWeight
	cfg.Similarity.CaseSensitive = caseSensitive
	cfg.Similarity.IgnoreHTML = !keepHTML
	cfg.Similarity.IgnorePunctuation = !keepPunctuation
	if err := cfg.Similarity.Validate(); err != nil {
		return nil, err
	}

	cfg.Match.MinSimilarity = minSimilarity
	cfg.Match.Workers = workers
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	// Configure LLM if enabled
	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		// Get API key from environment
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		default:
			return nil, fmt.Errorf("unknown LLM provider %q (supported: openai, ollama)", llmProvider)
		}
	}

	cfg.LLM.HTTPProxy = os.Getenv("HTTP_PROXY")
	cfg.LLM.HTTPSProxy = os.Getenv("HTTPS_PROXY")
	cfg.LLM.NoProxy = os.Getenv("NO_PROXY")

	return cfg, nil
}
