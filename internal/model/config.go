package model

// Config is the complete application configuration. Defaults come from
// DefaultConfig; the CLI layers config file, environment, and flags on top.
type Config struct {
	Similarity SimilarityConfig `json:"similarity" yaml:"similarity"`
	Match      MatchConfig      `json:"match" yaml:"match"`
	Merge      MergeConfig      `json:"merge" yaml:"merge"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	Output     OutputConfig     `json:"output" yaml:"output"`
	LLM        LLMConfig        `json:"llm" yaml:"llm"`
}

// MatchConfig controls the pairwise matcher.
type MatchConfig struct {
	MinSimilarity float64 `json:"min_similarity" yaml:"min_similarity"` // cutoff for reported pairs
	MaxMatches    int     `json:"max_matches" yaml:"max_matches"`       // top-N for best-match queries
	Workers       int     `json:"workers" yaml:"workers"`               // concurrent comparison workers
}

// MergeConfig controls the merge resolver.
type MergeConfig struct {
	Policy        MergePolicy `json:"policy" yaml:"policy"`
	IncludeUnique bool        `json:"include_unique" yaml:"include_unique"`
}

// CacheConfig controls normalization memoization.
type CacheConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled"`
	TTLMinutes int  `json:"ttl_minutes" yaml:"ttl_minutes"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `json:"verbose" yaml:"verbose"`
	IncludeFooter bool `json:"include_footer" yaml:"include_footer"`
}

// LLMConfig configures the optional report summarizer. An empty provider
// disables it entirely; the summary never feeds back into matching or merging.
type LLMConfig struct {
	Provider   string `json:"provider,omitempty" yaml:"provider"`
	Model      string `json:"model,omitempty" yaml:"model"`
	APIKey     string `json:"-" yaml:"-"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url"`
	TimeoutSec int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxTokens  int    `json:"max_tokens" yaml:"max_tokens"`
	HTTPProxy  string `json:"-" yaml:"http_proxy"`
	HTTPSProxy string `json:"-" yaml:"https_proxy"`
	NoProxy    string `json:"-" yaml:"no_proxy"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Similarity: DefaultSimilarityConfig(),
		Match: MatchConfig{
			MinSimilarity: 0.5,
			MaxMatches:    10,
			Workers:       4,
		},
		Merge: MergeConfig{
			Policy:        PolicyPreferFirst,
			IncludeUnique: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLMinutes: 10,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			TimeoutSec: 60,
			MaxTokens:  1024,
		},
	}
}
