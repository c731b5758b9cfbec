package config

// rawDocument mirrors the top-level YAML document shape before it is
// translated into validate.Config / validate.ValidatorDefinition values.
type rawDocument struct {
	Pipeline   rawPipeline       `yaml:"pipeline"`
	Validators []rawValidatorDef `yaml:"validators"`
}

type rawPipeline struct {
	ExecutionModel   string       `yaml:"execution_model"`
	DefaultTimeoutMS uint32       `yaml:"default_timeout_ms"`
	CacheEnabled     *bool        `yaml:"cache_enabled"`
	CacheMaxAgeMS    uint64       `yaml:"cache_max_age_ms"`
	CacheMaxEntries  int          `yaml:"cache_max_entries"`
	ContextDir       string       `yaml:"context_dir"`
	Consensus        rawConsensus `yaml:"consensus"`
}

type rawConsensus struct {
	Strategy         string `yaml:"strategy"`
	MinimumResponses int    `yaml:"minimum_responses"`
	EscalateToHuman  bool   `yaml:"escalate_to_human"`
}

type rawValidatorDef struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Kind         string            `yaml:"kind"`
	Enabled      *bool             `yaml:"enabled"`
	Priority     int32             `yaml:"priority"`
	Triggers     []string          `yaml:"triggers"`
	FilePatterns []string          `yaml:"file_patterns"`
	Children     []string          `yaml:"children"`
	Behavior     rawBehavior       `yaml:"behavior"`
	Context      *rawContextConfig `yaml:"context"`
	Config       map[string]any    `yaml:"config"`
}

type rawBehavior struct {
	OnFailure      string  `yaml:"on_failure"`
	BlockOnFailure bool    `yaml:"block_on_failure"`
	Required       bool    `yaml:"required"`
	TimeoutMS      uint32  `yaml:"timeout_ms"`
	OnTimeout      string  `yaml:"on_timeout"`
	Cacheable      bool    `yaml:"cacheable"`
	Weight         float64 `yaml:"weight"`
	HasWeight      bool    `yaml:"-"`
}

type rawContextConfig struct {
	IncludeDiff     bool `yaml:"include_diff"`
	IncludeFullFile bool `yaml:"include_full_file"`
}
