package model

import "time"

// Config is the complete querysmith configuration
type Config struct {
	Terminology TerminologyConfig `yaml:"terminology" mapstructure:"terminology"`
	Generation  GenerationConfig  `yaml:"generation" mapstructure:"generation"`
	Query       QueryConfig       `yaml:"query" mapstructure:"query"`
	Exemplars   ExemplarConfig    `yaml:"exemplars" mapstructure:"exemplars"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// TerminologyConfig configures the NCBI E-utilities concept resolver
type TerminologyConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	DB                string        `yaml:"db" mapstructure:"db"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	APIKey            string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Tool              string        `yaml:"tool,omitempty" mapstructure:"tool"`
	Email             string        `yaml:"email,omitempty" mapstructure:"email"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// ProviderConfig configures one generation provider slot
type ProviderConfig struct {
	Provider string        `yaml:"provider" mapstructure:"provider"` // anthropic, openai, ollama, ""
	Model    string        `yaml:"model" mapstructure:"model"`
	APIKey   string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// GenerationConfig configures the generation orchestrator
type GenerationConfig struct {
	Primary         ProviderConfig `yaml:"primary" mapstructure:"primary"`
	Secondary       ProviderConfig `yaml:"secondary" mapstructure:"secondary"`
	MaxTokens       int            `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature     float64        `yaml:"temperature" mapstructure:"temperature"`
	PrimaryAttempts int            `yaml:"primary_attempts" mapstructure:"primary_attempts"`
	Backoff         time.Duration  `yaml:"backoff" mapstructure:"backoff"`
}

// QueryConfig configures the query compiler
type QueryConfig struct {
	Mode PrecisionMode `yaml:"mode" mapstructure:"mode"`
}

// ExemplarConfig configures few-shot selection
type ExemplarConfig struct {
	K int `yaml:"k" mapstructure:"k"`
}

// HTTPConfig holds settings shared by outbound HTTP clients
type HTTPConfig struct {
	UserAgent  string `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Terminology: TerminologyConfig{
			BaseURL:           "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi",
			DB:                "pubmed",
			Timeout:           10 * time.Second,
			CacheTTL:          time.Hour,
			Tool:              "querysmith",
			RequestsPerSecond: 3, // NCBI quota without an API key
			Burst:             3,
		},
		Generation: GenerationConfig{
			Primary: ProviderConfig{
				Provider: "anthropic",
				Model:    "claude-sonnet-4-20250514",
				Timeout:  60 * time.Second,
			},
			Secondary: ProviderConfig{
				Provider: "openai",
				Model:    "gpt-4o",
				Timeout:  60 * time.Second,
			},
			MaxTokens:       1024,
			PrimaryAttempts: 2,
			Backoff:         3 * time.Second,
		},
		Query: QueryConfig{
			Mode: DefaultMode,
		},
		Exemplars: ExemplarConfig{
			K: 3,
		},
		HTTP: HTTPConfig{
			UserAgent: "querysmith/0.1 (+https://github.com/ppiankov/querysmith)",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}
