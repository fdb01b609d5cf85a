package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".agentic-rag"
	DefaultConfigFile = "config.yaml"
)

// Search providers understood by the search package
const (
	ProviderFirecrawl  = "firecrawl"
	ProviderTavily     = "tavily"
	ProviderBrave      = "brave"
	ProviderDuckDuckGo = "duckduckgo"
)

// Config represents the application configuration
type Config struct {
	Model  ModelConfig  `yaml:"model"`
	Search SearchConfig `yaml:"search"`
	Index  IndexConfig  `yaml:"index"`
	Crew   CrewConfig   `yaml:"crew"`
	UI     UIConfig     `yaml:"ui"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// ModelConfig points at the locally hosted inference endpoint
type ModelConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Name           string  `yaml:"name"`
	EmbedModel     string  `yaml:"embed_model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// SearchConfig selects the web search backend. The credential itself is never
// stored here, only the name of the environment variable holding it.
type SearchConfig struct {
	Provider       string   `yaml:"provider"`
	APIKeyEnv      string   `yaml:"api_key_env"`
	BaseURL        string   `yaml:"base_url,omitempty"`
	NumResults     int      `yaml:"num_results"`
	IncludeDomains []string `yaml:"include_domains"`
	ExcludeDomains []string `yaml:"exclude_domains"`
	// Depth is only used by tavily (basic or advanced)
	Depth string `yaml:"depth,omitempty"`
}

// IndexConfig controls how an uploaded PDF is chunked and retrieved
type IndexConfig struct {
	ChunkSize      int `yaml:"chunk_size"`
	ChunkOverlap   int `yaml:"chunk_overlap"`
	TopK           int `yaml:"top_k"`
	EmbedBatchSize int `yaml:"embed_batch_size"`
	Workers        int `yaml:"workers"`
	// ExcerptLength caps each passage returned to the retriever agent, in characters
	ExcerptLength int `yaml:"excerpt_length"`
}

// CrewConfig locates the agent and task description files
type CrewConfig struct {
	AgentsFile    string `yaml:"agents_file"`
	TasksFile     string `yaml:"tasks_file"`
	MaxIterations int    `yaml:"max_iterations"`
	Verbose       bool   `yaml:"verbose"`
}

// UIConfig holds presentation-only settings
type UIConfig struct {
	// ReplayDelayMs is the pause between lines of the typing effect
	ReplayDelayMs int `yaml:"replay_delay_ms"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr              string `yaml:"addr"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	BodyLimitMB       int    `yaml:"body_limit_mb"`
	CorsOrigins       string `yaml:"cors_origins"`
}

// LogConfig configures the rotated log file
type LogConfig struct {
	FilePath string `yaml:"file_path"`
	Debug    bool   `yaml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			BaseURL:        "http://localhost:11434",
			Name:           "llama3.2",
			EmbedModel:     "nomic-embed-text",
			Temperature:    0.2,
			MaxTokens:      2048,
			TimeoutSeconds: 0,
		},
		Search: SearchConfig{
			Provider:       ProviderFirecrawl,
			APIKeyEnv:      "FIRECRAWL_API_KEY",
			NumResults:     5,
			IncludeDomains: []string{},
			ExcludeDomains: []string{},
		},
		Index: IndexConfig{
			ChunkSize:      1000,
			ChunkOverlap:   100,
			TopK:           5,
			EmbedBatchSize: 16,
			Workers:        4,
			ExcerptLength:  800,
		},
		Crew: CrewConfig{
			AgentsFile:    filepath.Join("config", "agents.yaml"),
			TasksFile:     filepath.Join("config", "tasks.yaml"),
			MaxIterations: 4,
			Verbose:       false,
		},
		UI: UIConfig{
			ReplayDelayMs: 150,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			SessionTTLMinutes: 60,
			BodyLimitMB:       25,
			CorsOrigins:       "*",
		},
		Log: LogConfig{
			FilePath: filepath.Join(DefaultConfigDir, "logs", "agentic-rag.log"),
		},
	}
}

// GetConfigPath returns the path to the per-user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads the configuration at path. An empty path means the per-user file.
// A missing file yields the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path, creating parent directories
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Model.BaseURL == "" {
		return fmt.Errorf("model.base_url must not be empty")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name must not be empty")
	}
	if c.Model.EmbedModel == "" {
		return fmt.Errorf("model.embed_model must not be empty")
	}
	if c.Model.Temperature < 0.0 || c.Model.Temperature > 2.0 {
		return fmt.Errorf("model.temperature must be between 0.0 and 2.0, got %f", c.Model.Temperature)
	}
	if c.Model.TimeoutSeconds < 0 {
		return fmt.Errorf("model.timeout_seconds must not be negative, got %d", c.Model.TimeoutSeconds)
	}

	switch c.Search.Provider {
	case ProviderFirecrawl, ProviderTavily, ProviderBrave, ProviderDuckDuckGo:
	default:
		return fmt.Errorf("search.provider %q is not supported", c.Search.Provider)
	}
	if c.Search.APIKeyEnv == "" {
		return fmt.Errorf("search.api_key_env must not be empty")
	}
	if c.Search.NumResults <= 0 {
		return fmt.Errorf("search.num_results must be positive, got %d", c.Search.NumResults)
	}

	if c.Index.ChunkSize <= 0 {
		return fmt.Errorf("index.chunk_size must be positive, got %d", c.Index.ChunkSize)
	}
	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkSize {
		return fmt.Errorf("index.chunk_overlap must be in [0, chunk_size), got %d", c.Index.ChunkOverlap)
	}
	if c.Index.TopK <= 0 {
		return fmt.Errorf("index.top_k must be positive, got %d", c.Index.TopK)
	}
	if c.Index.EmbedBatchSize <= 0 {
		return fmt.Errorf("index.embed_batch_size must be positive, got %d", c.Index.EmbedBatchSize)
	}
	if c.Index.Workers <= 0 {
		return fmt.Errorf("index.workers must be positive, got %d", c.Index.Workers)
	}

	if c.Crew.AgentsFile == "" || c.Crew.TasksFile == "" {
		return fmt.Errorf("crew.agents_file and crew.tasks_file must be set")
	}
	if c.Crew.MaxIterations <= 0 {
		return fmt.Errorf("crew.max_iterations must be positive, got %d", c.Crew.MaxIterations)
	}

	if c.UI.ReplayDelayMs < 0 {
		return fmt.Errorf("ui.replay_delay_ms must not be negative, got %d", c.UI.ReplayDelayMs)
	}

	if c.Server.SessionTTLMinutes <= 0 {
		return fmt.Errorf("server.session_ttl_minutes must be positive, got %d", c.Server.SessionTTLMinutes)
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("server.body_limit_mb must be positive, got %d", c.Server.BodyLimitMB)
	}

	return nil
}

// ModelTimeout returns the per-request timeout for the model endpoint.
// Zero, the default, leaves requests bounded only by their context.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}

// ReplayDelay returns the pause between replayed lines
func (c *Config) ReplayDelay() time.Duration {
	return time.Duration(c.UI.ReplayDelayMs) * time.Millisecond
}

// SessionTTL returns how long an idle server session is kept
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Server.SessionTTLMinutes) * time.Minute
}
