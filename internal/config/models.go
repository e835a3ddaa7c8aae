package config

import (
	"time"
)

// LLMConfig holds reasoning provider configuration
type LLMConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"` // gemini, openai
	Model       string  `mapstructure:"model" yaml:"model"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url,omitempty"` // Optional, for OpenAI-compatible APIs
	Timeout     int     `mapstructure:"timeout" yaml:"timeout"`             // Timeout in seconds per decision call
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

// SearchConfig holds hotel/flight lookup provider configuration
type SearchConfig struct {
	APIKey     string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Currency   string `mapstructure:"currency" yaml:"currency"`
	Language   string `mapstructure:"language" yaml:"language"`
	Country    string `mapstructure:"country" yaml:"country"`
	MaxResults int    `mapstructure:"max_results" yaml:"max_results"` // Entries kept per normalized result
}

// RetryConfig holds HTTP retry configuration for lookup and reasoning calls
type RetryConfig struct {
	MaxAttempts       int `mapstructure:"max_attempts" yaml:"max_attempts"`
	Multiplier        int `mapstructure:"multiplier" yaml:"multiplier"`
	MaxWaitPerAttempt int `mapstructure:"max_wait_per_attempt" yaml:"max_wait_per_attempt"` // seconds
	MaxTotalWait      int `mapstructure:"max_total_wait" yaml:"max_total_wait"`             // seconds
}

// AgentConfig holds decision loop limits
type AgentConfig struct {
	MaxRounds          int `mapstructure:"max_rounds" yaml:"max_rounds"`
	MaxParallelTools   int `mapstructure:"max_parallel_tools" yaml:"max_parallel_tools"`
	ToolTimeout        int `mapstructure:"tool_timeout" yaml:"tool_timeout"` // seconds per lookup
	MaxToolResultChars int `mapstructure:"max_tool_result_chars" yaml:"max_tool_result_chars"`
}

// StoreConfig selects the session persistence backend
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // memory, file, sqlite
	Path   string `mapstructure:"path" yaml:"path"`
}

// AirportsConfig points at an optional city→IATA JSON file
type AirportsConfig struct {
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// CacheConfig holds lookup result cache configuration
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	MaxSize int  `mapstructure:"max_size" yaml:"max_size"`
	TTL     int  `mapstructure:"ttl" yaml:"ttl"` // minutes
}

// PromptsConfig points at an optional YAML file overriding the built-in prompts
type PromptsConfig struct {
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	LogDir       string `mapstructure:"log_dir" yaml:"log_dir"`
	FileLevel    string `mapstructure:"file_level" yaml:"file_level"`       // debug, info, warn, error
	ConsoleLevel string `mapstructure:"console_level" yaml:"console_level"` // debug, info, warn, error
}

// Config holds the full tripagent configuration
type Config struct {
	Debug    bool           `mapstructure:"debug" yaml:"-"`
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Search   SearchConfig   `mapstructure:"search" yaml:"search"`
	Retry    RetryConfig    `mapstructure:"retry" yaml:"retry"`
	Agent    AgentConfig    `mapstructure:"agent" yaml:"agent"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Airports AirportsConfig `mapstructure:"airports" yaml:"airports"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Prompts  PromptsConfig  `mapstructure:"prompts" yaml:"prompts"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// GetTimeout returns the decision call timeout as a time.Duration
func (c *LLMConfig) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// GetMaxTokens returns the max tokens with a default
func (c *LLMConfig) GetMaxTokens() int {
	if c.MaxTokens <= 0 {
		return 8192
	}
	return c.MaxTokens
}

// GetMaxResults returns the number of entries kept per lookup
func (c *SearchConfig) GetMaxResults() int {
	if c.MaxResults <= 0 {
		return 5
	}
	return c.MaxResults
}

// GetMaxRounds returns the tool round cap
func (c *AgentConfig) GetMaxRounds() int {
	if c.MaxRounds <= 0 {
		return 8
	}
	return c.MaxRounds
}

// GetMaxParallelTools returns how many lookups may run at once in a round
func (c *AgentConfig) GetMaxParallelTools() int {
	if c.MaxParallelTools <= 0 {
		return 4
	}
	return c.MaxParallelTools
}

// GetToolTimeout returns the per-lookup timeout
func (c *AgentConfig) GetToolTimeout() time.Duration {
	if c.ToolTimeout <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.ToolTimeout) * time.Second
}

// GetMaxToolResultChars returns the cap applied to serialized tool output
func (c *AgentConfig) GetMaxToolResultChars() int {
	if c.MaxToolResultChars <= 0 {
		return 20000
	}
	return c.MaxToolResultChars
}

// GetTTL returns the cache TTL as a time.Duration
func (c *CacheConfig) GetTTL() time.Duration {
	if c.TTL <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.TTL) * time.Minute
}

// GetMaxSize returns the maximum cache size with a default
func (c *CacheConfig) GetMaxSize() int {
	if c.MaxSize <= 0 {
		return 256
	}
	return c.MaxSize
}

// GetMaxWaitPerAttempt returns the per-attempt backoff cap
func (c *RetryConfig) GetMaxWaitPerAttempt() time.Duration {
	return time.Duration(c.MaxWaitPerAttempt) * time.Second
}

// GetMaxTotalWait returns the overall backoff budget
func (c *RetryConfig) GetMaxTotalWait() time.Duration {
	return time.Duration(c.MaxTotalWait) * time.Second
}
