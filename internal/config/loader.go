package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/user/tripagent/internal/errors"
)

const (
	// EnvPrefix prefixes every environment override (TRIPAGENT_LLM_API_KEY, ...)
	EnvPrefix = "TRIPAGENT"
	// ProjectConfigDir holds the project-level config.yaml
	ProjectConfigDir = ".tripagent"
	// GlobalConfigFile is read from the user's home directory
	GlobalConfigFile = ".tripagent.yaml"
)

// defaults seeds every key so viper's AutomaticEnv can see it
var defaults = map[string]interface{}{
	"debug":                       false,
	"llm.provider":                "gemini",
	"llm.model":                   "gemini-1.5-flash",
	"llm.api_key":                 "",
	"llm.base_url":                "",
	"llm.timeout":                 30,
	"llm.max_tokens":              8192,
	"llm.temperature":             0.7,
	"search.api_key":              "",
	"search.base_url":             "https://serpapi.com",
	"search.currency":             "EUR",
	"search.language":             "en",
	"search.country":              "us",
	"search.max_results":          5,
	"retry.max_attempts":          3,
	"retry.multiplier":            1,
	"retry.max_wait_per_attempt":  8,
	"retry.max_total_wait":        20,
	"agent.max_rounds":            8,
	"agent.max_parallel_tools":    4,
	"agent.tool_timeout":          20,
	"agent.max_tool_result_chars": 20000,
	"store.driver":                "file",
	"store.path":                  ".tripagent/sessions",
	"airports.path":               "",
	"cache.enabled":               true,
	"cache.max_size":              256,
	"cache.ttl":                   30,
	"prompts.path":                "",
	"logging.log_dir":             ".tripagent/logs",
	"logging.file_level":          "info",
	"logging.console_level":       "warn",
}

// Loader handles loading configuration from multiple sources
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Load resolves configuration for workDir.
// Precedence: CLI > Environment > .tripagent/config.yaml > ~/.tripagent.yaml > Defaults
func (l *Loader) Load(workDir string, cliOverrides map[string]interface{}) (*Config, error) {
	if err := l.loadGlobalConfig(); err != nil {
		return nil, err
	}
	if err := l.loadProjectConfig(workDir); err != nil {
		return nil, err
	}
	l.applyCLIOverrides(cliOverrides)

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           cfg,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := decoder.Decode(l.v.AllSettings()); err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("failed to decode configuration: %v", err))
	}

	applyWellKnownEnv(cfg)
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))

	return cfg, nil
}

// Load is a convenience wrapper around NewLoader().Load
func Load(workDir string, cliOverrides map[string]interface{}) (*Config, error) {
	return NewLoader().Load(workDir, cliOverrides)
}

// loadGlobalConfig loads configuration from ~/.tripagent.yaml
func (l *Loader) loadGlobalConfig() error {
	path, err := GlobalConfigPath()
	if err != nil {
		return nil // Not a fatal error
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	l.v.SetConfigFile(path)
	if err := l.v.MergeInConfig(); err != nil {
		return errors.NewConfigFileError(path, err)
	}
	return nil
}

// loadProjectConfig loads configuration from .tripagent/config.yaml
func (l *Loader) loadProjectConfig(workDir string) error {
	path := ProjectConfigPath(workDir)
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	l.v.SetConfigFile(path)
	if err := l.v.MergeInConfig(); err != nil {
		return errors.NewConfigFileError(path, err)
	}
	return nil
}

// applyCLIOverrides applies CLI flag overrides; nil values and empty strings are skipped
func (l *Loader) applyCLIOverrides(overrides map[string]interface{}) {
	for key, value := range overrides {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		l.v.Set(key, value)
	}
}

// applyWellKnownEnv fills empty keys from the providers' own variables
// (GOOGLE_API_KEY, OPENAI_API_KEY, SERPAPI_API_KEY).
func applyWellKnownEnv(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "gemini":
			cfg.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = os.Getenv("SERPAPI_API_KEY")
	}
}

// GlobalConfigPath returns ~/.tripagent.yaml
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalConfigFile), nil
}

// ProjectConfigPath returns <workDir>/.tripagent/config.yaml
func ProjectConfigPath(workDir string) string {
	if workDir == "" {
		workDir = "."
	}
	return filepath.Join(workDir, ProjectConfigDir, "config.yaml")
}

var validProviders = map[string]bool{
	"gemini": true,
	"openai": true,
}

var validStoreDrivers = map[string]bool{
	"memory": true,
	"file":   true,
	"sqlite": true,
}

// Validate checks the settings required to run a planning round
func (c *Config) Validate() error {
	if !validProviders[c.LLM.Provider] {
		return errors.NewInvalidEnvVarError(errors.EnvVarForKey("llm.provider"), c.LLM.Provider, "Must be one of: gemini, openai")
	}
	if c.LLM.APIKey == "" {
		return errors.NewMissingEnvVarError(errors.EnvVarForKey("llm.api_key"), "llm.api_key", "API key for the reasoning provider")
	}
	if c.Search.APIKey == "" {
		return errors.NewMissingEnvVarError(errors.EnvVarForKey("search.api_key"), "search.api_key", "SerpAPI key for hotel and flight lookups")
	}
	return c.ValidateStore()
}

// ValidateStore checks only the session store settings
func (c *Config) ValidateStore() error {
	if !validStoreDrivers[c.Store.Driver] {
		return errors.NewInvalidEnvVarError(errors.EnvVarForKey("store.driver"), c.Store.Driver, "Must be one of: memory, file, sqlite")
	}
	if c.Store.Driver != "memory" && c.Store.Path == "" {
		return errors.NewConfigurationError("store.path is required for the " + c.Store.Driver + " store")
	}
	return nil
}
