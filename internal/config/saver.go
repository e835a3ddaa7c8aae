package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveProjectConfig writes cfg to <workDir>/.tripagent/config.yaml.
// Secrets are written only when includeSecrets is set.
func SaveProjectConfig(workDir string, cfg *Config, includeSecrets bool) (string, error) {
	path := ProjectConfigPath(workDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	out := *cfg
	if !includeSecrets {
		out.LLM.APIKey = ""
		out.Search.APIKey = ""
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// ConfigExists reports whether a config file exists at path
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
