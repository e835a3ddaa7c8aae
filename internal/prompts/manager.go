package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	textTemplate "text/template"
	"time"

	"gopkg.in/yaml.v3"
)

// SystemPreambleKey names the prompt sent as the system instruction on every decision call
const SystemPreambleKey = "system_preamble"

//go:embed defaults.yaml
var defaultPrompts []byte

// Manager handles loading and rendering prompt templates
type Manager struct {
	prompts map[string]string
	sources map[string]string // Track which file provided each prompt (for debugging)
}

// NewManager returns a manager holding only the built-in prompts
func NewManager() (*Manager, error) {
	return NewManagerWithOverrides("")
}

// NewManagerWithOverrides loads the built-in prompts, then merges overridePath
// on top. overridePath may be a single YAML file or a directory of them; an
// empty or missing path means no overrides.
func NewManagerWithOverrides(overridePath string) (*Manager, error) {
	pm := &Manager{
		prompts: make(map[string]string),
		sources: make(map[string]string),
	}

	// 1. Built-in prompts (baseline)
	if err := pm.loadBytes(defaultPrompts, "builtin:defaults.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load built-in prompts: %w", err)
	}

	// 2. User overrides
	if overridePath != "" {
		info, err := os.Stat(overridePath)
		switch {
		case err != nil:
			// A missing override file is not an error
		case info.IsDir():
			if err := pm.loadDirectory(overridePath, "override"); err != nil {
				return nil, fmt.Errorf("failed to load prompt overrides: %w", err)
			}
		default:
			if err := pm.loadFile(overridePath, "override"); err != nil {
				return nil, fmt.Errorf("failed to load prompt overrides: %w", err)
			}
		}
	}

	// 3. Validate required prompts exist
	if err := pm.validateRequiredPrompts(); err != nil {
		return nil, err
	}

	return pm, nil
}

// loadDirectory loads all YAML files from a directory
func (pm *Manager) loadDirectory(dir, source string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		if err := pm.loadFile(filepath.Join(dir, entry.Name()), source); err != nil {
			return err
		}
	}

	return nil
}

func (pm *Manager) loadFile(path, source string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return pm.loadBytes(data, fmt.Sprintf("%s:%s", source, filepath.Base(path)))
}

func (pm *Manager) loadBytes(data []byte, source string) error {
	var prompts map[string]string
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return fmt.Errorf("failed to parse %s: %w", source, err)
	}

	// Later loads override earlier ones
	for key, value := range prompts {
		pm.prompts[key] = value
		pm.sources[key] = source
	}
	return nil
}

// validateRequiredPrompts ensures critical prompts exist
func (pm *Manager) validateRequiredPrompts() error {
	required := []string{SystemPreambleKey}

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(pm.prompts[key]) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required prompts: %v", missing)
	}

	return nil
}

// NewManagerFromMap creates a prompt manager from a map (useful for testing)
func NewManagerFromMap(prompts map[string]string) *Manager {
	sources := make(map[string]string)
	for key := range prompts {
		sources[key] = "test:map"
	}
	return &Manager{
		prompts: prompts,
		sources: sources,
	}
}

// Get returns a raw prompt by name
func (pm *Manager) Get(name string) (string, error) {
	prompt, ok := pm.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt '%s' not found (available: %v)", name, pm.getAvailableNames())
	}
	return prompt, nil
}

// Render renders a prompt template with the given variables
func (pm *Manager) Render(name string, vars map[string]interface{}) (string, error) {
	promptTemplate, err := pm.Get(name)
	if err != nil {
		return "", err
	}

	tmpl, err := textTemplate.New(name).Option("missingkey=error").Parse(promptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", name, err)
	}

	return buf.String(), nil
}

// SystemPreamble renders the decision preamble for the year of now
func (pm *Manager) SystemPreamble(now time.Time) (string, error) {
	return pm.Render(SystemPreambleKey, map[string]interface{}{
		"CurrentYear": now.Year(),
	})
}

// getAvailableNames returns a sorted list of available prompt names
func (pm *Manager) getAvailableNames() []string {
	names := make([]string, 0, len(pm.prompts))
	for name := range pm.prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasPrompt checks if a prompt exists
func (pm *Manager) HasPrompt(name string) bool {
	_, ok := pm.prompts[name]
	return ok
}

// GetSource returns which file provided a prompt (for debugging)
func (pm *Manager) GetSource(name string) string {
	if source, ok := pm.sources[name]; ok {
		return source
	}
	return "unknown"
}

// ListOverrides returns the prompts replaced by an override file
func (pm *Manager) ListOverrides() []string {
	var overrides []string
	for key, source := range pm.sources {
		if strings.HasPrefix(source, "override:") {
			overrides = append(overrides, key)
		}
	}
	sort.Strings(overrides)
	return overrides
}

// CountPrompts returns the total number of loaded prompts
func (pm *Manager) CountPrompts() int {
	return len(pm.prompts)
}
