package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"
)

func press(m WizardModel, keys ...string) WizardModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(WizardModel)
	}
	return m
}

func TestWizard_FullFlowSavesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tripagent.yaml")
	m := NewWizardModel(path)

	m = press(m, "enter")
	if m.Step != StepProvider {
		t.Fatal("Expected Enter without a provider to stay put")
	}

	m = press(m, "2", "enter")
	if m.Step != StepAPIKey || m.Model != "gpt-4o-mini" {
		t.Fatalf("Expected API key step with openai default model, got %v %q", m.Step, m.Model)
	}

	m.APIKeyInput.SetValue("sk-test-123456")
	m = press(m, "enter")
	m.ModelInput.SetValue("gpt-4o")
	m = press(m, "enter")
	m = press(m, "enter")
	if m.Step != StepSearchKey {
		t.Fatal("Expected an empty SerpAPI key to be rejected")
	}
	m.SearchKeyInput.SetValue("serp-abcdefgh")
	m = press(m, "enter")
	if m.Step != StepConfirm {
		t.Fatalf("Expected confirm step, got %v", m.Step)
	}

	m = press(m, "y")
	if !m.Saved || m.Err != nil || m.ConfigPath != path {
		t.Fatalf("Expected config to be saved at %s, got saved=%v err=%v", path, m.Saved, m.Err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved config: %v", err)
	}
	var saved wizardFile
	if err := yaml.Unmarshal(data, &saved); err != nil {
		t.Fatalf("Expected valid YAML: %v", err)
	}
	if saved.LLM.Provider != "openai" || saved.LLM.Model != "gpt-4o" || saved.LLM.APIKey != "sk-test-123456" || saved.Search.APIKey != "serp-abcdefgh" {
		t.Errorf("Unexpected saved config %+v", saved)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestWizard_EscGoesBack(t *testing.T) {
	m := press(NewWizardModel(""), "1", "enter")
	m.APIKeyInput.SetValue("key")
	m = press(m, "enter", "esc")
	if m.Step != StepAPIKey {
		t.Errorf("Expected to be back at API key step, got %v", m.Step)
	}
	if m.Model != "gemini-1.5-flash" {
		t.Errorf("Expected gemini default model, got %q", m.Model)
	}
}

func TestWizard_QuitOnlyFromProviderStep(t *testing.T) {
	m := press(NewWizardModel(""), "1", "enter", "q")
	if m.Quitting {
		t.Error("Expected q to be typed into the key field")
	}
	if m.APIKeyInput.Value() != "q" {
		t.Errorf("Expected q in the API key input, got %q", m.APIKeyInput.Value())
	}

	m = press(NewWizardModel(""), "q")
	if !m.Quitting {
		t.Error("Expected q to quit on the provider step")
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret("short"); got != "••••" {
		t.Errorf("Expected fully masked short secret, got %q", got)
	}
	if got := maskSecret("sk-test-123456"); got != "sk-t••••3456" {
		t.Errorf("Unexpected mask %q", got)
	}
}
