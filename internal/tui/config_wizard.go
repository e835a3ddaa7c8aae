package tui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/user/tripagent/internal/config"
	"gopkg.in/yaml.v3"
)

// Step represents a wizard step
type Step int

const (
	StepProvider Step = iota
	StepAPIKey
	StepModel
	StepSearchKey
	StepConfirm
	StepComplete
)

func (s Step) String() string {
	switch s {
	case StepProvider:
		return "Reasoning Provider"
	case StepAPIKey:
		return "Provider API Key"
	case StepModel:
		return "Model"
	case StepSearchKey:
		return "SerpAPI Key"
	case StepConfirm:
		return "Confirm"
	case StepComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

var defaultModels = map[string]string{
	"gemini": "gemini-1.5-flash",
	"openai": "gpt-4o-mini",
}

// WizardModel collects the settings needed for a first planning session
// and writes them to the global config file.
type WizardModel struct {
	Step       Step
	Provider   string
	APIKey     string
	Model      string
	SearchKey  string
	Quitting   bool
	ConfigPath string
	Saved      bool
	Err        error

	APIKeyInput    textinput.Model
	ModelInput     textinput.Model
	SearchKeyInput textinput.Model

	path string
}

// NewWizardModel creates a wizard that saves to path; an empty path means
// the global config file.
func NewWizardModel(path string) WizardModel {
	apiKeyInput := textinput.New()
	apiKeyInput.Placeholder = "provider API key"
	apiKeyInput.EchoMode = textinput.EchoPassword
	apiKeyInput.EchoCharacter = '•'
	apiKeyInput.CharLimit = 256

	modelInput := textinput.New()
	modelInput.CharLimit = 100

	searchKeyInput := textinput.New()
	searchKeyInput.Placeholder = "SerpAPI key"
	searchKeyInput.EchoMode = textinput.EchoPassword
	searchKeyInput.EchoCharacter = '•'
	searchKeyInput.CharLimit = 256

	return WizardModel{
		APIKeyInput:    apiKeyInput,
		ModelInput:     modelInput,
		SearchKeyInput: searchKeyInput,
		path:           path,
	}
}

func (m WizardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.Step == StepComplete {
			return m, tea.Quit
		}

		switch key.String() {
		case "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		case "enter":
			m.advance()
			return m, nil
		case "esc":
			m.back()
			return m, nil
		}

		switch m.Step {
		case StepProvider:
			switch key.String() {
			case "1":
				m.selectProvider("gemini")
			case "2":
				m.selectProvider("openai")
			case "q":
				m.Quitting = true
				return m, tea.Quit
			}
			return m, nil
		case StepConfirm:
			switch key.String() {
			case "y", "Y":
				m.ConfigPath, m.Err = m.saveConfig()
				m.Saved = m.Err == nil
				m.Step = StepComplete
			case "n", "N":
				m.Step = StepProvider
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.Step {
	case StepAPIKey:
		m.APIKeyInput, cmd = m.APIKeyInput.Update(msg)
	case StepModel:
		m.ModelInput, cmd = m.ModelInput.Update(msg)
	case StepSearchKey:
		m.SearchKeyInput, cmd = m.SearchKeyInput.Update(msg)
	}
	return m, cmd
}

func (m *WizardModel) selectProvider(provider string) {
	m.Provider = provider
	m.Model = defaultModels[provider]
	m.ModelInput.Placeholder = m.Model
}

func (m *WizardModel) advance() {
	switch m.Step {
	case StepProvider:
		if m.Provider != "" {
			m.focus(StepAPIKey)
		}
	case StepAPIKey:
		if m.APIKey = m.APIKeyInput.Value(); m.APIKey != "" {
			m.focus(StepModel)
		}
	case StepModel:
		if v := m.ModelInput.Value(); v != "" {
			m.Model = v
		}
		m.focus(StepSearchKey)
	case StepSearchKey:
		if m.SearchKey = m.SearchKeyInput.Value(); m.SearchKey != "" {
			m.focus(StepConfirm)
		}
	}
}

func (m *WizardModel) back() {
	switch m.Step {
	case StepAPIKey:
		m.focus(StepProvider)
	case StepModel:
		m.focus(StepAPIKey)
	case StepSearchKey:
		m.focus(StepModel)
	case StepConfirm:
		m.focus(StepSearchKey)
	}
}

// focus moves to step and gives it the keyboard
func (m *WizardModel) focus(step Step) {
	m.Step = step
	m.APIKeyInput.Blur()
	m.ModelInput.Blur()
	m.SearchKeyInput.Blur()
	switch step {
	case StepAPIKey:
		m.APIKeyInput.Focus()
	case StepModel:
		m.ModelInput.Focus()
	case StepSearchKey:
		m.SearchKeyInput.Focus()
	}
}

func (m WizardModel) View() string {
	if m.Quitting {
		return "Exiting...\n"
	}

	if m.Step == StepComplete {
		if m.Err != nil {
			return fmt.Sprintf("\n%s\n\nError saving configuration: %v\n\nPress any key to exit...",
				StyleError.Render("Configuration Failed"), m.Err)
		}
		return fmt.Sprintf("\n%s\n\nConfiguration saved to: %s\n\nPress any key to exit...",
			StyleSuccess.Render("Configuration Saved"), m.ConfigPath)
	}

	s := StyleTitle.Render(" tripagent setup ") + "\n\n"
	s += fmt.Sprintf("Step %d/%d: %s\n\n", int(m.Step)+1, int(StepComplete), m.Step.String())

	switch m.Step {
	case StepProvider:
		s += "Select the reasoning provider:\n\n"
		for i, p := range []string{"gemini", "openai"} {
			prefix := " "
			if m.Provider == p {
				prefix = StyleHighlight.Render(IconSuccess)
			}
			s += fmt.Sprintf("%s %d. %s (default model %s)\n", prefix, i+1, p, defaultModels[p])
		}
	case StepAPIKey:
		s += fmt.Sprintf("Enter your API key for %s:\n\n%s", StyleHighlight.Render(m.Provider), m.APIKeyInput.View())
	case StepModel:
		s += fmt.Sprintf("Enter model name (or press Enter for %s):\n\n%s", StyleHighlight.Render(m.Model), m.ModelInput.View())
	case StepSearchKey:
		s += fmt.Sprintf("Enter your SerpAPI key for hotel and flight lookups:\n\n%s", m.SearchKeyInput.View())
	case StepConfirm:
		s += "Review your configuration:\n\n"
		s += fmt.Sprintf("  Provider:   %s\n", StyleHighlight.Render(m.Provider))
		s += fmt.Sprintf("  Model:      %s\n", StyleHighlight.Render(m.Model))
		s += fmt.Sprintf("  API key:    %s\n", maskSecret(m.APIKey))
		s += fmt.Sprintf("  SerpAPI:    %s\n", maskSecret(m.SearchKey))
		s += fmt.Sprintf("\nSave to %s?", m.targetPath())
	}

	s += "\n\n"
	switch m.Step {
	case StepProvider:
		s += "1-2: Select provider  |  Enter: Continue  |  q: Quit"
	case StepConfirm:
		s += "y: Save  |  n: Start over  |  Esc: Go back"
	default:
		s += "Type input  |  Enter: Continue  |  Esc: Go back  |  Ctrl+C: Quit"
	}
	return s + "\n"
}

// wizardFile is the subset of the config file the wizard writes
type wizardFile struct {
	LLM struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"llm"`
	Search struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"search"`
}

func (m WizardModel) targetPath() string {
	if m.path != "" {
		return m.path
	}
	path, err := config.GlobalConfigPath()
	if err != nil {
		return config.GlobalConfigFile
	}
	return path
}

func (m WizardModel) saveConfig() (string, error) {
	var f wizardFile
	f.LLM.Provider = m.Provider
	f.LLM.Model = m.Model
	f.LLM.APIKey = m.APIKey
	f.Search.APIKey = m.SearchKey

	data, err := yaml.Marshal(&f)
	if err != nil {
		return "", err
	}

	path := m.targetPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	content := append([]byte("# tripagent configuration\n"), data...)
	if err := os.WriteFile(path, content, 0600); err != nil {
		return "", err
	}
	return path, nil
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "••••"
	}
	return s[:4] + "••••" + s[len(s)-4:]
}

// RunWizard runs the setup wizard and reports where the file went
func RunWizard(path string) (WizardModel, error) {
	final, err := tea.NewProgram(NewWizardModel(path)).Run()
	if err != nil {
		return WizardModel{}, err
	}
	return final.(WizardModel), nil
}
