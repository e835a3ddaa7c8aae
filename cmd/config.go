package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/tripagent/internal/config"
	"github.com/user/tripagent/internal/tui"
	"gopkg.in/yaml.v3"
)

var (
	configSaveSecrets bool
	configInitPath    string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create tripagent configuration",
	Long: `Inspect and create tripagent configuration.

Settings resolve in this order, highest first:
  - command-line flags
  - TRIPAGENT_* environment variables (TRIPAGENT_LLM_API_KEY, ...)
  - project file: .tripagent/config.yaml
  - global file: ~/.tripagent.yaml
  - GOOGLE_API_KEY, OPENAI_API_KEY and SERPAPI_API_KEY
  - built-in defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(".", cliOverrides())
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(maskedConfig(cfg))
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if global, err := config.GlobalConfigPath(); err == nil {
			fmt.Fprintf(out, "global:  %s%s\n", global, existsNote(global))
		}
		project := config.ProjectConfigPath(".")
		fmt.Fprintf(out, "project: %s%s\n", project, existsNote(project))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Run the setup wizard and write the global config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := tui.RunWizard(configInitPath)
		if err != nil {
			return fmt.Errorf("error running setup wizard: %w", err)
		}
		if m.Err != nil {
			return m.Err
		}
		if m.Saved {
			fmt.Fprintln(cmd.OutOrStdout(), tui.StyleSuccess.Render(tui.IconSuccess+" Saved "+m.ConfigPath))
		}
		return nil
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the resolved configuration to .tripagent/config.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(".", cliOverrides())
		if err != nil {
			return err
		}
		path, err := config.SaveProjectConfig(".", cfg, configSaveSecrets)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.StyleSuccess.Render(tui.IconSuccess+" Saved "+path))
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "Write to this file instead of ~/.tripagent.yaml")
	configSaveCmd.Flags().BoolVar(&configSaveSecrets, "include-secrets", false, "Also write API keys")

	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd, configSaveCmd)
	rootCmd.AddCommand(configCmd)
}

func maskedConfig(cfg *config.Config) *config.Config {
	out := *cfg
	out.LLM.APIKey = mask(out.LLM.APIKey)
	out.Search.APIKey = mask(out.Search.APIKey)
	return &out
}

func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "****"
	default:
		return secret[:4] + "****" + secret[len(secret)-4:]
	}
}

func existsNote(path string) string {
	if config.ConfigExists(path) {
		return ""
	}
	return " (not found)"
}
