package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/user/tripagent/internal/handlers"
	"github.com/user/tripagent/internal/store"
	"github.com/user/tripagent/internal/tui"
)

var showFormat string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved planning sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(h *handlers.SessionsHandler) error {
			summaries, err := h.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), tui.StyleMuted.Render("No saved sessions."))
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SESSION\tDESTINATION\tDATES\tMESSAGES\tUPDATED")
			for _, s := range summaries {
				dates := s.StartDate
				if s.EndDate != "" {
					dates += " → " + s.EndDate
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.Key, s.Destination, dates, s.Messages, s.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		})
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Print a session as markdown, html or json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(h *handlers.SessionsHandler) error {
			data, err := h.Render(cmd.Context(), args[0], showFormat)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		})
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(h *handlers.SessionsHandler) error {
			if err := h.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.StyleSuccess.Render(tui.IconSuccess+" Deleted "+args[0]))
			return nil
		})
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <session> <file>",
	Short: "Export a session; the format follows the file extension (.md, .html, .json)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(h *handlers.SessionsHandler) error {
			if err := h.Export(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.StyleSuccess.Render(tui.IconSuccess+" Exported to "+args[1]))
			return nil
		})
	},
}

func init() {
	sessionsShowCmd.Flags().StringVarP(&showFormat, "format", "f", handlers.FormatMarkdown, "Output format (markdown, html, json)")

	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd, sessionsExportCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// withSessions opens the configured store for the duration of fn. Only the
// store settings are needed, so no API keys are required.
func withSessions(cmd *cobra.Command, fn func(h *handlers.SessionsHandler) error) error {
	cmdCtx, err := LoadCommandContext(false)
	if err != nil {
		return err
	}
	defer func() { _ = cmdCtx.Logger.Sync() }()

	st, err := store.Open(cmdCtx.Config.Store)
	if err != nil {
		return HandleCommandError(err, nil, false)
	}
	defer func() { _ = st.Close() }()

	h := handlers.NewSessionsHandler(handlers.NewBaseHandler(cmdCtx.Config, cmdCtx.Logger), st, Version)
	return fn(h)
}
