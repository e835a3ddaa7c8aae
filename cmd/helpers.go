package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/user/tripagent/internal/config"
	"github.com/user/tripagent/internal/handlers"
	"github.com/user/tripagent/internal/logging"
	"github.com/user/tripagent/internal/tui"
)

// CommandContext holds common resources used by CLI commands
type CommandContext struct {
	Config *config.Config

	// Logger is the configured logger for the command
	Logger *logging.Logger

	// ShowProgress indicates whether to show progress UI (true) or verbose output (false)
	ShowProgress bool
}

// InitLogger creates the command logger from the logging section of cfg.
// With verbose set, console output replaces the progress UI.
func InitLogger(cfg config.LoggingConfig, debug bool, verbose bool) (*logging.Logger, error) {
	consoleLevel := cfg.ConsoleLevel
	if verbose {
		consoleLevel = "debug"
	}

	logCfg := &logging.Config{
		LogDir:         cfg.LogDir,
		FileLevel:      logging.LevelFromString(cfg.FileLevel),
		ConsoleLevel:   logging.LevelFromString(consoleLevel),
		EnableCaller:   debug,
		ConsoleEnabled: verbose,
		FileEnabled:    cfg.LogDir != "",
	}

	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// cliOverrides maps persistent flags onto config keys; unset flags are
// skipped by the loader.
func cliOverrides() map[string]interface{} {
	overrides := map[string]interface{}{
		"llm.provider": providerFlag,
		"llm.model":    modelFlag,
		"store.driver": storeDriverFlag,
		"store.path":   storePathFlag,
	}
	if debugFlag {
		overrides["debug"] = true
	}
	return overrides
}

// LoadCommandContext loads configuration and the logger. needKeys demands the
// provider and SerpAPI keys a planning round needs; otherwise only the store
// settings are checked.
func LoadCommandContext(needKeys bool) (*CommandContext, error) {
	cfg, err := config.Load(".", cliOverrides())
	if err != nil {
		return nil, err
	}

	if needKeys {
		err = cfg.Validate()
	} else {
		err = cfg.ValidateStore()
	}
	if err != nil {
		return nil, err
	}

	logger, err := InitLogger(cfg.Logging, debugFlag || cfg.Debug, verboseFlag)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Config:       cfg,
		Logger:       logger,
		ShowProgress: !verboseFlag,
	}, nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// userMessage prefers an error's user-facing message when it has one
func userMessage(err error) string {
	var friendly interface{ GetUserMessage() string }
	if stderrors.As(err, &friendly) {
		return friendly.GetUserMessage()
	}
	return err.Error()
}

// HandleCommandError reports err through the progress UI or stderr and
// returns it unchanged for exit code handling.
func HandleCommandError(err error, progress *tui.SimpleProgress, showProgress bool) error {
	if err == nil {
		return nil
	}

	if showProgress && progress != nil {
		progress.Failed(stderrors.New(userMessage(err)))
	} else {
		fmt.Fprintln(os.Stderr, userMessage(err))
	}
	return silentError{err}
}

// silentError has already been shown to the user
type silentError struct{ error }

func (e silentError) Unwrap() error { return e.error }

// printOutcome writes the answer and what the CLI knows about it
func printOutcome(w io.Writer, out *handlers.Outcome) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.TrimSpace(out.Answer))
	fmt.Fprintln(w)

	if out.Incomplete {
		fmt.Fprintln(w, tui.StyleWarning.Render(tui.IconWarning+" Planning stopped at the round limit; the answer above may be partial."))
	}
	if len(out.Warnings) > 0 {
		lines := make([]string, 0, len(out.Warnings)+1)
		lines = append(lines, tui.StyleWarning.Render("Itinerary layout issues"))
		for _, warning := range out.Warnings {
			lines = append(lines, tui.IconBullet+" "+warning.Error())
		}
		fmt.Fprintln(w, tui.StyleBox.Render(strings.Join(lines, "\n")))
	}

	fmt.Fprintf(w, "%s %s %s\n",
		tui.StyleMuted.Render("session"),
		tui.StyleHighlight.Render(out.SessionKey),
		tui.StyleMuted.Render(fmt.Sprintf("(%d rounds, %d lookups)", out.Rounds, out.Lookups)),
	)
}
