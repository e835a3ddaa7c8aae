package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/tripagent/internal/errors"
)

// Version is stamped into exported documents
var Version = "0.3.0"

var (
	debugFlag       bool
	verboseFlag     bool
	providerFlag    string
	modelFlag       string
	storeDriverFlag string
	storePathFlag   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tripagent",
	Short: "Tool-augmented travel itinerary planner",
	Long: `Plan day-by-day trips with a reasoning model that looks up real
hotels and flights while it writes your itinerary.

Start a session with "tripagent plan", refine it with "tripagent chat",
and manage saved sessions with "tripagent sessions".`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the error's exit code
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var shown silentError
		if !stderrors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, userMessage(err))
		}
		os.Exit(errors.ExitCodeOf(err).Int())
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show detailed log output instead of progress UI")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "Reasoning provider (gemini, openai)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Reasoning model name")
	rootCmd.PersistentFlags().StringVar(&storeDriverFlag, "store", "", "Session store (memory, file, sqlite)")
	rootCmd.PersistentFlags().StringVar(&storePathFlag, "store-path", "", "Session store location")
}
