package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/tui"
)

var airportsCmd = &cobra.Command{
	Use:   "airports",
	Short: "Inspect the city to airport code table used for flight lookups",
}

var airportsLookupCmd = &cobra.Command{
	Use:   "lookup <city>...",
	Short: "Print the IATA code the planner would use for each city",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAirportsLookup,
}

func init() {
	airportsCmd.AddCommand(airportsLookupCmd)
	rootCmd.AddCommand(airportsCmd)
}

func runAirportsLookup(cmd *cobra.Command, args []string) error {
	cmdCtx, err := LoadCommandContext(false)
	if err != nil {
		return err
	}
	defer func() { _ = cmdCtx.Logger.Sync() }()

	airports := session.DefaultAirportMap()
	if path := cmdCtx.Config.Airports.Path; path != "" {
		airports, err = session.LoadAirportMap(path)
		if err != nil {
			return errors.NewConfigurationError(err.Error())
		}
	}

	missing := 0
	for _, city := range args {
		code, ok := airports.Lookup(city)
		if !ok {
			missing++
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tui.StyleWarning.Render(tui.IconWarning), strings.TrimSpace(city)+": no airport code")
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", tui.StyleSuccess.Render(tui.IconSuccess), strings.TrimSpace(city), tui.StyleHighlight.Render(code))
	}

	if missing > 0 {
		return errors.NewError(fmt.Sprintf("%d of %d cities have no airport code", missing, len(args)), errors.ExitValidationError)
	}
	return nil
}
