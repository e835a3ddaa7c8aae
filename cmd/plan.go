package cmd

import (
	"github.com/spf13/cobra"
	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/handlers"
	"github.com/user/tripagent/internal/logging"
	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/tui"
)

var (
	planOrigin      string
	planDestination string
	planStart       string
	planEnd         string
	planBudget      string
	planAdults      int
	planChildren    int
	planInterests   string
	planAvoid       string
	planSession     string
	planOutput      string
	planChat        bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Start a new trip plan",
	Long: `Start a planning session from a trip form and print the itinerary.

The planner searches hotels and flights for the trip as it writes the plan.
Fields left out of the form are left to the model to ask about or assume.

Examples:
  tripagent plan --from Madrid --to Paris --start 2025-07-01 --end 2025-07-05 --budget low --adults 2
  tripagent plan --to Lisbon --interests "food, tiles" --output lisbon.html`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planOrigin, "from", "", "Departure city")
	planCmd.Flags().StringVar(&planDestination, "to", "", "Destination city (required)")
	planCmd.Flags().StringVar(&planStart, "start", "", "Start date (YYYY-MM-DD)")
	planCmd.Flags().StringVar(&planEnd, "end", "", "End date (YYYY-MM-DD)")
	planCmd.Flags().StringVar(&planBudget, "budget", "medium", "Budget tier (low, medium, high)")
	planCmd.Flags().IntVar(&planAdults, "adults", 1, "Number of adults")
	planCmd.Flags().IntVar(&planChildren, "children", 0, "Number of children")
	planCmd.Flags().StringVar(&planInterests, "interests", "", "Things you want to do")
	planCmd.Flags().StringVar(&planAvoid, "avoid", "", "Things to avoid")
	planCmd.Flags().StringVar(&planSession, "session", "", "Session key (default: random)")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "Also export the session (.md, .html or .json)")
	planCmd.Flags().BoolVar(&planChat, "chat", false, "Keep refining the plan interactively afterwards")
	_ = planCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(planCmd)
}

// planForm builds the trip form; counts are only set when given
func planForm(cmd *cobra.Command) session.Context {
	form := session.Context{
		Origin:      planOrigin,
		Destination: planDestination,
		StartDate:   planStart,
		EndDate:     planEnd,
		Budget:      session.ParseBudgetTier(planBudget),
		Interests:   planInterests,
		Avoid:       planAvoid,
	}
	if cmd.Flags().Changed("adults") {
		form.Adults = session.IntPtr(planAdults)
	}
	if cmd.Flags().Changed("children") {
		form.Children = session.IntPtr(planChildren)
	}
	return form
}

func runPlan(cmd *cobra.Command, args []string) error {
	cmdCtx, err := LoadCommandContext(true)
	if err != nil {
		return err
	}
	defer func() { _ = cmdCtx.Logger.Sync() }()

	var simple *tui.SimpleProgress
	if cmdCtx.ShowProgress {
		simple = tui.NewSimpleProgress("tripagent")
		simple.Start()
		simple.Step("Planning a trip to " + planDestination)
	}

	rt, err := handlers.NewRuntime(cmdCtx.Config, cmdCtx.Logger)
	if err != nil {
		return HandleCommandError(err, simple, cmdCtx.ShowProgress)
	}
	defer func() { _ = rt.Close() }()

	ctx, cancel := signalContext()
	defer cancel()

	var lookups *tui.Progress
	if cmdCtx.ShowProgress {
		lookups = tui.NewProgress("Lookups")
		rt.Invoker.SetProgressReporter(lookups)
		lookups.Start()
	}

	out, err := handlers.NewPlanHandler(rt).Handle(ctx, planSession, planForm(cmd))
	if lookups != nil {
		lookups.Stop()
		lookups.PrintSummary()
		rt.Invoker.SetProgressReporter(nil)
	}
	if out == nil {
		return HandleCommandError(err, simple, cmdCtx.ShowProgress)
	}

	printOutcome(cmd.OutOrStdout(), out)
	if err != nil && !errors.IsUnboundedLoop(err) {
		return HandleCommandError(err, simple, cmdCtx.ShowProgress)
	}

	if planOutput != "" {
		sessions := handlers.NewSessionsHandler(rt.BaseHandler, rt.Store, Version)
		if exportErr := sessions.Export(ctx, out.SessionKey, planOutput); exportErr != nil {
			return HandleCommandError(exportErr, simple, cmdCtx.ShowProgress)
		}
		if simple != nil {
			simple.Success("Exported to " + planOutput)
		}
	}

	cmdCtx.Logger.Info("Plan finished",
		logging.String("session", out.SessionKey),
		logging.Int("rounds", out.Rounds),
		logging.Bool("incomplete", out.Incomplete),
	)

	if planChat {
		return chatInteractive(ctx, rt, out.SessionKey)
	}
	if simple != nil {
		simple.Info("Continue with: tripagent chat " + out.SessionKey)
	}

	// A capped round still printed its partial answer; report it by exit code
	return err
}
