package cmd

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/handlers"
	"github.com/user/tripagent/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat <session> [message]",
	Short: "Continue a saved trip plan",
	Long: `Continue a planning session with follow-up requests.

With a message, one round runs and the answer is printed. Without one, an
interactive chat opens on the session; type /quit or press Esc to leave.

Examples:
  tripagent chat 3f2a... "swap day 2 and day 3"
  tripagent chat 3f2a...`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cmdCtx, err := LoadCommandContext(true)
	if err != nil {
		return err
	}
	defer func() { _ = cmdCtx.Logger.Sync() }()

	rt, err := handlers.NewRuntime(cmdCtx.Config, cmdCtx.Logger)
	if err != nil {
		return HandleCommandError(err, nil, false)
	}
	defer func() { _ = rt.Close() }()

	ctx, cancel := signalContext()
	defer cancel()

	key := args[0]
	if len(args) == 1 {
		return chatInteractive(ctx, rt, key)
	}

	out, err := handlers.NewChatHandler(rt).Handle(ctx, key, args[1])
	if out == nil {
		return HandleCommandError(err, nil, false)
	}
	printOutcome(cmd.OutOrStdout(), out)
	return err
}

// chatInteractive opens the chat UI on key, seeded with the answers so far
func chatInteractive(ctx context.Context, rt *handlers.Runtime, key string) error {
	chat := handlers.NewChatHandler(rt)

	history, err := chat.History(ctx, key)
	if err != nil {
		return HandleCommandError(err, nil, false)
	}

	send := func(ctx context.Context, text string) (tui.Reply, error) {
		out, err := chat.Handle(ctx, key, text)
		if out == nil {
			return tui.Reply{}, stderrors.New(userMessage(err))
		}
		reply := tui.Reply{Answer: out.Answer, Incomplete: out.Incomplete, Lookups: out.Lookups}
		if err != nil && !errors.IsUnboundedLoop(err) {
			return reply, stderrors.New(userMessage(err))
		}
		return reply, nil
	}

	title := "tripagent · " + key
	if rec, ok, err := rt.Store.Load(ctx, key); err == nil && ok && strings.TrimSpace(rec.Session.Destination) != "" {
		title = "tripagent · " + rec.Session.Destination
	}
	return tui.RunChat(ctx, title, send, history...)
}
