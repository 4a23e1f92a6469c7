package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"habitquest/internal/ui"
)

const Version = "0.1.0"

var (
	flagDB     string
	flagPlayer int64
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hq",
		Short:         "HabitQuest: daily quests with RPG progression",
		Long:          "HabitQuest turns daily habits into quests. Completing them earns XP, levels and attributes; failing them costs HP and your streak.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (overrides HQ_DB_PATH)")
	cmd.PersistentFlags().Int64Var(&flagPlayer, "player", 0, "Player ID (overrides HQ_PLAYER_ID)")

	cmd.AddCommand(
		newStartCmd(),
		newListCmd(),
		newProgressCmd(),
		newDoCmd(),
		newFailCmd(),
		newSweepCmd(),
		newAddCmd(),
		newCustomCmd(),
		newAcceptCmd(),
		newSuggestCmd(),
		newWeeklyCmd(),
		newStatusCmd(),
		newLeaderboardCmd(),
		newNotificationsCmd(),
		newMotivateCmd(),
		newBoardCmd(),
		newServeCmd(),
	)
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
