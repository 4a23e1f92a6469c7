package root

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"habitquest/internal/storage"
	"habitquest/internal/ui"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Open today's quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			quests, err := a.svc.StartDay(cmd.Context(), a.player)
			if err != nil {
				return err
			}
			printQuests(cmd.OutOrStdout(), quests)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List today's quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			quests, err := a.svc.TodayQuests(cmd.Context(), a.player)
			if err != nil {
				return err
			}
			if len(quests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No quests yet today. Run "+ui.Key.Render("hq start")+"."))
				return nil
			}
			printQuests(cmd.OutOrStdout(), quests)
			return nil
		},
	}
}

func printQuests(w io.Writer, quests []storage.Quest) {
	fmt.Fprintln(w, ui.Heading(ui.IconCalendar, "Today's quests"))
	for _, q := range quests {
		unit := q.Unit
		if unit != "" {
			unit = " " + unit
		}
		fmt.Fprintf(w, "%s %s %s %s %d/%d%s %s\n",
			ui.StatusIcon(q.Status),
			ui.Muted.Render(fmt.Sprintf("#%d", q.ID)),
			q.Name,
			ui.Bar(q.CurrentProgress, q.TargetProgress, 10),
			q.CurrentProgress, q.TargetProgress, unit,
			ui.Muted.Render(fmt.Sprintf("(+%d XP, %s, %s)", q.XPReward, ui.DifficultyText(q.Difficulty), ui.StatusText(q.Status))),
		)
	}
}

// idArgs validates that the first n args are positive integers.
func idArgs(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != len(names) {
			return fmt.Errorf("expected %d argument(s): %v", len(names), names)
		}
		for i, a := range args {
			if _, err := strconv.ParseInt(a, 10, 64); err != nil {
				return fmt.Errorf("%s must be an integer", names[i])
			}
		}
		return nil
	}
}

func parseID(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}

var errNoIdea = errors.New("idea is required")
