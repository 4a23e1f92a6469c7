package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"habitquest/internal/engine"
	"habitquest/internal/ui"
)

func newWeeklyCmd() *cobra.Command {
	var (
		count   int
		history bool
	)

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Record this week's reward (or show past rewards)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()

			if history {
				list, err := a.svc.WeeklyRewardHistory(ctx, a.player, engine.DefaultWeeklyHistorySize)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Heading(ui.IconCalendar, "Weekly rewards"))
				for _, w := range list {
					fmt.Fprintf(out, "- %d-W%02d  %d quests  %d XP  %s\n", w.Year, w.Week, w.QuestsCompleted, w.TotalXPEarned, ui.Gold.Render(fmt.Sprintf("+%d bonus", w.BonusXP)))
				}
				return nil
			}

			n := count
			if !cmd.Flags().Changed("count") {
				n, err = a.svc.CompletionsThisWeek(ctx, a.player)
				if err != nil {
					return err
				}
			}
			w, err := a.svc.CalculateWeeklyReward(ctx, a.player, n)
			if err != nil {
				return err
			}
			week := a.svc.ThisWeek()
			fmt.Fprintf(out, "%s %d-W%02d: %d quests, %d XP earned, %s\n", ui.Good.Render(ui.IconTrophy+" Weekly reward"),
				w.Year, w.Week, w.QuestsCompleted, w.TotalXPEarned, ui.Gold.Render(fmt.Sprintf("+%d bonus XP", w.BonusXP)))
			fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("Week of %s to %s", week.Start.Format("Mon Jan 02"), week.End.AddDate(0, 0, -1).Format("Mon Jan 02"))))
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Quests completed (default: completions in the last 7 days)")
	cmd.Flags().BoolVar(&history, "history", false, "Show past weekly rewards")
	return cmd
}
