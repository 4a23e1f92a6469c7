package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"habitquest/internal/storage"
	"habitquest/internal/ui"
)

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <quest_id>",
		Short: "Complete a quest",
		Args:  idArgs("quest_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.CompleteQuest(cmd.Context(), a.player, parseID(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s +%d XP %s\n", ui.Good.Render(ui.IconDone+" Quest complete"), res.XPGained,
				ui.Muted.Render(fmt.Sprintf("(streak %d)", res.Streak)))
			if !res.Gains.IsZero() {
				fmt.Fprintln(out, ui.Muted.Render(formatAttributes("+", res.Gains)))
			}
			if res.LeveledUp {
				fmt.Fprintf(out, "%s %s\n", ui.BadgeLevelUp, ui.Gold.Render(fmt.Sprintf("Level %d", res.NewLevel)))
			}
			for _, ach := range res.NewlyEarned {
				fmt.Fprintf(out, "%s %s %s\n", ui.Gold.Render(ui.IconTrophy+" Achievement"), ach.Icon, ach.Name)
			}
			return nil
		},
	}
	return cmd
}

func newFailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fail <quest_id>",
		Short: "Give up on a quest and take the penalty",
		Args:  idArgs("quest_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.FailQuest(cmd.Context(), a.player, parseID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -%d HP, streak %d lost\n", ui.Bad.Render(ui.IconFailed+" Quest failed"), res.HPLost, res.StreakLost)
			return nil
		},
	}
}

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <quest_id> <amount>",
		Short: "Record progress on a quest",
		Args:  idArgs("quest_id", "amount"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			q, err := a.svc.RecordProgress(cmd.Context(), a.player, parseID(args[0]), int(parseID(args[1])))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d/%d\n", ui.H2.Render(q.Name), ui.Bar(q.CurrentProgress, q.TargetProgress, 20), q.CurrentProgress, q.TargetProgress)
			if q.CurrentProgress >= q.TargetProgress {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Muted.Render("Target reached. Claim it with"), ui.Key.Render(fmt.Sprintf("hq do %d", q.ID)))
			}
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Fail every overdue quest",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			failed, err := a.svc.FailOverdue(cmd.Context(), a.player)
			if err != nil {
				return err
			}
			if len(failed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("No overdue quests."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d overdue quest(s) failed %v\n", ui.Warn.Render(ui.IconWarn), len(failed), failed)
			return nil
		},
	}
}

func formatAttributes(sign string, a storage.Attributes) string {
	return fmt.Sprintf("STR %s%d  VIT %s%d  AGI %s%d  INT %s%d  WIS %s%d  LCK %s%d",
		sign, a.Strength, sign, a.Vitality, sign, a.Agility,
		sign, a.Intelligence, sign, a.Wisdom, sign, a.Luck)
}
