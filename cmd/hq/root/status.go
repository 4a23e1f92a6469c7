package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"habitquest/internal/engine"
	"habitquest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show player stats, streak and achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.svc.Player(ctx, a.player)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			toNext := max(0, p.XPToNextLevel-p.XP)

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Player Status"))
			if p.Name != "" {
				fmt.Fprintln(out, ui.LabelValue("Name", p.Name))
			}
			fmt.Fprintln(out, ui.LabelValue("Level", p.Level))
			fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d/%d %s %s", p.XP, p.XPToNextLevel, ui.Bar(p.XP, p.XPToNextLevel, 20), ui.Muted.Render(fmt.Sprintf("(%d to go)", toNext)))))
			fmt.Fprintln(out, ui.LabelValue(ui.IconHeart+" HP", fmt.Sprintf("%d/%d %s", p.HP, p.MaxHP, ui.Bar(p.HP, p.MaxHP, 20))))
			fmt.Fprintln(out, ui.LabelValue(ui.IconMana+" MP", fmt.Sprintf("%d/%d %s", p.MP, p.MaxMP, ui.Bar(p.MP, p.MaxMP, 20))))
			fmt.Fprintln(out, ui.LabelValue(ui.IconFire+" Streak", fmt.Sprintf("%d %s", p.CurrentStreak, ui.Muted.Render(fmt.Sprintf("(best %d)", p.LongestStreak)))))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("📊 Attributes"))
			fmt.Fprintf(out, "- 💪 STR %d   ❤️ VIT %d   🏃 AGI %d\n", p.Strength, p.Vitality, p.Agility)
			fmt.Fprintf(out, "- 🧠 INT %d   🧘 WIS %d   🍀 LCK %d\n", p.Intelligence, p.Wisdom, p.Luck)
			fmt.Fprintln(out, "")

			checker, err := a.svc.AchievementProgress(ctx, a.player)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("%s Achievements (%d/%d)", ui.IconTrophy, checker.CountEarned(), checker.CountTotal())))
			for _, ach := range checker.GetAchievements() {
				mark := ui.Muted.Render("🔒")
				name := ui.Muted.Render(ach.Name)
				if ach.Earned {
					mark = ach.Icon
					name = ui.Gold.Render(ach.Name)
				}
				fmt.Fprintf(out, "- %s %s %s\n", mark, name, ui.Muted.Render(ach.Description))
			}

			penalties, err := a.svc.Penalties(ctx, a.player, 3)
			if err != nil {
				return err
			}
			if len(penalties) > 0 {
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, ui.H2.Render(ui.IconFailed+" Recent penalties"))
				for _, pen := range penalties {
					fmt.Fprintf(out, "- %s %s %s\n", pen.AppliedAt.In(a.svc.Location()).Format("2006-01-02"), ui.Bad.Render(fmt.Sprintf("-%d HP", pen.HPLost)),
						ui.Muted.Render(fmt.Sprintf("(%s, streak %d lost)", pen.Reason, pen.StreakLost)))
				}
			}
			return nil
		},
	}

	return cmd
}

func newLeaderboardCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top players",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			players, err := a.svc.Leaderboard(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconTrophy, "Leaderboard"))
			for i, p := range players {
				name := p.Name
				if name == "" {
					name = fmt.Sprintf("player %d", p.ID)
				}
				line := fmt.Sprintf("%2d. %s  L%d  %d XP", i+1, name, p.Level, p.XP)
				if p.ID == a.player {
					line = ui.Gold.Render(line)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", engine.DefaultLeaderboardSize, "Number of players")
	return cmd
}
