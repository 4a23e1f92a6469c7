package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"habitquest/internal/ui"
)

func newNotificationsCmd() *cobra.Command {
	var (
		unread bool
		markID int64
	)

	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Show notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if markID > 0 {
				if err := a.svc.MarkNotificationRead(ctx, a.player, markID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("Marked as read"))
				return nil
			}

			list, err := a.svc.Notifications(ctx, a.player, unread)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing new."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconBell, "Notifications"))
			for _, n := range list {
				title := n.Title
				if !n.Read {
					title = ui.Key.Render(title)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n   %s\n",
					ui.Muted.Render(fmt.Sprintf("#%d %s", n.ID, n.CreatedAt.In(a.svc.Location()).Format("Jan 02 15:04"))),
					title, ui.Muted.Render("["+n.Type+"]"), n.Content)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&unread, "unread", "u", false, "Only unread notifications")
	cmd.Flags().Int64Var(&markID, "read", 0, "Mark notification ID as read")
	return cmd
}

func newMotivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "motivate",
		Short: "Send yourself a motivational message",
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
			gen, err := a.generator(ctx)
			if err != nil {
				return err
			}
			defer gen.Close()

			msg, err := gen.Motivation(ctx, *p)
			if err != nil {
				return err
			}
			if err := a.svc.SendMotivation(ctx, a.player, "Daily motivation", msg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Gold.Render(ui.IconSparkle+" "+msg))
			return nil
		},
	}
}
