package root

import (
	"github.com/spf13/cobra"

	"habitquest/internal/tui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI quest board",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return tui.RunBoard(cmd.Context(), a.svc, a.player, cmd.OutOrStdout())
		},
	}

	return cmd
}
