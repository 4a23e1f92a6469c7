package root

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"habitquest/internal/engine"
	"habitquest/internal/ui"
)

func newAcceptCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Accept a quest proposed by a chat assistant (JSON)",
		Long:  "Reads a quest proposal as JSON from --file or stdin and admits it as today's quest.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var p engine.ChatQuestProposal
			if err := json.NewDecoder(r).Decode(&p); err != nil {
				return fmt.Errorf("decode proposal: %w", err)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.AdmitChatQuest(cmd.Context(), a.player, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s → quest #%d\n", ui.Good.Render(ui.IconScroll+" Accepted"), p.Name, res.QuestID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Proposal file (default stdin)")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	var (
		count int
		pick  int
	)

	cmd := &cobra.Command{
		Use:   "suggest <idea>",
		Short: "Draft quest variations from an idea",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || strings.TrimSpace(strings.Join(args, " ")) == "" {
				return errNoIdea
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			idea := strings.Join(args, " ")
			if err := engine.ValidateIdea(idea); err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			gen, err := a.generator(cmd.Context())
			if err != nil {
				return err
			}
			defer gen.Close()

			n := count
			if n <= 0 || n > a.cfg.MaxVariations {
				n = a.cfg.MaxVariations
			}
			drafts, err := gen.Variations(cmd.Context(), idea, n)
			if err != nil {
				return err
			}
			if len(drafts) == 0 {
				return errors.New("no variations drafted")
			}

			out := cmd.OutOrStdout()
			if pick == 0 {
				fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Quest ideas"))
				for i, v := range drafts {
					fmt.Fprintf(out, "%s %s %s\n   %s\n", ui.Key.Render(strconv.Itoa(i+1)+"."), v.Title,
						ui.Muted.Render(fmt.Sprintf("(%s, difficulty %d, %d XP)", v.Category, v.Difficulty, v.XPReward)),
						ui.Muted.Render(v.Description))
				}
				fmt.Fprintln(out, ui.Muted.Render("Accept one with ")+ui.Key.Render("hq suggest --pick N \"...\""))
				return nil
			}
			if pick < 1 || pick > len(drafts) {
				return fmt.Errorf("pick must be between 1 and %d", len(drafts))
			}

			res, err := a.svc.AdmitVariation(cmd.Context(), a.player, drafts[pick-1])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s → quest #%d\n", ui.Good.Render(ui.IconScroll+" Accepted"), drafts[pick-1].Title, res.QuestID)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of variations")
	cmd.Flags().IntVarP(&pick, "pick", "p", 0, "Accept variation N right away")
	return cmd
}
