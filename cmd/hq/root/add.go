package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"habitquest/internal/engine"
	"habitquest/internal/ui"
)

func newAddCmd() *cobra.Command {
	var (
		description string
		category    string
		difficulty  string
		baseXP      int
		target      int
		unit        string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a custom quest that repeats every day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := engine.ParseCategory(category)
			if err != nil {
				return err
			}
			diff, err := engine.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.AdmitCustomQuest(cmd.Context(), a.player, engine.CustomQuestProposal{
				Name:           args[0],
				Description:    description,
				Category:       cat,
				Difficulty:     diff,
				BaseXP:         baseXP,
				TargetProgress: target,
				Unit:           unit,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconPlus+" Added"), args[0],
				ui.Muted.Render(fmt.Sprintf("(template #%d, quest #%d)", res.TemplateID, res.QuestID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "m", "", "Quest description")
	cmd.Flags().StringVarP(&category, "category", "c", "custom", "Category (exercise|learning|health|productivity|custom)")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "medium", "Difficulty (easy|medium|hard|extreme or 1-4)")
	cmd.Flags().IntVarP(&baseXP, "xp", "x", 50, "XP reward (10-500)")
	cmd.Flags().IntVarP(&target, "target", "t", 1, "Target progress")
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Progress unit")

	return cmd
}

func newCustomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custom",
		Short: "Manage custom quests",
	}
	cmd.AddCommand(newCustomListCmd(), newCustomEditCmd(), newCustomRemoveCmd())
	return cmd
}

func newCustomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List custom quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.svc.CustomQuests(cmd.Context(), a.player)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No custom quests. Create one with "+ui.Key.Render("hq add")+"."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconScroll, "Custom quests"))
			for _, t := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s %s\n", ui.Muted.Render(fmt.Sprintf("#%d", t.ID)), t.Name,
					ui.Muted.Render(fmt.Sprintf("(%s, %s, %d XP, %d %s)", t.Category, t.Difficulty, t.BaseXP, t.TargetProgress, t.Unit)))
			}
			return nil
		},
	}
}

func newCustomEditCmd() *cobra.Command {
	var (
		name        string
		description string
		category    string
		difficulty  string
		baseXP      int
		target      int
		unit        string
	)

	cmd := &cobra.Command{
		Use:   "edit <template_id>",
		Short: "Edit a custom quest; today's quest keeps its values",
		Args:  idArgs("template_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch engine.CustomQuestPatch
			f := cmd.Flags()
			if f.Changed("name") {
				patch.Name = &name
			}
			if f.Changed("description") {
				patch.Description = &description
			}
			if f.Changed("category") {
				c, err := engine.ParseCategory(category)
				if err != nil {
					return err
				}
				patch.Category = &c
			}
			if f.Changed("difficulty") {
				d, err := engine.ParseDifficulty(difficulty)
				if err != nil {
					return err
				}
				patch.Difficulty = &d
			}
			if f.Changed("xp") {
				patch.BaseXP = &baseXP
			}
			if f.Changed("target") {
				patch.TargetProgress = &target
			}
			if f.Changed("unit") {
				patch.Unit = &unit
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.svc.UpdateCustomQuest(cmd.Context(), a.player, parseID(args[0]), patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render("Updated"), t.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Quest name")
	cmd.Flags().StringVarP(&description, "description", "m", "", "Quest description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty")
	cmd.Flags().IntVarP(&baseXP, "xp", "x", 0, "XP reward (10-500)")
	cmd.Flags().IntVarP(&target, "target", "t", 0, "Target progress")
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Progress unit")

	return cmd
}

func newCustomRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <template_id>",
		Short: "Stop scheduling a custom quest",
		Args:  idArgs("template_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.DeactivateCustomQuest(cmd.Context(), a.player, parseID(args[0])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("Removed"))
			return nil
		},
	}
}
