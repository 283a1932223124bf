package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tayloree/bonuscli/internal/display"
)

var matchCmd = &cobra.Command{
	Use:   "match NAME...",
	Short: "Show which grocery items are on bonus",
	Long: "Matches each grocery item name against the user's stored offers and prints the\n" +
		"bonus badge of the first matching offer, if any.",
	Example: `  bonuscli match "halfvolle melk" pindakaas
  bonuscli match kipfilet --user alice --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

var categorizeCmd = &cobra.Command{
	Use:   "categorize NAME...",
	Short: "Classify product names into grocery categories",
	Example: `  bonuscli categorize "Goudse kaas" Pindakaas
  bonuscli categorize "Haribo winegums" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCategorize,
}

func init() {
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(categorizeCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	badges, err := a.svc.Badges(cmd.Context(), a.cfg.User, args)
	if err != nil {
		return serviceError("matching items", err)
	}

	if flagJSON {
		return display.PrintMatchesJSON(cmd.OutOrStdout(), badges)
	}
	display.PrintMatches(cmd.OutOrStdout(), badges)
	return nil
}

func runCategorize(cmd *cobra.Command, args []string) error {
	if flagJSON {
		return display.PrintCategorizedJSON(cmd.OutOrStdout(), args)
	}
	display.PrintCategorized(cmd.OutOrStdout(), args)
	return nil
}
