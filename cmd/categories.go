package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tayloree/bonuscli/internal/display"
	"github.com/tayloree/bonuscli/internal/filter"
	"github.com/tayloree/bonuscli/internal/store"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Count the user's stored offers per category",
	Example: `  bonuscli categories --user alice
  bonuscli categories --week 2024-W12 --json`,
	RunE: runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesCmd.Flags().StringVarP(&flagWeek, "week", "w", "", "Only offers stored for this week")
}

func runCategories(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stored, err := loadOffers(cmd, a)
	if err != nil {
		return err
	}

	counts := filter.Categories(store.Offers(stored))
	out := cmd.OutOrStdout()
	if !flagJSON {
		display.PrintCategories(out, counts, a.cfg.User)
		return nil
	}
	return display.PrintCategoriesJSON(out, counts)
}
