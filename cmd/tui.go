package cmd

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tayloree/bonuscli/internal/bonus"
	"github.com/tayloree/bonuscli/internal/display"
	"github.com/tayloree/bonuscli/internal/filter"
	"github.com/tayloree/bonuscli/internal/store"
	"golang.org/x/term"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse stored offers interactively, grouped by category",
	Example: `  bonuscli tui --user alice
  bonuscli tui --category zuivel --sort discount`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	registerOfferFilterFlags(tuiCmd.Flags())
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}
	if !flagJSON && !isInteractiveSession(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return invalidArgsError(
			"`bonuscli tui` requires an interactive terminal",
			"Use `bonuscli offers --json` in pipelines.",
		)
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	load := func(context.Context) ([]bonus.Offer, error) {
		stored, err := loadOffers(cmd, a)
		return store.Offers(stored), err
	}

	// --json skips the browser and prints what it would have shown first.
	if flagJSON {
		offers, err := load(cmd.Context())
		if err != nil {
			return err
		}
		return display.PrintOffersJSON(cmd.OutOrStdout(), filter.Apply(offers, currentFilterOptions()))
	}

	program := tea.NewProgram(
		newLoadingOffersTUIModel(tuiLoadConfig{
			ctx:         cmd.Context(),
			userLabel:   "user " + a.cfg.User,
			load:        load,
			initialOpts: currentFilterOptions(),
		}),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(offersTUIModel); ok {
		return m.fatalErr
	}
	return nil
}

// isInteractiveSession reports whether both ends of the session are terminals.
func isInteractiveSession(stdin io.Reader, stdout io.Writer) bool {
	in, ok := stdin.(*os.File)
	return ok && term.IsTerminal(int(in.Fd())) && isTTY(stdout)
}
