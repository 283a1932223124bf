package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tayloree/bonuscli/internal/display"
	"github.com/tayloree/bonuscli/internal/filter"
	"github.com/tayloree/bonuscli/internal/store"
)

var (
	flagConfig   string
	flagDB       string
	flagDriver   string
	flagUser     string
	flagLogLevel string
	flagFeed     string
	flagFeedURL  string
	flagJSON     bool

	flagCategory string
	flagQuery    string
	flagWeek     string
	flagSort     string
	flagLimit    int
	flagDeals    bool
)

var rootCmd = &cobra.Command{
	Use:   "bonuscli",
	Short: "Parse, store and match Albert Heijn bonus offers",
	Long: "CLI tool that reconstructs weekly bonus offers from a flattened promotional feed,\n" +
		"stores them per user and tells you which items on a grocery list are on sale.\n\n" +
		"Without a subcommand it lists the stored offers of --user.\n\n" +
		"Agent-friendly mode: minor syntax issues are auto-corrected when intent is clear " +
		"(for example: -user alice, user=alice, --usr alice).",
	Example: `  bonuscli import --file bonus.json
  bonuscli --category zuivel --sort discount
  bonuscli match "halfvolle melk" pindakaas
  bonuscli categorize "Goudse kaas"
  bonuscli serve --addr :8080 --watch`,
	RunE: runOffers,
}

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "List stored bonus offers",
	Example: `  bonuscli offers --user alice
  bonuscli offers --category dairy --deals --limit 10
  bonuscli offers --week 2024-W12 --json`,
	RunE: runOffers,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default ./bonuscli.yaml)")
	pf.StringVar(&flagDB, "db", "", "Offer store path (default bonuscli.db)")
	pf.StringVar(&flagDriver, "driver", "", "Offer store backend: sqlite or badger")
	pf.StringVarP(&flagUser, "user", "u", "", "User whose offers to read or replace")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&flagFeed, "feed", "", "Feed file used for auto-import")
	pf.StringVar(&flagFeedURL, "feed-url", "", "Feed URL used for auto-import")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")

	registerOfferFilterFlags(rootCmd.Flags())
	registerOfferFilterFlags(offersCmd.Flags())
	rootCmd.AddCommand(offersCmd)
}

// Execute runs the root command.
func Execute() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	resetCLIState()

	normalizedArgs, notes := normalizeCLIArgs(args)
	for _, note := range notes {
		display.PrintWarning(stderr, "note: "+note)
	}

	if len(normalizedArgs) == 0 {
		if err := printQuickStart(stdout, !isTTY(stdout)); err != nil {
			cliErr := classifyCLIError(err)
			display.PrintError(stderr, formatCLIErrorText(cliErr))
			return cliErr.ExitCode
		}
		return ExitSuccess
	}

	if shouldAutoJSON(normalizedArgs, isTTY(stdout)) {
		normalizedArgs = withJSONFlag(normalizedArgs)
	}

	setCommandIO(rootCmd, stdout, stderr)
	rootCmd.SetArgs(normalizedArgs)

	if err := rootCmd.Execute(); err != nil {
		cliErr := classifyCLIError(err)
		if hasJSONPreference(normalizedArgs) {
			if jerr := printCLIErrorJSON(stderr, cliErr); jerr != nil {
				display.PrintError(stderr, formatCLIErrorText(classifyCLIError(jerr)))
				return ExitInternal
			}
		} else {
			display.PrintError(stderr, formatCLIErrorText(cliErr))
		}
		return cliErr.ExitCode
	}
	return ExitSuccess
}

func setCommandIO(cmd *cobra.Command, stdout, stderr io.Writer) {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	for _, child := range cmd.Commands() {
		setCommandIO(child, stdout, stderr)
	}
}

// resetCLIState clears flag values between runCLI calls. Cobra keeps the
// Changed bit on flags it parsed before, so that is reset too.
func resetCLIState() {
	flagConfig = ""
	flagDB = ""
	flagDriver = ""
	flagUser = ""
	flagLogLevel = ""
	flagFeed = ""
	flagFeedURL = ""
	flagJSON = false

	flagCategory = ""
	flagQuery = ""
	flagWeek = ""
	flagSort = ""
	flagLimit = 0
	flagDeals = false

	flagFile = ""
	flagURL = ""
	flagAddr = ""
	flagWatch = false

	resetFlagsChanged(rootCmd)
}

func resetFlagsChanged(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) { f.Changed = false }
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlagsChanged(child)
	}
}

func registerOfferFilterFlags(f *pflag.FlagSet) {
	f.StringVarP(&flagCategory, "category", "c", "", "Filter by category (e.g., zuivel, dairy, vlees)")
	f.StringVarP(&flagQuery, "query", "q", "", "Search offers by keyword in name/description")
	f.StringVarP(&flagWeek, "week", "w", "", "Only offers stored for this week")
	f.StringVar(&flagSort, "sort", "", "Sort offers by relevance, discount, price, or name")
	f.IntVarP(&flagLimit, "limit", "n", 0, "Limit number of results (0 = all)")
	f.BoolVar(&flagDeals, "deals", false, "Show only offers with a bonus phrase or a price cut")
}

func validateSortMode() error {
	if filter.IsSortMode(flagSort) {
		return nil
	}
	return invalidArgsError(
		"invalid value for --sort (use relevance, discount, price, or name)",
		"bonuscli offers --sort discount",
		"bonuscli offers --sort price",
	)
}

func currentFilterOptions() filter.Options {
	return filter.Options{
		Deals:    flagDeals,
		Category: flagCategory,
		Query:    flagQuery,
		Sort:     flagSort,
		Limit:    flagLimit,
	}
}

// loadOffers reads the user's offers, auto-importing on first use when a
// feed is configured.
func loadOffers(cmd *cobra.Command, a *app) ([]store.StoredOffer, error) {
	var (
		stored []store.StoredOffer
		err    error
	)
	if flagWeek != "" {
		stored, err = a.svc.Offers(cmd.Context(), a.cfg.User, flagWeek)
	} else {
		stored, err = a.svc.EnsureOffers(cmd.Context(), a.cfg.User)
	}
	if err != nil {
		return nil, serviceError("loading offers", err)
	}
	if len(stored) == 0 {
		return nil, notFoundError(
			fmt.Sprintf("no bonus offers stored for %s", a.cfg.User),
			"bonuscli import --file bonus.json",
			"bonuscli offers --feed bonus.json",
		)
	}
	return stored, nil
}

func errNoFilterMatch() error {
	return notFoundError(
		"no offers match your filters",
		"Relax filters like --category/--query/--deals.",
	)
}

func runOffers(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stored, err := loadOffers(cmd, a)
	if err != nil {
		return err
	}

	offers := filter.Apply(store.Offers(stored), currentFilterOptions())
	if len(offers) == 0 {
		return errNoFilterMatch()
	}

	if flagJSON {
		return display.PrintOffersJSON(cmd.OutOrStdout(), offers)
	}
	display.PrintOffers(cmd.OutOrStdout(), offers)
	return nil
}
