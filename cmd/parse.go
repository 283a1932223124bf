package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tayloree/bonuscli/internal/config"
	"github.com/tayloree/bonuscli/internal/display"
	"github.com/tayloree/bonuscli/internal/feed"
	"github.com/tayloree/bonuscli/internal/filter"
)

var (
	flagFile string
	flagURL  string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a bonus feed and print the offers without storing them",
	Example: `  bonuscli parse --file bonus.json
  bonuscli parse --url https://example.com/bonus.json --json
  bonuscli parse --file bonus.json --category zuivel`,
	Args: cobra.NoArgs,
	RunE: runParse,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Parse a bonus feed and replace the user's stored offers",
	Long: "Parses the feed and replaces every stored offer of --user with the result.\n" +
		"A feed that yields no offers leaves the stored offers untouched.",
	Example: `  bonuscli import --file bonus.json --user alice
  bonuscli import --url https://example.com/bonus.json
  bonuscli import --json`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	for _, c := range []*cobra.Command{parseCmd, importCmd} {
		c.Flags().StringVarP(&flagFile, "file", "f", "", "Read the feed from this file")
		c.Flags().StringVar(&flagURL, "url", "", "Download the feed from this URL")
		rootCmd.AddCommand(c)
	}
	registerOfferFilterFlags(parseCmd.Flags())
}

// commandSource picks --file/--url over the configured feed.
func commandSource(cfg *config.Config) (feed.Source, error) {
	if flagFile != "" && flagURL != "" {
		return nil, invalidArgsError(
			"use either --file or --url, not both",
			"bonuscli import --file bonus.json",
		)
	}
	path, url := cfg.Feed.Path, cfg.Feed.URL
	if flagFile != "" || flagURL != "" {
		path, url = flagFile, flagURL
	}
	src, err := feed.NewSource(path, url, cfg.Feed.Timeout)
	if err != nil {
		return nil, invalidArgsError(
			"please provide --file PATH or --url URL",
			"bonuscli parse --file bonus.json",
			"bonuscli import --url https://example.com/bonus.json",
		)
	}
	return src, nil
}

func runParse(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, err := commandSource(cfg)
	if err != nil {
		return err
	}

	raw, err := src.Load(cmd.Context())
	if err != nil {
		return upstreamError("loading feed", err)
	}
	offers := feed.ParseDocument(raw, log)
	if len(offers) == 0 {
		return notFoundError(
			fmt.Sprintf("no bonus offers found in %s", src),
			"Check that the feed has an \"actie\" or \"bonusnus\" list.",
		)
	}

	offers = filter.Apply(offers, currentFilterOptions())
	if len(offers) == 0 {
		return errNoFilterMatch()
	}
	if flagJSON {
		return display.PrintOffersJSON(cmd.OutOrStdout(), offers)
	}
	display.PrintSourceContext(cmd.OutOrStdout(), src.String())
	display.PrintOffers(cmd.OutOrStdout(), offers)
	return nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	src, err := commandSource(a.cfg)
	if err != nil {
		return err
	}
	raw, err := src.Load(cmd.Context())
	if err != nil {
		return upstreamError("loading feed", err)
	}

	res, err := a.svc.Import(cmd.Context(), a.cfg.User, raw)
	if err != nil {
		return serviceError("importing offers", err)
	}

	if flagJSON {
		return display.PrintImportResultJSON(cmd.OutOrStdout(), res)
	}
	display.PrintSourceContext(cmd.OutOrStdout(), src.String())
	display.PrintImportResult(cmd.OutOrStdout(), res, a.cfg.User)
	return nil
}
