package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tayloree/bonuscli/internal/server"
	"github.com/tayloree/bonuscli/internal/watch"
	"golang.org/x/sync/errgroup"
)

var (
	flagAddr  string
	flagWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the offer store over HTTP",
	Long: "Starts a JSON HTTP API over the offer store. With --watch the configured feed\n" +
		"file is re-imported for --user whenever it changes on disk.",
	Example: `  bonuscli serve --addr :8080
  bonuscli serve --feed bonus.json --watch --user alice`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default :8080)")
	serveCmd.Flags().BoolVar(&flagWatch, "watch", false, "Re-import the --feed file when it changes")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagWatch && a.cfg.Feed.Path == "" {
		return invalidArgsError(
			"--watch needs a feed file",
			"bonuscli serve --feed bonus.json --watch",
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.svc, server.Options{
		Logger:    a.logger,
		RateLimit: a.cfg.Server.RateLimit,
		RateBurst: a.cfg.Server.RateBurst,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, a.cfg.Server.Addr) })

	if flagWatch {
		w, err := watch.New(a.svc, watch.Options{
			Path:   a.cfg.Feed.Path,
			UserID: a.cfg.User,
			Logger: a.logger,
		})
		if err != nil {
			stop()
			_ = g.Wait()
			return upstreamError("watching feed", err)
		}
		g.Go(func() error { return w.Run(ctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return upstreamError("serving", err)
	}
	return nil
}
