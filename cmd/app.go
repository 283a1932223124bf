package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tayloree/bonuscli/internal/config"
	"github.com/tayloree/bonuscli/internal/feed"
	"github.com/tayloree/bonuscli/internal/logger"
	"github.com/tayloree/bonuscli/internal/service"
	"github.com/tayloree/bonuscli/internal/store"
)

// app bundles what a command needs once configuration is resolved.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  store.OfferStore
	svc    *service.Service
	source feed.Source
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing offer store", "error", err)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flagConfig, cmd.Flags())
	if err != nil {
		return nil, nil, invalidArgsError(err.Error(),
			"bonuscli --driver sqlite --db bonuscli.db",
			"BONUSCLI_USER=alice bonuscli offers",
		)
	}
	log, err := logger.Setup(logger.Config{
		Writer: cmd.ErrOrStderr(),
		Format: cfg.Log.Format,
		Level:  cfg.Log.Level,
	})
	if err != nil {
		return nil, nil, invalidArgsError(err.Error())
	}
	return cfg, log, nil
}

// loadApp resolves configuration and opens the offer store. Callers must
// Close the result.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(store.Config{Driver: cfg.Store.Driver, Path: cfg.Store.Path, Logger: log})
	if err != nil {
		return nil, upstreamError("opening offer store", err)
	}

	src, err := feed.NewSource(cfg.Feed.Path, cfg.Feed.URL, cfg.Feed.Timeout)
	if err != nil && !errors.Is(err, feed.ErrNoSource) {
		st.Close()
		return nil, invalidArgsError(err.Error())
	}

	return &app{
		cfg:    cfg,
		logger: log,
		store:  st,
		svc:    service.New(st, service.Options{Source: src, Logger: log}),
		source: src,
	}, nil
}

// serviceError maps service failures onto CLI errors.
func serviceError(action string, err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyUser):
		return invalidArgsError(err.Error(), "bonuscli offers --user alice")
	case errors.Is(err, feed.ErrNoSource):
		return invalidArgsError(
			action+": no feed configured",
			"bonuscli import --file bonus.json",
			"bonuscli offers --feed-url https://example.com/bonus.json",
		)
	default:
		return upstreamError(action, err)
	}
}
