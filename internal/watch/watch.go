// Package watch re-imports a bonus export whenever the file on disk changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tayloree/bonuscli/internal/feed"
	"github.com/tayloree/bonuscli/internal/service"
)

// DefaultSettleDelay is how long a file must stay quiet before it is
// re-imported.
const DefaultSettleDelay = 500 * time.Millisecond

// Importer replaces a user's offers with a raw export.
type Importer interface {
	Import(ctx context.Context, userID string, raw []byte) (service.ImportResult, error)
}

// Options configures a Watcher.
type Options struct {
	Path        string
	UserID      string
	SettleDelay time.Duration
	Logger      *slog.Logger
}

// Watcher monitors one feed file. The parent directory is watched so that
// editors replacing the file by rename are still seen.
type Watcher struct {
	path     string
	userID   string
	settle   time.Duration
	importer Importer
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
}

// New starts watching opts.Path. Call Run to process events.
func New(importer Importer, opts Options) (*Watcher, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("watch: %w", feed.ErrNoSource)
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", opts.Path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:     path,
		userID:   opts.UserID,
		settle:   opts.SettleDelay,
		importer: importer,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Run processes file events until ctx is cancelled, then releases the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.logger.Info("watching feed file", "path", w.path, "user_id", w.userID)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				timer.Reset(w.settle)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		case <-fire:
			fire = nil
			w.reimport(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *Watcher) reimport(ctx context.Context) {
	raw, err := feed.LoadFile(w.path)
	if err != nil {
		w.logger.Warn("failed to read feed file", "path", w.path, "error", err)
		return
	}
	res, err := w.importer.Import(ctx, w.userID, raw)
	if err != nil {
		w.logger.Error("re-import failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("re-imported feed file", "path", w.path, "count", res.Count, "message", res.Message)
}
