// Package store persists reconstructed bonus offers per user.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/tayloree/bonuscli/internal/bonus"
)

// Supported backend drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown store driver")

// StoredOffer is an offer as persisted for one user.
type StoredOffer struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	bonus.Offer
	CreatedAt time.Time `json:"created_at"`
}

// OfferStore holds the current offer set of each user.
type OfferStore interface {
	// ReplaceAllOffers atomically swaps the user's offers for offers.
	ReplaceAllOffers(ctx context.Context, userID string, offers []bonus.Offer) error
	// GetOffers returns the user's offers ordered by name. An empty week
	// returns every offer.
	GetOffers(ctx context.Context, userID, week string) ([]StoredOffer, error)
	Close() error
}

// Config selects and locates a backend.
type Config struct {
	Driver string
	Path   string
	Logger *slog.Logger
}

// Open opens the backend named by cfg.Driver.
func Open(cfg Config) (OfferStore, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		s, err := OpenSQLite(cfg.Path, cfg.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverBadger:
		s, err := OpenBadger(cfg.Path, cfg.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Offers strips storage metadata.
func Offers(stored []StoredOffer) []bonus.Offer {
	out := make([]bonus.Offer, len(stored))
	for i, s := range stored {
		out[i] = s.Offer
	}
	return out
}

func newOfferID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate offer id: %w", err)
	}
	return "bon-" + id, nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
