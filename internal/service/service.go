// Package service wires feed parsing to offer persistence and answers
// per-user match queries.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tayloree/bonuscli/internal/bonus"
	"github.com/tayloree/bonuscli/internal/feed"
	"github.com/tayloree/bonuscli/internal/store"
	"golang.org/x/sync/singleflight"
)

// MessageNoNewData is reported when an import parsed zero offers and the
// stored offers were left untouched.
const MessageNoNewData = "no new data to import"

// ErrEmptyUser is returned for operations called without a user ID.
var ErrEmptyUser = errors.New("user id is required")

// ImportResult summarizes one import.
type ImportResult struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// Badge is the match decision for one grocery item.
type Badge struct {
	Item  string       `json:"item"`
	Offer *bonus.Offer `json:"offer"`
	Label string       `json:"label,omitempty"`
}

// Options configures a Service.
type Options struct {
	// Source feeds AutoImport and EnsureOffers. Nil disables both.
	Source feed.Source
	Logger *slog.Logger
}

// Service serializes offer writes per user and deduplicates concurrent
// auto-imports.
type Service struct {
	store   store.OfferStore
	source  feed.Source
	logger  *slog.Logger
	flights singleflight.Group

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Service over st.
func New(st store.OfferStore, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		source: opts.Source,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func checkUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUser
	}
	return nil
}

// Import parses raw and replaces the user's offers with the result. A feed
// that yields no offers leaves the stored offers untouched.
func (s *Service) Import(ctx context.Context, userID string, raw []byte) (ImportResult, error) {
	if err := checkUser(userID); err != nil {
		return ImportResult{}, err
	}
	s.logger.Info("starting bonus import", "user_id", userID, "bytes", len(raw))
	offers := feed.ParseDocument(raw, s.logger)
	return s.save(ctx, userID, offers)
}

// AutoImport loads the configured source and imports it. Concurrent calls
// for one user share a single load.
func (s *Service) AutoImport(ctx context.Context, userID string) (ImportResult, error) {
	if err := checkUser(userID); err != nil {
		return ImportResult{}, err
	}
	if s.source == nil {
		return ImportResult{}, fmt.Errorf("auto-import: %w", feed.ErrNoSource)
	}

	v, err, shared := s.flights.Do(userID, func() (any, error) {
		s.logger.Info("starting auto-import", "user_id", userID, "source", s.source.String())
		raw, err := s.source.Load(ctx)
		if err != nil {
			return ImportResult{}, fmt.Errorf("loading feed: %w", err)
		}
		offers := feed.ParseDocument(raw, s.logger)
		for i, o := range offers {
			if i == 5 {
				break
			}
			s.logger.Debug("sample parsed offer", "name", o.Name, "category", o.Category, "price", bonus.Deref(o.Price))
		}
		return s.save(ctx, userID, offers)
	})
	if shared {
		s.logger.Debug("auto-import shared with concurrent caller", "user_id", userID)
	}
	return v.(ImportResult), err
}

func (s *Service) save(ctx context.Context, userID string, offers []bonus.Offer) (ImportResult, error) {
	if len(offers) == 0 {
		s.logger.Info("no bonus offers parsed", "user_id", userID)
		return ImportResult{Count: 0, Message: MessageNoNewData}, nil
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.ReplaceAllOffers(ctx, userID, offers); err != nil {
		return ImportResult{}, fmt.Errorf("saving offers: %w", err)
	}
	s.logger.Info("imported bonus offers", "user_id", userID, "count", len(offers))
	return ImportResult{Count: len(offers), Message: fmt.Sprintf("imported %d offers", len(offers))}, nil
}

// Offers returns the user's stored offers, optionally for one week.
func (s *Service) Offers(ctx context.Context, userID, week string) ([]store.StoredOffer, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	offers, err := s.store.GetOffers(ctx, userID, week)
	if err != nil {
		return nil, fmt.Errorf("loading offers: %w", err)
	}
	return offers, nil
}

// EnsureOffers returns the user's offers, auto-importing first when none are
// stored and a source is configured.
func (s *Service) EnsureOffers(ctx context.Context, userID string) ([]store.StoredOffer, error) {
	offers, err := s.Offers(ctx, userID, "")
	if err != nil || len(offers) > 0 || s.source == nil {
		return offers, err
	}
	if _, err := s.AutoImport(ctx, userID); err != nil {
		return nil, err
	}
	return s.Offers(ctx, userID, "")
}

// Suggestions returns the matching offer for productName, if any.
func (s *Service) Suggestions(ctx context.Context, userID, productName string) ([]bonus.Offer, error) {
	stored, err := s.Offers(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	if match := bonus.FindMatch(productName, store.Offers(stored)); match != nil {
		return []bonus.Offer{*match}, nil
	}
	return []bonus.Offer{}, nil
}

// Badges decides, for every grocery item in names, which offer (if any) it
// is on sale under.
func (s *Service) Badges(ctx context.Context, userID string, names []string) ([]Badge, error) {
	stored, err := s.EnsureOffers(ctx, userID)
	if err != nil {
		return nil, err
	}
	offers := store.Offers(stored)

	badges := make([]Badge, 0, len(names))
	for _, name := range names {
		b := Badge{Item: name}
		if match := bonus.FindMatch(name, offers); match != nil {
			m := *match
			b.Offer = &m
			b.Label = m.BadgeText()
		}
		badges = append(badges, b)
	}
	return badges, nil
}
