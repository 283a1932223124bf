package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/tayloree/bonuscli/internal/bonus"
)

const offerPrefix = "offer:"

// BadgerStore keeps offers as JSON values under offer:<user>:<id>.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerRecord carries the insertion position so equal names keep their
// import order.
type badgerRecord struct {
	StoredOffer
	Seq int `json:"seq"`
}

// OpenBadger opens or creates a badger database in dir.
func OpenBadger(dir string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	logger = orDefault(logger)
	logger.Debug("badger database opened", "path", dir)
	return &BadgerStore{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func userPrefix(userID string) []byte {
	return []byte(offerPrefix + url.QueryEscape(userID) + ":")
}

// ReplaceAllOffers swaps the user's offers inside one badger transaction.
func (s *BadgerStore) ReplaceAllOffers(ctx context.Context, userID string, offers []bonus.Offer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prefix := userPrefix(userID)
	now := time.Now().UTC()

	var deleted int
	err := s.db.Update(func(txn *badger.Txn) error {
		var stale [][]byte
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete offer: %w", err)
			}
		}
		deleted = len(stale)

		for i, o := range offers {
			id, err := newOfferID()
			if err != nil {
				return err
			}
			rec := badgerRecord{
				StoredOffer: StoredOffer{ID: id, UserID: userID, Offer: o, CreatedAt: now},
				Seq:         i,
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal offer: %w", err)
			}
			if err := txn.Set(append(append([]byte{}, prefix...), id...), data); err != nil {
				return fmt.Errorf("set offer: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace offers: %w", err)
	}

	s.logger.Debug("replaced offers", "user_id", userID, "deleted", deleted, "inserted", len(offers))
	return nil
}

// GetOffers returns the user's offers ordered by name, then import order.
func (s *BadgerStore) GetOffers(ctx context.Context, userID, week string) ([]StoredOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := userPrefix(userID)

	var records []badgerRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec badgerRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode offer: %w", err)
			}
			if week != "" && (rec.Week == nil || *rec.Week != week) {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].Seq < records[j].Seq
	})

	var offers []StoredOffer
	for _, rec := range records {
		offers = append(offers, rec.StoredOffer)
	}
	return offers, nil
}
