package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/bonuscli/internal/bonus"
	"github.com/tayloree/bonuscli/internal/store"
)

func fptr(f float64) *float64 { return &f }
func sptr(s string) *string   { return &s }
func iptr(i int) *int         { return &i }

func sampleOffers() []bonus.Offer {
	return []bonus.Offer{
		{
			Name: "Halfvolle melk", Store: "Albert Heijn", Price: fptr(1.09),
			BonusDescription: sptr("1+1"), Category: bonus.CategoryZuivel, URL: "u1",
		},
		{
			Name: "Diepvries Pizza Margherita", Store: "Albert Heijn", Price: fptr(2.99),
			OriginalPrice: fptr(3.99), DiscountPercent: iptr(25),
			BonusDescription: sptr("2 voor €2.99"), Category: bonus.CategoryBrood, URL: "u2",
		},
		{
			Name: "Appels", Store: "Albert Heijn", Category: bonus.CategoryFruit, URL: "u3",
			Week: sptr("2026-42"),
		},
	}
}

func backends(t *testing.T) map[string]func(t *testing.T) store.OfferStore {
	return map[string]func(t *testing.T) store.OfferStore{
		"sqlite": func(t *testing.T) store.OfferStore {
			s, err := store.Open(store.Config{Driver: store.DriverSQLite, Path: ":memory:"})
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"badger": func(t *testing.T) store.OfferStore {
			s, err := store.Open(store.Config{Driver: store.DriverBadger, Path: t.TempDir()})
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestOfferStore_RoundTrip(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			require.NoError(t, s.ReplaceAllOffers(ctx, "alice", sampleOffers()))

			got, err := s.GetOffers(ctx, "alice", "")
			require.NoError(t, err)
			require.Len(t, got, 3)

			assert.Equal(t, "Appels", got[0].Name)
			assert.Equal(t, "Diepvries Pizza Margherita", got[1].Name)
			assert.Equal(t, "Halfvolle melk", got[2].Name)

			pizza := got[1]
			assert.NotEmpty(t, pizza.ID)
			assert.Equal(t, "alice", pizza.UserID)
			assert.False(t, pizza.CreatedAt.IsZero())
			assert.InDelta(t, 2.99, *pizza.Price, 1e-9)
			assert.InDelta(t, 3.99, *pizza.OriginalPrice, 1e-9)
			assert.Equal(t, 25, *pizza.DiscountPercent)
			assert.Nil(t, pizza.Discount)
			assert.Nil(t, pizza.Week)
			assert.Equal(t, "2 voor €2.99", pizza.Description())

			melk := got[2]
			assert.Nil(t, melk.OriginalPrice)
			assert.Nil(t, melk.DiscountPercent)
		})
	}
}

func TestOfferStore_ReplaceDropsPreviousOffers(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			require.NoError(t, s.ReplaceAllOffers(ctx, "alice", sampleOffers()))
			require.NoError(t, s.ReplaceAllOffers(ctx, "alice", sampleOffers()[:1]))

			got, err := s.GetOffers(ctx, "alice", "")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Halfvolle melk", got[0].Name)

			require.NoError(t, s.ReplaceAllOffers(ctx, "alice", nil))
			got, err = s.GetOffers(ctx, "alice", "")
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestOfferStore_UsersAreIsolated(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			require.NoError(t, s.ReplaceAllOffers(ctx, "alice", sampleOffers()))
			require.NoError(t, s.ReplaceAllOffers(ctx, "alice:bob", sampleOffers()[:1]))
			require.NoError(t, s.ReplaceAllOffers(ctx, "bob", nil))

			alice, err := s.GetOffers(ctx, "alice", "")
			require.NoError(t, err)
			assert.Len(t, alice, 3)

			other, err := s.GetOffers(ctx, "alice:bob", "")
			require.NoError(t, err)
			assert.Len(t, other, 1)

			bob, err := s.GetOffers(ctx, "bob", "")
			require.NoError(t, err)
			assert.Empty(t, bob)
		})
	}
}

func TestOfferStore_WeekFilter(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			require.NoError(t, s.ReplaceAllOffers(ctx, "alice", sampleOffers()))

			got, err := s.GetOffers(ctx, "alice", "2026-42")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Appels", got[0].Name)

			got, err = s.GetOffers(ctx, "alice", "2026-01")
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestOfferStore_DuplicateNamesKeepImportOrder(t *testing.T) {
	offers := []bonus.Offer{
		{Name: "Melk", Store: "Albert Heijn", Category: bonus.CategoryZuivel, URL: "first"},
		{Name: "Melk", Store: "Albert Heijn", Category: bonus.CategoryZuivel, URL: "second"},
	}
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, s.ReplaceAllOffers(context.Background(), "alice", offers))

			got, err := s.GetOffers(context.Background(), "alice", "")
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "first", got[0].URL)
			assert.Equal(t, "second", got[1].URL)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := store.Open(store.Config{Driver: "postgres"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrUnknownDriver))
}

func TestOffers(t *testing.T) {
	stored := []store.StoredOffer{{ID: "x", Offer: bonus.Offer{Name: "Melk"}}}
	assert.Equal(t, []bonus.Offer{{Name: "Melk"}}, store.Offers(stored))
}
