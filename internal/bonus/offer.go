// Package bonus reconstructs retailer bonus offers from a flattened feed of
// promotional text fragments, classifies products into grocery categories and
// matches free-text grocery item names against the reconstructed offers.
package bonus

import "fmt"

// Fragment is one promotional text token from the raw feed. Fragments that
// share a URL belong to the same offer.
type Fragment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Offer is a reconstructed bonus offer for a single product.
type Offer struct {
	Name             string   `json:"name"`
	Store            string   `json:"store"`
	Price            *float64 `json:"price"`
	OriginalPrice    *float64 `json:"original_price"`
	Discount         *float64 `json:"discount"` // never populated by the parser
	DiscountPercent  *int     `json:"discount_percentage"`
	BonusDescription *string  `json:"bonus_description"`
	Category         string   `json:"category"`
	URL              string   `json:"url"`
	Week             *string  `json:"week"`
}

// HasDiscount reports whether both prices are known and the offer is cheaper
// than the regular price.
func (o Offer) HasDiscount() bool {
	return o.Price != nil && o.OriginalPrice != nil && *o.OriginalPrice > *o.Price
}

// Description returns the bonus description or "" when none was reconstructed.
func (o Offer) Description() string {
	if o.BonusDescription == nil {
		return ""
	}
	return *o.BonusDescription
}

// BadgeText is the short label shown next to a matched grocery item.
func (o Offer) BadgeText() string {
	switch {
	case o.BonusDescription != nil && *o.BonusDescription != "":
		return *o.BonusDescription
	case o.DiscountPercent != nil && *o.DiscountPercent != 0:
		return fmt.Sprintf("%d%% korting", *o.DiscountPercent)
	case o.Discount != nil && *o.Discount != 0:
		return fmt.Sprintf("€%.2f korting", *o.Discount)
	default:
		return "Bonus " + storeShortName(o.Store)
	}
}

func storeShortName(store string) string {
	if store == defaultStore || store == "" {
		return "AH"
	}
	return store
}

// Deref safely dereferences a float pointer, returning 0 for nil.
func Deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
