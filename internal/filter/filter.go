// Package filter narrows and orders offer lists for display.
package filter

import (
	"html"
	"strings"

	"github.com/tayloree/bonuscli/internal/bonus"
)

// Options holds all filter criteria.
type Options struct {
	Deals    bool
	Category string
	Store    string
	Query    string
	Sort     string
	Limit    int
}

// Apply filters offers according to opts, sorts them and applies the limit.
// The input slice is not modified.
func Apply(offers []bonus.Offer, opts Options) []bonus.Offer {
	result := offers

	if opts.Deals {
		result = where(result, func(o bonus.Offer) bool {
			return o.HasDiscount() || o.BonusDescription != nil
		})
	}

	if opts.Category != "" {
		m := newCategoryMatcher(opts.Category)
		result = where(result, func(o bonus.Offer) bool {
			return m.matches(o.Category)
		})
	}

	if opts.Store != "" {
		st := strings.ToLower(opts.Store)
		result = where(result, func(o bonus.Offer) bool {
			return strings.Contains(strings.ToLower(o.Store), st)
		})
	}

	if opts.Query != "" {
		q := strings.ToLower(opts.Query)
		result = where(result, func(o bonus.Offer) bool {
			name := strings.ToLower(CleanText(o.Name))
			desc := strings.ToLower(CleanText(o.Description()))
			return strings.Contains(name, q) || strings.Contains(desc, q)
		})
	}

	result = sortOffers(result, opts.Sort)

	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}

	return result
}

// Categories returns a map of category label to offer count.
func Categories(offers []bonus.Offer) map[string]int {
	cats := make(map[string]int)
	for _, o := range offers {
		cats[o.Category]++
	}
	return cats
}

// CleanText unescapes HTML entities and normalizes whitespace.
func CleanText(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func where(offers []bonus.Offer, fn func(bonus.Offer) bool) []bonus.Offer {
	var result []bonus.Offer
	for _, o := range offers {
		if fn(o) {
			result = append(result, o)
		}
	}
	return result
}
