package filter

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tayloree/bonuscli/internal/bonus"
)

// Sort modes accepted by Options.Sort.
const (
	SortRelevance = ""
	SortDiscount  = "discount"
	SortPrice     = "price"
	SortName      = "name"
)

var (
	rePercent  = regexp.MustCompile(`(\d{1,3})\s*%`)
	reMultiBuy = regexp.MustCompile(`\b(\d)\+(\d)\b`)
	reCountFor = regexp.MustCompile(`(\d+) voor €(\d+(?:\.\d{1,2})?)`)
)

// DealScore estimates the saving of an offer in percent, for ranking. The
// computed discount wins; otherwise the bonus description is interpreted.
func DealScore(o bonus.Offer) float64 {
	if o.DiscountPercent != nil {
		return float64(*o.DiscountPercent)
	}

	text := strings.ToLower(CleanText(o.Description()))
	if m := rePercent.FindStringSubmatch(text); m != nil {
		if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
			return pct
		}
	}
	if m := reMultiBuy.FindStringSubmatch(text); m != nil {
		paid, _ := strconv.ParseFloat(m[1], 64)
		free, _ := strconv.ParseFloat(m[2], 64)
		if paid+free > 0 {
			return free / (paid + free) * 100
		}
	}
	if strings.Contains(text, "halve prijs") {
		return 25
	}
	if m := reCountFor.FindStringSubmatch(text); m != nil && o.OriginalPrice != nil && *o.OriginalPrice > 0 {
		count, _ := strconv.ParseFloat(m[1], 64)
		total, _ := strconv.ParseFloat(m[2], 64)
		regular := count * *o.OriginalPrice
		if regular > total {
			return (regular - total) / regular * 100
		}
	}
	if strings.Contains(text, "gratis") {
		return 50
	}
	if text != "" {
		return 0.01
	}
	return 0
}

// NormalizeSortMode maps user input to one of the Sort* modes. Unknown
// input falls back to relevance.
func NormalizeSortMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "discount", "savings", "korting", "deal":
		return SortDiscount
	case "price", "prijs", "cheapest":
		return SortPrice
	case "name", "naam", "alpha", "az":
		return SortName
	default:
		return SortRelevance
	}
}

// IsSortMode reports whether raw names a known sort mode. Empty input and
// "relevance" select the default order.
func IsSortMode(raw string) bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	return v == "" || v == "relevance" || NormalizeSortMode(v) != SortRelevance
}

func sortOffers(offers []bonus.Offer, raw string) []bonus.Offer {
	mode := NormalizeSortMode(raw)
	if mode == SortRelevance || len(offers) < 2 {
		return offers
	}

	out := make([]bonus.Offer, len(offers))
	copy(out, offers)

	var less func(a, b bonus.Offer) bool
	switch mode {
	case SortDiscount:
		less = func(a, b bonus.Offer) bool { return DealScore(a) > DealScore(b) }
	case SortPrice:
		less = func(a, b bonus.Offer) bool {
			if (a.Price == nil) != (b.Price == nil) {
				return a.Price != nil
			}
			return bonus.Deref(a.Price) < bonus.Deref(b.Price)
		}
	case SortName:
		less = func(a, b bonus.Offer) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
