package bonus

import (
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	minMainNameLength = 10
	maxSanePrice      = 1000
	defaultStore      = "Albert Heijn"
)

var (
	reDecimal = regexp.MustCompile(`^\d+\.\d+$`)
	reInteger = regexp.MustCompile(`^\d+$`)
)

// mainNameBlocklist disqualifies a fragment from being the product name when
// its lowercased text contains any of these substrings. A product literally
// named "Zakje chips" loses its only long fragment to "zak" and is dropped.
var mainNameBlocklist = []string{
	"voor", "korting", "gratis", "halve", "prijs", "per", "zak", "bak", "stuk",
	"stuks", "pak", "pakken", "blik", "blikken", "fles", "flessen", "liter",
	"gram", "kilo", "euro", "€", "vandaag", "hele", "week", "uitgelicht", "bijv",
	"los", "bakje", "doos", "doosje", "set", "sets", "multipack", "krat",
	"kratten",
}

var multiBuyTags = map[string]bool{
	"1+1": true,
	"2+1": true,
	"3+1": true,
	"2+2": true,
	"3+2": true,
}

// storeDomains maps URL host suffixes to store names.
var storeDomains = map[string]string{
	"ah.nl": "Albert Heijn",
}

// ParseOptions configures ParseOffers.
type ParseOptions struct {
	Logger *slog.Logger
}

// ParseOffers groups fragments by URL and reconstructs one Offer per group
// that has a usable product name. Groups without one are dropped. The result
// preserves the order in which URLs first appear.
func ParseOffers(fragments []Fragment) []Offer {
	return ParseOffersWith(fragments, ParseOptions{})
}

// ParseOffersWith is ParseOffers with explicit options.
func ParseOffersWith(fragments []Fragment, opts ParseOptions) []Offer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	groups := groupByURL(fragments)
	offers := make([]Offer, 0, len(groups))
	for _, g := range groups {
		offer, ok := reconstruct(g.url, g.fragments)
		if !ok {
			logger.Debug("skipping offer without product name", "url", g.url, "fragments", len(g.fragments))
			continue
		}
		offers = append(offers, offer)
	}

	logger.Info("parsed bonus offers", "offers", len(offers), "fragments", len(fragments), "urls", len(groups))
	return offers
}

type fragmentGroup struct {
	url       string
	fragments []Fragment
}

func groupByURL(fragments []Fragment) []fragmentGroup {
	index := make(map[string]int)
	var groups []fragmentGroup
	for _, f := range fragments {
		i, ok := index[f.URL]
		if !ok {
			i = len(groups)
			index[f.URL] = i
			groups = append(groups, fragmentGroup{url: f.URL})
		}
		groups[i].fragments = append(groups[i].fragments, f)
	}
	return groups
}

func reconstruct(rawURL string, fragments []Fragment) (Offer, bool) {
	main, ok := findMainFragment(fragments)
	if !ok {
		return Offer{}, false
	}

	words := collectBonusWords(fragments)
	prices := collectPrices(fragments)

	offer := Offer{
		Name:     main.Name,
		Store:    storeForURL(rawURL),
		URL:      rawURL,
		Category: Categorize(main.Name),
	}

	if desc := bonusDescription(words, prices); desc != "" {
		offer.BonusDescription = &desc
	}

	sane := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p > 0 && p < maxSanePrice {
			sane = append(sane, p)
		}
	}
	if len(sane) > 0 {
		low := minFloat(sane)
		offer.Price = &low
	}
	if len(sane) > 1 {
		high := maxFloat(sane)
		offer.OriginalPrice = &high
	}
	if offer.HasDiscount() {
		pct := int(math.Round((*offer.OriginalPrice - *offer.Price) / *offer.OriginalPrice * 100))
		offer.DiscountPercent = &pct
	}

	return offer, true
}

func findMainFragment(fragments []Fragment) (Fragment, bool) {
	for _, f := range fragments {
		if utf8.RuneCountInString(f.Name) <= minMainNameLength {
			continue
		}
		if containsAny(strings.ToLower(f.Name), mainNameBlocklist) {
			continue
		}
		return f, true
	}
	return Fragment{}, false
}

func collectBonusWords(fragments []Fragment) []string {
	var words []string
	for i, f := range fragments {
		lower := strings.ToLower(f.Name)

		switch {
		case multiBuyTags[f.Name]:
			words = append(words, f.Name)
		case strings.Contains(lower, "gratis"):
			words = append(words, "gratis")
		case strings.Contains(lower, "korting") && !strings.Contains(lower, "bezorg"):
			if i > 0 && isDiscountAmount(fragments[i-1].Name) {
				words = append(words, fragments[i-1].Name+" korting")
			}
		case strings.Contains(lower, "voor") && isVoorDeal(fragments, i):
			words = append(words, fmt.Sprintf("%s voor €%s",
				strings.TrimSpace(fragments[i-1].Name), strings.TrimSpace(fragments[i+1].Name)))
		case strings.Contains(lower, "halve prijs"):
			words = append(words, "2e halve prijs")
		case strings.Contains(lower, "per") && containsAny(lower, []string{"zak", "bak", "stuk"}):
			words = append(words, f.Name)
		}
	}
	return words
}

// isVoorDeal reports whether fragment i sits between an item count and a
// decimal price, as in "2", "voor", "5.00". Other fragments mentioning
// "voor" fall through to the remaining phrase rules.
func isVoorDeal(fragments []Fragment, i int) bool {
	if i == 0 || i == len(fragments)-1 {
		return false
	}
	return reInteger.MatchString(strings.TrimSpace(fragments[i-1].Name)) &&
		reDecimal.MatchString(strings.TrimSpace(fragments[i+1].Name))
}

func isDiscountAmount(name string) bool {
	trimmed := strings.TrimSpace(name)
	return strings.HasSuffix(trimmed, "%") || strings.Contains(trimmed, "€")
}

func collectPrices(fragments []Fragment) []float64 {
	var prices []float64
	for _, f := range fragments {
		lower := strings.ToLower(f.Name)
		if !reDecimal.MatchString(lower) || strings.Contains(lower, "week") {
			continue
		}
		p, err := strconv.ParseFloat(lower, 64)
		if err != nil {
			continue
		}
		prices = append(prices, p)
	}
	return prices
}

// bonusDescription joins recognised bonus words. Without any, two or more
// prices are read as a multi-buy deal at the lowest price.
func bonusDescription(words []string, prices []float64) string {
	if len(words) > 0 {
		return strings.Join(words, " ")
	}
	if len(prices) >= 2 {
		return fmt.Sprintf("%d voor €%.2f", len(prices), minFloat(prices))
	}
	return ""
}

func storeForURL(rawURL string) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)
	for domain, name := range storeDomains {
		if strings.Contains(host, domain) {
			return name
		}
	}
	return defaultStore
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func minFloat(vals []float64) float64 {
	best := vals[0]
	for _, v := range vals[1:] {
		if v < best {
			best = v
		}
	}
	return best
}

func maxFloat(vals []float64) float64 {
	best := vals[0]
	for _, v := range vals[1:] {
		if v > best {
			best = v
		}
	}
	return best
}
