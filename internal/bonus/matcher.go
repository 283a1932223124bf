package bonus

import (
	"strings"
	"unicode/utf8"
)

// stopWords are function and unit words that never identify a product.
var stopWords = map[string]bool{
	"ah": true, "alle": true, "bijv": true, "voor": true, "van": true,
	"de": true, "het": true, "een": true, "en": true, "of": true,
	"met": true, "zonder": true, "gram": true, "kilo": true, "liter": true,
	"stuk": true, "stuks": true, "pak": true, "pakken": true, "zak": true,
	"zakken": true, "bak": true, "bakken": true, "fles": true, "flessen": true,
	"blik": true, "blikken": true, "doos": true, "dozen": true, "set": true,
	"sets": true,
}

// misleadingWords are always dropped from offer names; they cause false
// matches against compound product names.
var misleadingWords = map[string]bool{
	"kaas": true,
	"wine": true,
}

// compoundExceptions lists, per misleading word, the substrings of a product
// name that make the bare word meaningless for that product.
var compoundExceptions = map[string][]string{
	"kaas": {"pindakaas", "notenkaas"},
	"wine": {"winegums", "wine"},
}

// excludedCategoryPairs rejects a candidate outright when the product falls in
// the first category and the offer in the second.
var excludedCategoryPairs = [][2]string{
	{CategoryBroodbeleg, CategoryZuivel},
	{CategorySnoep, CategoryAlcohol},
}

const (
	minTokenLength       = 3
	minMultiTokenOverlap = 2
)

// IsCompoundExceptionFor reports whether word should be ignored in a product
// name because fullName contains a compound that gives it another meaning,
// e.g. "kaas" inside "pindakaas".
func IsCompoundExceptionFor(word, fullName string) bool {
	for _, compound := range compoundExceptions[word] {
		if strings.Contains(fullName, compound) {
			return true
		}
	}
	return false
}

// IsExcludedCategoryPair reports whether a product in productCategory must
// never match an offer in offerCategory.
func IsExcludedCategoryPair(productCategory, offerCategory string) bool {
	for _, pair := range excludedCategoryPairs {
		if pair[0] == productCategory && pair[1] == offerCategory {
			return true
		}
	}
	return false
}

// ProductTokens returns the significant tokens of a normalized product name.
func ProductTokens(normalized string) []string {
	return significantTokens(normalized, func(word string) bool {
		return misleadingWords[word] && IsCompoundExceptionFor(word, normalized)
	})
}

// OfferTokens returns the significant tokens of a lowercased offer name.
func OfferTokens(lowerName string) []string {
	return significantTokens(lowerName, func(word string) bool {
		return misleadingWords[word]
	})
}

func significantTokens(s string, drop func(string) bool) []string {
	var out []string
	for _, word := range strings.Fields(s) {
		if utf8.RuneCountInString(word) < minTokenLength || stopWords[word] {
			continue
		}
		if drop(word) {
			continue
		}
		out = append(out, word)
	}
	return out
}

// FindMatch returns the first offer that matches productName, or nil.
// Offers are tried in order; an exact (case-insensitive) name match wins
// immediately.
func FindMatch(productName string, offers []Offer) *Offer {
	normalized := strings.ToLower(strings.TrimSpace(productName))
	productCategory := Categorize(normalized)
	productTokens := ProductTokens(normalized)

	for i := range offers {
		offer := &offers[i]
		offerName := strings.ToLower(offer.Name)
		if offerName == normalized {
			return offer
		}

		offerCategory := offer.Category
		if offerCategory == "" {
			offerCategory = Categorize(offerName)
		}
		if IsExcludedCategoryPair(productCategory, offerCategory) {
			continue
		}

		offerTokens := OfferTokens(offerName)
		if countOverlap(productTokens, offerTokens) >= minMultiTokenOverlap {
			return offer
		}
		if len(productTokens) == 1 && singleTokenMatch(productTokens[0], offerTokens) {
			return offer
		}
	}
	return nil
}

// countOverlap counts distinct product tokens that match any offer token.
func countOverlap(productTokens, offerTokens []string) int {
	seen := make(map[string]bool, len(productTokens))
	for _, pt := range productTokens {
		if seen[pt] {
			continue
		}
		for _, ot := range offerTokens {
			if tokensOverlap(pt, ot, 4) {
				seen[pt] = true
				break
			}
		}
	}
	return len(seen)
}

func singleTokenMatch(token string, offerTokens []string) bool {
	for _, ot := range offerTokens {
		if tokensOverlap(token, ot, 3) {
			return true
		}
	}
	return false
}

// tokensOverlap reports whether a and b are equal, or both longer than
// minLen runes with one containing the other.
func tokensOverlap(a, b string, minLen int) bool {
	if a == b {
		return true
	}
	if utf8.RuneCountInString(a) <= minLen || utf8.RuneCountInString(b) <= minLen {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
