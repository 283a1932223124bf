package filter

import (
	"strings"

	"github.com/tayloree/bonuscli/internal/bonus"
)

// categorySynonyms lets users filter by English or shorthand names.
// Aliases must be unique across labels.
var categorySynonyms = map[string][]string{
	bonus.CategoryFruit:      {"fruits"},
	bonus.CategoryGroente:    {"groenten", "vegetable", "vegetables", "veggies", "produce"},
	bonus.CategoryBrood:      {"brood", "bakkerij", "bread", "bakery"},
	bonus.CategoryBroodbeleg: {"beleg", "spread", "spreads"},
	bonus.CategoryVleeswaren: {"deli", "cold cuts", "lunch meat"},
	bonus.CategoryZuivel:     {"dairy", "melk", "milk", "kaas", "cheese"},
	bonus.CategoryVlees:      {"meat", "beef", "chicken", "kip", "pork"},
	bonus.CategoryVis:        {"fish", "seafood"},
	bonus.CategoryAlcohol:    {"alcohol", "bier", "beer", "wijn", "wine"},
	bonus.CategoryChips:      {"chips", "noten", "nuts", "snacks"},
	bonus.CategorySnoep:      {"snoep", "koek", "candy", "sweets", "cookies"},
	bonus.CategoryFrisdrank:  {"fris", "soda", "soft drinks"},
	bonus.CategoryHuishouden: {"huishouden", "verzorging", "household", "drogisterij", "personal care"},
	bonus.CategoryPasta:      {"pasta", "rijst", "rice", "noodles"},
	bonus.CategoryDiepvries:  {"frozen", "ijs", "ice cream"},
	bonus.CategoryOntbijt:    {"ontbijt", "cereal", "breakfast", "muesli"},
	bonus.CategoryFallback:   {"other", "misc"},
}

// aliasIndex maps every normalized label and synonym to its label.
var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]string {
	idx := make(map[string]string, 6*len(categorySynonyms))
	for _, label := range bonus.Categories() {
		idx[normalizeCategory(label)] = label
	}
	for _, label := range bonus.Categories() {
		for _, alias := range categorySynonyms[label] {
			key := normalizeCategory(alias)
			if _, taken := idx[key]; !taken {
				idx[key] = label
			}
		}
	}
	return idx
}

// ResolveCategory maps a label or alias to its canonical category label, or
// "" when wanted names no known category.
func ResolveCategory(wanted string) string {
	return aliasIndex[normalizeCategory(wanted)]
}

// categoryMatcher tests offer categories against one --category value. A
// value that resolves to a label matches that label; anything else falls
// back to a substring test on the normalized category.
type categoryMatcher struct {
	label   string
	partial string
	seen    map[string]bool
}

func newCategoryMatcher(wanted string) categoryMatcher {
	m := categoryMatcher{label: ResolveCategory(wanted), seen: map[string]bool{}}
	if m.label == "" {
		m.partial = normalizeCategory(wanted)
	}
	return m
}

func (m categoryMatcher) matches(category string) bool {
	ok, hit := m.seen[category]
	if !hit {
		ok = m.match(category)
		m.seen[category] = ok
	}
	return ok
}

func (m categoryMatcher) match(category string) bool {
	if m.label != "" {
		return ResolveCategory(category) == m.label
	}
	return m.partial != "" && strings.Contains(normalizeCategory(category), m.partial)
}

var categorySeparators = strings.NewReplacer("_", " ", "-", " ", "&", " ")

func normalizeCategory(raw string) string {
	s := strings.Join(strings.Fields(categorySeparators.Replace(strings.ToLower(raw))), " ")
	if rest, ok := strings.CutSuffix(s, "ies"); ok && len(s) > 4 {
		return rest + "y"
	}
	if len(s) > 3 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") {
		return s[:len(s)-1]
	}
	return s
}
