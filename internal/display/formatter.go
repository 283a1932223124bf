package display

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/bonuscli/internal/bonus"
	"github.com/tayloree/bonuscli/internal/filter"
	"github.com/tayloree/bonuscli/internal/service"
)

// Styles for terminal output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	bonusTag     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	oldPrice     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	dealStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// OfferJSON is the JSON output shape for an offer.
type OfferJSON struct {
	Name               string   `json:"name"`
	Store              string   `json:"store"`
	Category           string   `json:"category"`
	BonusDescription   string   `json:"bonus_description"`
	Price              *float64 `json:"price"`
	OriginalPrice      *float64 `json:"original_price"`
	DiscountPercentage *int     `json:"discount_percentage"`
	Badge              string   `json:"badge"`
	URL                string   `json:"url"`
}

// MatchJSON is the JSON output shape for one grocery item's badge decision.
type MatchJSON struct {
	Item  string     `json:"item"`
	Match *OfferJSON `json:"match"`
}

// CategorizedJSON pairs a product name with its category.
type CategorizedJSON struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// CategoryCount is one row of the categories overview.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// PrintOffers renders a list of offers to the writer.
func PrintOffers(w io.Writer, offers []bonus.Offer) {
	fmt.Fprintf(w, "\n%s - %s\n\n",
		headerStyle.Render("Bonus offers"),
		cyanStyle.Render(fmt.Sprintf("%d items", len(offers))),
	)

	for _, o := range offers {
		printOffer(w, o)
		fmt.Fprintln(w)
	}
}

// PrintOffersJSON renders offers as JSON.
func PrintOffersJSON(w io.Writer, offers []bonus.Offer) error {
	out := make([]OfferJSON, 0, len(offers))
	for _, o := range offers {
		out = append(out, ToOfferJSON(o))
	}
	return json.NewEncoder(w).Encode(out)
}

// PrintMatches renders the badge decision for each grocery item.
func PrintMatches(w io.Writer, badges []service.Badge) {
	fmt.Fprintln(w)
	for _, b := range badges {
		if b.Offer == nil {
			fmt.Fprintf(w, "  %s  %s\n", titleStyle.Render(b.Item), dimStyle.Render("no bonus"))
			continue
		}
		fmt.Fprintf(w, "  %s  %s %s\n",
			titleStyle.Render(b.Item),
			bonusTag.Render(b.Label),
			dimStyle.Render("-> "+filter.CleanText(b.Offer.Name)),
		)
	}
	fmt.Fprintln(w)
}

// PrintMatchesJSON renders badge decisions as JSON.
func PrintMatchesJSON(w io.Writer, badges []service.Badge) error {
	return json.NewEncoder(w).Encode(ToMatchJSON(badges))
}

// ToMatchJSON converts badge decisions to their JSON shape.
func ToMatchJSON(badges []service.Badge) []MatchJSON {
	out := make([]MatchJSON, 0, len(badges))
	for _, b := range badges {
		m := MatchJSON{Item: b.Item}
		if b.Offer != nil {
			o := ToOfferJSON(*b.Offer)
			m.Match = &o
		}
		out = append(out, m)
	}
	return out
}

// PrintCategorized renders classifier output.
func PrintCategorized(w io.Writer, names []string) {
	fmt.Fprintln(w)
	for _, name := range names {
		fmt.Fprintf(w, "  %s  %s\n", titleStyle.Render(name), cyanStyle.Render(bonus.Categorize(name)))
	}
	fmt.Fprintln(w)
}

// PrintCategorizedJSON renders classifier output as JSON.
func PrintCategorizedJSON(w io.Writer, names []string) error {
	out := make([]CategorizedJSON, 0, len(names))
	for _, name := range names {
		out = append(out, CategorizedJSON{Name: name, Category: bonus.Categorize(name)})
	}
	return json.NewEncoder(w).Encode(out)
}

// SortedCategories orders counts by size, then by taxonomy order.
func SortedCategories(cats map[string]int) []CategoryCount {
	rank := make(map[string]int)
	for i, label := range bonus.Categories() {
		rank[label] = i
	}
	out := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		out = append(out, CategoryCount{Category: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return rank[out[i].Category] < rank[out[j].Category]
	})
	return out
}

// PrintCategories renders a list of categories and their counts.
func PrintCategories(w io.Writer, cats map[string]int, userID string) {
	fmt.Fprintf(w, "\n%s\n\n",
		titleStyle.Render(fmt.Sprintf("Bonus categories for %s:", userID)),
	)
	for _, c := range SortedCategories(cats) {
		fmt.Fprintf(w, "  %s: %d offers\n", cyanStyle.Render(c.Category), c.Count)
	}
	fmt.Fprintln(w)
}

// PrintCategoriesJSON renders categories as JSON.
func PrintCategoriesJSON(w io.Writer, cats map[string]int) error {
	return json.NewEncoder(w).Encode(SortedCategories(cats))
}

// PrintImportResult renders the outcome of an import.
func PrintImportResult(w io.Writer, res service.ImportResult, userID string) {
	if res.Count == 0 {
		fmt.Fprintf(w, "%s\n", warningStyle.Render(fmt.Sprintf("Nothing imported for %s: %s", userID, res.Message)))
		return
	}
	fmt.Fprintf(w, "%s %s\n",
		priceStyle.Render(fmt.Sprintf("Imported %d offers", res.Count)),
		dimStyle.Render("for "+userID),
	)
}

// PrintImportResultJSON renders an import result as JSON.
func PrintImportResultJSON(w io.Writer, res service.ImportResult) error {
	return json.NewEncoder(w).Encode(res)
}

// PrintSourceContext prints a dim line showing which feed was used.
func PrintSourceContext(w io.Writer, source string) {
	fmt.Fprintf(w, "%s\n\n", dimStyle.Render("Using feed: "+source))
}

// PrintError prints a styled error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(msg))
}

// PrintWarning prints a styled warning message.
func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render(msg))
}

// FormatPrice renders a euro amount, or "" for nil.
func FormatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("€%.2f", *p)
}

func printOffer(w io.Writer, o bonus.Offer) {
	name := filter.CleanText(o.Name)
	if name == "" {
		name = "Unknown"
	}

	tag := ""
	if desc := o.Description(); desc != "" {
		tag = bonusTag.Render(desc) + " "
	}
	fmt.Fprintf(w, "  %s%s\n", tag, titleStyle.Render(name))

	var parts []string
	if p := FormatPrice(o.Price); p != "" {
		parts = append(parts, priceStyle.Render(p))
	}
	if o.HasDiscount() {
		parts = append(parts, oldPrice.Render(FormatPrice(o.OriginalPrice)))
	}
	if o.DiscountPercent != nil {
		parts = append(parts, dealStyle.Render(fmt.Sprintf("-%d%%", *o.DiscountPercent)))
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "    %s\n", strings.Join(parts, " "))
	}

	meta := []string{o.Category}
	if o.Store != "" {
		meta = append(meta, o.Store)
	}
	fmt.Fprintf(w, "    %s\n", dimStyle.Render(strings.Join(meta, " | ")))
	if o.URL != "" {
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(wordWrap(o.URL, 72, "    ")))
	}
}

// ToOfferJSON converts an offer to its JSON output shape.
func ToOfferJSON(o bonus.Offer) OfferJSON {
	return OfferJSON{
		Name:               filter.CleanText(o.Name),
		Store:              o.Store,
		Category:           o.Category,
		BonusDescription:   o.Description(),
		Price:              o.Price,
		OriginalPrice:      o.OriginalPrice,
		DiscountPercentage: o.DiscountPercent,
		Badge:              o.BadgeText(),
		URL:                o.URL,
	}
}

func wordWrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n"+indent)
}
