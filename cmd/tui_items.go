package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/bonuscli/internal/bonus"
	"github.com/tayloree/bonuscli/internal/display"
	"github.com/tayloree/bonuscli/internal/filter"
)

var (
	tuiHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	tuiMetaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiHintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiValueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiBonusStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	tuiMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tuiSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
)

// tuiGroupItem is a category header row.
type tuiGroupItem struct {
	name    string
	count   int
	ordinal int
}

func (g tuiGroupItem) FilterValue() string { return strings.ToLower(g.name) }
func (g tuiGroupItem) Title() string       { return fmt.Sprintf("%d. %s", g.ordinal, g.name) }
func (g tuiGroupItem) Description() string { return fmt.Sprintf("Category • %d offers", g.count) }

type tuiOfferItem struct {
	offer       bonus.Offer
	group       string
	title       string
	description string
	filterValue string
}

func (o tuiOfferItem) FilterValue() string { return o.filterValue }
func (o tuiOfferItem) Title() string       { return o.title }
func (o tuiOfferItem) Description() string { return o.description }

// buildGroupedListItems puts offers under category headers, biggest
// category first. sections holds the list index of every header.
func buildGroupedListItems(offers []bonus.Offer) (items []list.Item, sections []int) {
	if len(offers) == 0 {
		return nil, nil
	}

	members := map[string][]bonus.Offer{}
	counts := map[string]int{}
	for _, o := range offers {
		label := offerGroupLabel(o)
		members[label] = append(members[label], o)
		counts[label]++
	}

	ordered := display.SortedCategories(counts)
	items = make([]list.Item, 0, len(offers)+len(ordered))
	sections = make([]int, 0, len(ordered))
	for i, c := range ordered {
		sections = append(sections, len(items))
		items = append(items, tuiGroupItem{name: c.Category, count: c.Count, ordinal: i + 1})
		for _, o := range members[c.Category] {
			items = append(items, newTUIOfferItem(o, c.Category))
		}
	}
	return items, sections
}

// offerGroupLabel trusts a stored category only when it is a known label.
func offerGroupLabel(o bonus.Offer) string {
	if bonus.IsCategory(o.Category) {
		return o.Category
	}
	return bonus.Categorize(o.Name)
}

func offerTitle(o bonus.Offer) string {
	if name := filter.CleanText(o.Name); name != "" {
		return name
	}
	return "Unknown offer"
}

func newTUIOfferItem(o bonus.Offer, group string) tuiOfferItem {
	title := offerTitle(o)

	summary := []string{o.BadgeText()}
	if price := display.FormatPrice(o.Price); price != "" {
		summary = append(summary, price)
	}
	if o.DiscountPercent != nil {
		summary = append(summary, fmt.Sprintf("-%d%%", *o.DiscountPercent))
	}

	return tuiOfferItem{
		offer:       o,
		group:       group,
		title:       title,
		description: strings.Join(summary, "  •  "),
		filterValue: strings.ToLower(strings.Join([]string{title, filter.CleanText(o.Description()), o.Store, group}, " ")),
	}
}

func renderOfferDetailContent(o bonus.Offer, width int) string {
	wrap := lipgloss.NewStyle().Width(maxInt(24, width))
	field := func(label, value string) string {
		return tuiMetaStyle.Render(label+":") + " " + value
	}

	lines := []string{
		wrap.Inherit(tuiValueStyle).Render(offerTitle(o)),
		wrap.Inherit(tuiMetaStyle).Render(offerGroupLabel(o) + "  |  " + o.Store),
		"",
		field("Bonus", tuiBonusStyle.Render(o.BadgeText())),
	}
	if price := display.FormatPrice(o.Price); price != "" {
		lines = append(lines, field("Price", tuiValueStyle.Render(price)))
	}
	if o.OriginalPrice != nil {
		lines = append(lines, field("Regular", display.FormatPrice(o.OriginalPrice)))
	}
	if o.DiscountPercent != nil {
		lines = append(lines, field("Discount", fmt.Sprintf("%d%%", *o.DiscountPercent)))
	}
	if o.Week != nil && *o.Week != "" {
		lines = append(lines, field("Week", *o.Week))
	}
	lines = append(lines, field("Score", fmt.Sprintf("%.2f", filter.DealScore(o))))

	if url := strings.TrimSpace(o.URL); url != "" {
		lines = append(lines, "", tuiMutedStyle.Render("Link:"), wrap.Inherit(tuiMutedStyle).Render(url))
	}
	return strings.Join(lines, "\n")
}

// renderGroupDetail summarizes a category header and previews its first
// offers from items.
func renderGroupDetail(group tuiGroupItem, items []list.Item) string {
	const previewSize = 5

	lines := []string{
		tuiSectionStyle.Render(group.Title()),
		tuiMetaStyle.Render(fmt.Sprintf("%d offers in this category", group.count)),
		"",
		tuiMetaStyle.Render("Jump keys:"),
		"- `]` next category, `[` previous category",
		"- `1..9` jump directly to a numbered category",
	}

	var preview []string
	for _, item := range items {
		if offer, ok := item.(tuiOfferItem); ok && offer.group == group.name {
			preview = append(preview, "• "+offer.title)
			if len(preview) == previewSize {
				break
			}
		}
	}
	if len(preview) > 0 {
		lines = append(lines, "", tuiMetaStyle.Render("Preview:"))
		lines = append(lines, preview...)
	}
	return strings.Join(lines, "\n")
}

// buildCategoryChoices lists the categories present in offers, biggest
// first, after the empty "all" choice. current is kept even when absent.
func buildCategoryChoices(offers []bonus.Offer, current string) []string {
	counts := map[string]int{}
	for _, o := range offers {
		counts[offerGroupLabel(o)]++
	}
	if _, ok := counts[current]; current != "" && !ok {
		counts[current] = 0
	}

	choices := []string{""}
	for _, c := range display.SortedCategories(counts) {
		choices = append(choices, c.Category)
	}
	return choices
}

func buildLimitChoices(current int) []int {
	choices := []int{0, 10, 25, 50, 100}
	if current <= 0 {
		return choices
	}
	for i, v := range choices {
		if v == current {
			return choices
		}
		if v > current {
			return append(choices[:i], append([]int{current}, choices[i:]...)...)
		}
	}
	return append(choices, current)
}

func canonicalizeTUIOptions(opts filter.Options) filter.Options {
	opts.Sort = filter.NormalizeSortMode(opts.Sort)
	opts.Category = strings.TrimSpace(opts.Category)
	if label := filter.ResolveCategory(opts.Category); label != "" {
		opts.Category = label
	}
	opts.Query = strings.TrimSpace(opts.Query)
	return opts
}

// stableID identifies a row across filter changes so the cursor can stay
// on the same offer.
func stableID(item list.Item) string {
	switch v := item.(type) {
	case tuiOfferItem:
		return stableIDForOffer(v.offer, v.title)
	case tuiGroupItem:
		return "group:" + strings.ToLower(strings.TrimSpace(v.name))
	}
	return ""
}

func stableIDForOffer(o bonus.Offer, fallbackTitle string) string {
	if url := strings.TrimSpace(o.URL); url != "" {
		return "offer:" + url
	}
	if fallbackTitle != "" {
		return "offer:title:" + strings.ToLower(strings.TrimSpace(fallbackTitle))
	}
	return "offer:unknown"
}

func findItemIndexByID(items []list.Item, id string) int {
	for i, item := range items {
		if stableID(item) == id {
			return i
		}
	}
	return -1
}

func firstOfferIndexFrom(items []list.Item, start int) int {
	for i := start; i < len(items); i++ {
		if _, ok := items[i].(tuiOfferItem); ok {
			return i
		}
	}
	return -1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
