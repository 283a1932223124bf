package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/bonuscli/internal/bonus"
	"github.com/tayloree/bonuscli/internal/filter"
)

var tuiSortModes = []string{filter.SortRelevance, filter.SortDiscount, filter.SortPrice, filter.SortName}

// tuiLoadConfig describes how the browser fetches its offers. load runs
// inside a tea.Cmd so the spinner keeps ticking while the store is read.
type tuiLoadConfig struct {
	ctx         context.Context
	userLabel   string
	load        func(ctx context.Context) ([]bonus.Offer, error)
	initialOpts filter.Options
}

type tuiDataLoadedMsg struct {
	userLabel   string
	allOffers   []bonus.Offer
	initialOpts filter.Options
}

type tuiDataLoadErrMsg struct {
	err error
}

// choiceRing cycles through a fixed set of values.
type choiceRing[T comparable] struct {
	values []T
	pos    int
}

// set moves the ring to value and reports whether it was found. A missing
// value resets the ring to its first entry.
func (r *choiceRing[T]) set(value T) bool {
	for i, v := range r.values {
		if v == value {
			r.pos = i
			return true
		}
	}
	r.pos = 0
	return false
}

func (r *choiceRing[T]) current() T {
	var zero T
	if len(r.values) == 0 {
		return zero
	}
	return r.values[r.pos]
}

func (r *choiceRing[T]) next() T {
	if len(r.values) > 0 {
		r.pos = (r.pos + 1) % len(r.values)
	}
	return r.current()
}

type offersTUIModel struct {
	loading  bool
	spinner  spinner.Model
	loadCmd  tea.Cmd
	fatalErr error

	userLabel     string
	allOffers     []bonus.Offer
	visibleOffers int

	opts        filter.Options
	initialOpts filter.Options
	sorts       choiceRing[string]
	categories  choiceRing[string]
	limits      choiceRing[int]

	keys   tuiKeyMap
	help   help.Model
	list   list.Model
	detail viewport.Model

	detailFocused bool
	selectedID    string
	sections      []int

	width, height int
	layout        tuiLayout
}

func newLoadingOffersTUIModel(cfg tuiLoadConfig) offersTUIModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(1)

	lst := list.New(nil, delegate, 0, 0)
	lst.Title = "Offers"
	lst.SetStatusBarItemName("item", "items")
	lst.SetShowHelp(false)
	lst.DisableQuitKeybindings()

	detail := viewport.New(0, 0)
	detail.KeyMap.PageDown.SetKeys("f", "pgdown")
	detail.KeyMap.PageUp.SetKeys("b", "pgup")
	detail.KeyMap.HalfPageDown.SetKeys("d")
	detail.KeyMap.HalfPageUp.SetKeys("u")

	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(tuiHeaderStyle))

	return offersTUIModel{
		loading:     true,
		spinner:     spin,
		loadCmd:     loadTUIDataCmd(cfg),
		initialOpts: cfg.initialOpts,
		opts:        cfg.initialOpts,
		keys:        newTUIKeyMap(),
		help:        help.New(),
		list:        lst,
		detail:      detail,
	}
}

func loadTUIDataCmd(cfg tuiLoadConfig) tea.Cmd {
	return func() tea.Msg {
		offers, err := cfg.load(cfg.ctx)
		if err != nil {
			return tuiDataLoadErrMsg{err: err}
		}
		return tuiDataLoadedMsg{
			userLabel:   cfg.userLabel,
			allOffers:   offers,
			initialOpts: cfg.initialOpts,
		}
	}
}

func (m offersTUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd)
}

func (m offersTUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tuiDataLoadedMsg:
		m.finishLoading(msg)
		return m, nil

	case tuiDataLoadErrMsg:
		m.loading = false
		m.fatalErr = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.loading {
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.list.FilterState() != list.Filtering {
			if next, cmd, handled := m.handleKey(msg); handled {
				return next, cmd
			}
			if m.detailFocused {
				var cmd tea.Cmd
				m.detail, cmd = m.detail.Update(msg)
				return m, cmd
			}
		}
	}

	if m.loading {
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.refreshDetail(false)
	return m, cmd
}

// handleKey applies the browser's own bindings. Keys it does not claim
// fall through to the focused pane.
func (m offersTUIModel) handleKey(msg tea.KeyMsg) (offersTUIModel, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.SwitchPane):
		m.detailFocused = !m.detailFocused
	case key.Matches(msg, m.keys.Back):
		if !m.detailFocused {
			return m, nil, false
		}
		m.detailFocused = false
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	case key.Matches(msg, m.keys.Sort):
		m.opts.Sort = m.sorts.next()
		m.applyCurrentFilters(false)
	case key.Matches(msg, m.keys.Deals):
		m.opts.Deals = !m.opts.Deals
		m.applyCurrentFilters(false)
	case key.Matches(msg, m.keys.Category):
		m.opts.Category = m.categories.next()
		m.applyCurrentFilters(false)
	case key.Matches(msg, m.keys.Limit):
		m.opts.Limit = m.limits.next()
		m.applyCurrentFilters(false)
	case key.Matches(msg, m.keys.Reset):
		m.opts = m.initialOpts
		m.syncChoices()
		m.applyCurrentFilters(false)
	case key.Matches(msg, m.keys.NextSection, m.keys.PrevSection, m.keys.Section):
		if m.list.IsFiltered() {
			return m, m.list.NewStatusMessage("Clear the fuzzy filter before jumping between categories."), true
		}
		switch {
		case key.Matches(msg, m.keys.NextSection):
			m.stepSection(1)
		case key.Matches(msg, m.keys.PrevSection):
			m.stepSection(-1)
		default:
			m.jumpToSection(int(msg.String()[0] - '1'))
		}
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m *offersTUIModel) finishLoading(msg tuiDataLoadedMsg) {
	m.loading = false
	m.userLabel = msg.userLabel
	m.allOffers = msg.allOffers
	m.initialOpts = canonicalizeTUIOptions(msg.initialOpts)
	m.opts = m.initialOpts

	m.sorts = choiceRing[string]{values: tuiSortModes}
	m.categories = choiceRing[string]{values: buildCategoryChoices(m.allOffers, m.opts.Category)}
	m.limits = choiceRing[int]{values: buildLimitChoices(m.opts.Limit)}
	m.syncChoices()

	m.applyCurrentFilters(true)
	m.resize()
}

// syncChoices points every ring at the current options, falling back to
// the first choice for values the ring does not know.
func (m *offersTUIModel) syncChoices() {
	m.sorts.set(filter.NormalizeSortMode(m.opts.Sort))
	m.opts.Sort = m.sorts.current()
	if !m.categories.set(m.opts.Category) {
		m.opts.Category = m.categories.current()
	}
	if !m.limits.set(m.opts.Limit) {
		m.opts.Limit = m.limits.current()
	}
}

func (m offersTUIModel) activeFilterSummary() string {
	var parts []string
	add := func(cond bool, s string) {
		if cond {
			parts = append(parts, s)
		}
	}
	add(m.opts.Deals, "deals")
	add(m.opts.Category != "", "category:"+m.opts.Category)
	add(m.opts.Query != "", "query:"+m.opts.Query)
	add(m.opts.Sort != "", "sort:"+m.opts.Sort)
	add(m.opts.Limit > 0, fmt.Sprintf("limit:%d", m.opts.Limit))
	fuzzy := strings.TrimSpace(m.list.FilterValue())
	add(fuzzy != "", "fuzzy:"+fuzzy)

	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// applyCurrentFilters rebuilds the list from opts. Unless resetSelection is
// set the cursor stays on the previously selected row when it survives.
func (m *offersTUIModel) applyCurrentFilters(resetSelection bool) {
	visible := filter.Apply(m.allOffers, m.opts)
	m.visibleOffers = len(visible)

	items, sections := buildGroupedListItems(visible)
	m.sections = sections
	m.list.Title = fmt.Sprintf("Offers • %d visible", len(visible))
	m.list.SetItems(items)

	target := -1
	if !resetSelection && m.selectedID != "" {
		target = findItemIndexByID(items, m.selectedID)
	}
	if target < 0 {
		target = firstOfferIndexFrom(items, 0)
	}
	if target < 0 && len(items) > 0 {
		target = 0
	}
	if target >= 0 {
		m.list.Select(target)
	}
	m.refreshDetail(true)
}

func (m *offersTUIModel) refreshDetail(resetScroll bool) {
	content := "No offers match the current inline filters.\n\nPress r to reset them."
	id := ""

	switch item := m.list.SelectedItem().(type) {
	case tuiOfferItem:
		content = renderOfferDetailContent(item.offer, m.detail.Width)
		id = stableID(item)
	case tuiGroupItem:
		content = renderGroupDetail(item, m.list.Items())
		id = stableID(item)
	}

	if resetScroll || id != m.selectedID {
		m.detail.GotoTop()
	}
	m.selectedID = id
	m.detail.SetContent(content)
}

// sectionAt returns the category whose header is at or above cursor.
func (m offersTUIModel) sectionAt(cursor int) int {
	return maxInt(0, sort.SearchInts(m.sections, cursor+1)-1)
}

func (m *offersTUIModel) stepSection(delta int) {
	n := len(m.sections)
	if n == 0 {
		return
	}
	m.jumpToSection((m.sectionAt(m.list.GlobalIndex()) + delta + n) % n)
}

// jumpToSection selects the first offer of the i-th category.
func (m *offersTUIModel) jumpToSection(i int) {
	if i < 0 || i >= len(m.sections) {
		return
	}
	target := firstOfferIndexFrom(m.list.Items(), m.sections[i])
	if target < 0 {
		target = m.sections[i]
	}
	m.list.Select(target)
	m.refreshDetail(true)
}

func (m offersTUIModel) helpKeys() help.KeyMap {
	if m.detailFocused {
		return tuiDetailHelp{keys: m.keys, viewport: m.detail.KeyMap}
	}
	return m.keys
}

// resize recomputes the pane sizes after the window, the help view or the
// loading state changed.
func (m *offersTUIModel) resize() {
	if m.loading || m.width == 0 || m.height == 0 {
		return
	}
	m.help.Width = m.width - 2
	m.layout = computeTUILayout(m.width, m.height, lipgloss.Height(m.headerView()), lipgloss.Height(m.footerView()))
	if m.layout.tooSmall {
		return
	}

	inner := maxInt(6, m.layout.body-2)
	m.list.SetSize(maxInt(24, m.layout.listWidth-4), inner)
	m.detail.Width = maxInt(24, m.layout.detailWidth-4)
	m.detail.Height = inner
	m.refreshDetail(false)
}
