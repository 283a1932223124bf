package cmd

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
)

// tuiKeyMap holds the browser's own bindings. Navigation inside the list
// and the detail pane uses the bubbles defaults.
type tuiKeyMap struct {
	SwitchPane key.Binding
	Back       key.Binding
	Help       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding

	Filter   key.Binding
	Sort     key.Binding
	Deals    key.Binding
	Category key.Binding
	Limit    key.Binding
	Reset    key.Binding

	NextSection key.Binding
	PrevSection key.Binding
	Section     key.Binding
}

func newTUIKeyMap() tuiKeyMap {
	return tuiKeyMap{
		SwitchPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to list")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),

		// The list itself handles "/"; the binding only feeds the help view.
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "fuzzy filter")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Deals:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "deals only")),
		Category: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		Limit:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "limit")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),

		NextSection: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next category")),
		PrevSection: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous category")),
		Section: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "jump to category"),
		),
	}
}

func (k tuiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchPane, k.Filter, k.Sort, k.Deals, k.Category, k.Limit, k.Reset, k.Help, k.Quit}
}

func (k tuiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Filter, k.Sort, k.Deals, k.Category, k.Limit, k.Reset},
		{k.NextSection, k.PrevSection, k.Section},
		{k.SwitchPane, k.Back, k.Help, k.Quit},
	}
}

// tuiDetailHelp is the help shown while the detail pane has focus.
type tuiDetailHelp struct {
	keys     tuiKeyMap
	viewport viewport.KeyMap
}

func (h tuiDetailHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.viewport.Up, h.viewport.Down, h.viewport.HalfPageDown, h.viewport.PageDown, h.keys.Back, h.keys.Help, h.keys.Quit}
}

func (h tuiDetailHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.viewport.Up, h.viewport.Down},
		{h.viewport.HalfPageUp, h.viewport.HalfPageDown, h.viewport.PageUp, h.viewport.PageDown},
		{h.keys.Back, h.keys.SwitchPane, h.keys.Help, h.keys.Quit},
	}
}
