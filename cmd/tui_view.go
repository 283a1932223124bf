package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	minTUIWidth  = 92
	minTUIHeight = 24
)

var (
	tuiFocusBorder = lipgloss.Color("86")
	tuiIdleBorder  = lipgloss.Color("241")
)

type tuiLayout struct {
	tooSmall    bool
	body        int
	listWidth   int
	detailWidth int
}

// computeTUILayout gives the list pane two fifths of the width and the
// detail pane the rest, minus a one-column gutter.
func computeTUILayout(width, height, headerHeight, footerHeight int) tuiLayout {
	if width < minTUIWidth || height < minTUIHeight {
		return tuiLayout{tooSmall: true}
	}
	listWidth := width * 2 / 5
	return tuiLayout{
		body:        maxInt(8, height-headerHeight-footerHeight-1),
		listWidth:   listWidth,
		detailWidth: width - listWidth - 1,
	}
}

func (m offersTUIModel) View() string {
	switch {
	case m.loading:
		return m.loadingView()
	case m.width == 0 || m.height == 0:
		return tuiMetaStyle.Render("Loading interface...")
	case m.layout.tooSmall:
		return lipgloss.NewStyle().Padding(1, 2).Render(fmt.Sprintf(
			"Terminal too small (%dx%d).\nResize to at least %dx%d for the offer browser.",
			m.width, m.height, minTUIWidth, minTUIHeight,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), m.bodyView(), m.footerView())
}

func (m offersTUIModel) loadingView() string {
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join([]string{
		tuiHeaderStyle.Render("bonuscli tui"),
		"",
		m.spinner.View() + " Reading stored bonus offers",
		tuiHintStyle.Render("Press q to cancel."),
	}, "\n"))
}

func (m offersTUIModel) headerView() string {
	focus := "list"
	if m.detailFocused {
		focus = "detail"
	}
	status := fmt.Sprintf("offers: %d visible / %d total  |  filters: %s  |  focus: %s",
		m.visibleOffers, len(m.allOffers), m.activeFilterSummary(), focus)

	return lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(
		tuiHeaderStyle.Render("bonuscli tui  |  "+m.userLabel) + "\n" + tuiMetaStyle.Render(status),
	)
}

func (m offersTUIModel) bodyView() string {
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuiIdleBorder).
		Padding(0, 1).
		Height(m.layout.body)
	listPane, detailPane := pane, pane
	if m.detailFocused {
		detailPane = detailPane.BorderForeground(tuiFocusBorder)
	} else {
		listPane = listPane.BorderForeground(tuiFocusBorder)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		listPane.Width(m.layout.listWidth).Render(m.list.View()),
		" ",
		detailPane.Width(m.layout.detailWidth).Render(m.detail.View()),
	)
}

func (m offersTUIModel) footerView() string {
	return lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(m.helpKeys()))
}
