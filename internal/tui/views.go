package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/archivist/internal/catalog"
	"github.com/mmcdole/archivist/internal/tui/styles"
	"github.com/mmcdole/archivist/internal/view"
)

// View renders the application
func (m Model) View() string {
	if m.Width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	tableHeight := max(m.Height-lipgloss.Height(header)-lipgloss.Height(footer), 3)
	body := m.Table.View(m.Width, tableHeight)

	out := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	if m.SortModal.IsVisible() {
		out = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.SortModal.View())
	}

	if m.ShowHelp {
		out = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.renderHelp())
	}

	return out
}

// renderHeader renders the title line and the filter line
func (m Model) renderHeader() string {
	title := styles.TitleStyle.Render("Archivist") + "  " +
		styles.DimStyle.Render("sort: "+sortLabel(m.Catalog.Sort()))

	var filter string
	switch {
	case m.Filtering:
		filter = m.Filter.View()
	case m.Catalog.Filter() != "":
		filter = styles.FilterPromptStyle.Render("/ ") + styles.FilterStyle.Render(m.Catalog.Filter())
	default:
		filter = " "
	}
	return title + "\n" + filter
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	// Left side: spinner + status while busy, otherwise the last status message
	var left string
	if m.Loading {
		statusText := "Loading..."
		if m.Progress.Loaded > 0 {
			statusText = fmt.Sprintf("Loading · %d documents", m.Progress.Loaded)
		}
		left = m.Spinner.View() + " " + styles.DimStyle.Render(statusText)
	} else if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	// Right side: "? help" hint
	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the key binding overlay
func (m Model) renderHelp() string {
	var lines []string
	for _, b := range m.Keys.HelpBindings() {
		h := b.Help()
		lines = append(lines, styles.AccentStyle.Render(styles.Pad(h.Key, 10))+styles.DimStyle.Render(h.Desc))
	}

	return styles.ActiveBorder.
		Padding(0, 1).
		Render(styles.ModalTitleStyle.Render("Keys") + "\n" + strings.Join(lines, "\n"))
}

func sortLabel(sel catalog.SortSelection) string {
	switch sel.Direction {
	case view.Asc:
		return sel.Field.String() + " ↑"
	case view.Desc:
		return sel.Field.String() + " ↓"
	default:
		return sel.Field.String()
	}
}
