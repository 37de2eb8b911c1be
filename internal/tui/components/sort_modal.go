package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/archivist/internal/catalog"
	"github.com/mmcdole/archivist/internal/tui/styles"
	"github.com/mmcdole/archivist/internal/view"
)

// SortModal is a small popup for choosing the table's sort column
type SortModal struct {
	visible bool
	options []catalog.SortField
	cursor  int
	active  catalog.SortSelection
}

// NewSortModal creates a new sort modal
func NewSortModal() SortModal {
	return SortModal{}
}

// Show displays the modal with the given options and current sort state
func (m *SortModal) Show(options []catalog.SortField, active catalog.SortSelection) {
	m.visible = true
	m.options = options
	m.active = active
	m.cursor = 0
	for i, opt := range options {
		if opt == active.Field {
			m.cursor = i
			break
		}
	}
}

// Hide dismisses the modal
func (m *SortModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m SortModal) IsVisible() bool {
	return m.visible
}

// HandleKey processes a key press, returns (handled, selection).
// If selection is non-nil, the user confirmed a choice.
func (m *SortModal) HandleKey(key string) (handled bool, selection *catalog.SortSelection) {
	if !m.visible {
		return false, nil
	}

	switch key {
	case "j", "down":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
		return true, nil
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return true, nil
	case "enter":
		if len(m.options) == 0 {
			m.visible = false
			return true, nil
		}
		sel := m.active.Toggle(m.options[m.cursor])
		m.visible = false
		return true, &sel
	case "esc", "s":
		m.visible = false
		return true, nil
	}

	return true, nil // consume all keys when visible
}

// View renders the sort modal
func (m SortModal) View() string {
	if !m.visible || len(m.options) == 0 {
		return ""
	}

	lines := make([]string, 0, len(m.options))
	for i, opt := range m.options {
		isActive := opt == m.active.Field

		prefix := "  "
		if isActive {
			prefix = "✓ "
		}
		var suffix string
		if isActive {
			suffix = directionArrow(m.active.Direction)
		}
		text := styles.Pad(prefix+opt.String()+suffix, 20)

		switch {
		case i == m.cursor:
			lines = append(lines, styles.SelectedRowStyle.Render(text))
		case isActive:
			lines = append(lines, styles.AccentStyle.Render(text))
		default:
			lines = append(lines, styles.NormalRowStyle.Render(text))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Amber).
		Background(styles.SlateDark).
		Padding(0, 1).
		Render(styles.ModalTitleStyle.Render("Sort by") + "\n" + strings.Join(lines, "\n"))
}

func directionArrow(dir view.Direction) string {
	switch dir {
	case view.Asc:
		return " ↑"
	case view.Desc:
		return " ↓"
	default:
		return ""
	}
}
