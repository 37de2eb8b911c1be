package components

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/archivist/internal/catalog"
	"github.com/mmcdole/archivist/internal/domain"
	"github.com/mmcdole/archivist/internal/tui/styles"
	"github.com/mmcdole/archivist/internal/view"
)

// Fixed column widths; the title takes whatever is left
const (
	colID      = 7
	colDate    = 11
	colType    = 14
	colAuthor  = 18
	colPrivacy = 8
	minTitle   = 10
)

// DocumentTable renders one page of documents. It never filters, sorts or
// pages on its own: everything it shows comes from the last view.Result.
type DocumentTable struct {
	result view.Result[domain.Document]
	cursor int
	query  string
}

// NewDocumentTable creates an empty table
func NewDocumentTable() DocumentTable {
	return DocumentTable{}
}

// SetResult replaces the page being shown
func (t *DocumentTable) SetResult(r view.Result[domain.Document]) {
	t.result = r
	t.clampCursor()
}

// Result returns the page being shown
func (t DocumentTable) Result() view.Result[domain.Document] {
	return t.result
}

// SetQuery sets the filter text used for title highlighting
func (t *DocumentTable) SetQuery(q string) {
	t.query = q
}

// MoveUp moves the cursor up one row
func (t *DocumentTable) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
}

// MoveDown moves the cursor down one row
func (t *DocumentTable) MoveDown() {
	if t.cursor < len(t.result.Items)-1 {
		t.cursor++
	}
}

// ResetCursor moves the cursor to the first row
func (t *DocumentTable) ResetCursor() {
	t.cursor = 0
}

// Cursor returns the selected row index within the page
func (t DocumentTable) Cursor() int {
	return t.cursor
}

// Selected returns the document under the cursor
func (t DocumentTable) Selected() (domain.Document, bool) {
	if t.cursor < 0 || t.cursor >= len(t.result.Items) {
		return domain.Document{}, false
	}
	return t.result.Items[t.cursor], true
}

func (t *DocumentTable) clampCursor() {
	if t.cursor >= len(t.result.Items) {
		t.cursor = len(t.result.Items) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// View renders the header, the rows and the page indicator
func (t DocumentTable) View(width, height int) string {
	titleWidth := max(width-colID-colDate-colType-colAuthor-colPrivacy, minTitle)

	var b strings.Builder
	b.WriteString(styles.HeaderStyle.Render(
		styles.Pad("ID", colID) + styles.Pad("Date", colDate) + styles.Pad("Title", titleWidth) +
			styles.Pad("Type", colType) + styles.Pad("Author", colAuthor) + styles.Pad("Privacy", colPrivacy)))
	b.WriteString("\n")

	if len(t.result.Items) == 0 {
		b.WriteString(styles.DimStyle.Render("No documents"))
		b.WriteString("\n")
	}

	// Header and page indicator take two lines
	rows := len(t.result.Items)
	if height > 2 && rows > height-2 {
		rows = height - 2
	}
	start := 0
	if t.cursor >= rows {
		start = t.cursor - rows + 1
	}
	for i := start; i < start+rows && i < len(t.result.Items); i++ {
		b.WriteString(t.renderRow(t.result.Items[i], i == t.cursor, titleWidth))
		b.WriteString("\n")
	}

	b.WriteString(styles.DimStyle.Render(PageIndicator(t.result)))
	return b.String()
}

func (t DocumentTable) renderRow(d domain.Document, selected bool, titleWidth int) string {
	rowStyle := styles.NormalRowStyle
	if selected {
		rowStyle = styles.SelectedRowStyle
	}

	privacy := rowStyle.Render(styles.Pad(string(d.Privacy), colPrivacy))
	if d.Privacy == domain.PrivacyPrivate && !selected {
		privacy = styles.PrivateStyle.Render(styles.Pad(string(d.Privacy), colPrivacy))
	}

	title := styles.Truncate(d.Title, titleWidth-1)
	titleCell := highlight(title, matchedRunes(HighlightPattern(t.query), title), rowStyle)
	if gap := titleWidth - lipgloss.Width(title); gap > 0 {
		titleCell += rowStyle.Render(strings.Repeat(" ", gap))
	}

	return rowStyle.Render(styles.Pad(d.DisplayID(), colID)+styles.Pad(d.FormattedDate(), colDate)) +
		titleCell +
		rowStyle.Render(styles.Pad(d.TypeName, colType)+styles.Pad(d.AuthorName, colAuthor)) +
		privacy
}

// PageIndicator returns "page X/Y · N documents"
func PageIndicator(r view.Result[domain.Document]) string {
	pages := max(r.PageCount, 1)
	noun := "documents"
	if r.TotalCount == 1 {
		noun = "document"
	}
	return fmt.Sprintf("page %d/%d · %d %s", r.PageIndex+1, pages, r.TotalCount, noun)
}

// HighlightPattern returns the free-text part of a filter query, the part
// that fuzzy matches titles. Field terms like "tag:x" are skipped.
func HighlightPattern(query string) string {
	var parts []string
	for _, term := range strings.Fields(query) {
		if catalog.IsFieldTerm(term) {
			continue
		}
		parts = append(parts, term)
	}
	return strings.ToLower(strings.Join(parts, ""))
}

// matchedRunes returns the rune positions in text that pattern matches
func matchedRunes(pattern, text string) map[int]bool {
	if pattern == "" || text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	matches := fuzzy.Find(pattern, []string{lower})
	if len(matches) == 0 {
		return nil
	}

	set := make(map[int]bool, len(matches[0].MatchedIndexes))
	for _, byteIdx := range matches[0].MatchedIndexes {
		if byteIdx <= len(lower) {
			set[utf8.RuneCountInString(lower[:byteIdx])] = true
		}
	}
	return set
}

// highlight renders text with matched runes in the highlight style,
// batching runs of the same state
func highlight(text string, matched map[int]bool, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(text)
	}

	matchStyle := styles.MatchHighlightStyle.Inherit(base)
	runes := []rune(text)
	var b strings.Builder
	for i := 0; i < len(runes); {
		isMatch := matched[i]
		j := i
		for j < len(runes) && matched[j] == isMatch {
			j++
		}
		if isMatch {
			b.WriteString(matchStyle.Render(string(runes[i:j])))
		} else {
			b.WriteString(base.Render(string(runes[i:j])))
		}
		i = j
	}
	return b.String()
}
