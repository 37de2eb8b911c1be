package catalog

import (
	"fmt"
	"strings"

	"github.com/mmcdole/archivist/internal/domain"
	"github.com/mmcdole/archivist/internal/view"
)

// SortField represents a column to sort by
type SortField int

const (
	SortDefault SortField = iota // server order
	SortID
	SortTitle
	SortType
	SortAuthor
	SortDate
	SortPrivacy
)

// String returns the display name for the sort field
func (f SortField) String() string {
	switch f {
	case SortDefault:
		return "Default"
	case SortID:
		return "ID"
	case SortTitle:
		return "Title"
	case SortType:
		return "Type"
	case SortAuthor:
		return "Author"
	case SortDate:
		return "Date"
	case SortPrivacy:
		return "Privacy"
	default:
		return "Unknown"
	}
}

// ParseSortField maps a config value ("title", "date", ...) to a SortField
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return SortDefault, nil
	case "id":
		return SortID, nil
	case "title":
		return SortTitle, nil
	case "type":
		return SortType, nil
	case "author":
		return SortAuthor, nil
	case "date":
		return SortDate, nil
	case "privacy":
		return SortPrivacy, nil
	default:
		return SortDefault, fmt.Errorf("unknown sort field %q", s)
	}
}

// SortOptions returns the available sort options in menu order
func SortOptions() []SortField {
	return []SortField{SortDefault, SortID, SortTitle, SortType, SortAuthor, SortDate, SortPrivacy}
}

// DefaultDirection returns the default sort direction for a field
func DefaultDirection(field SortField) view.Direction {
	switch field {
	case SortDefault:
		return view.None
	case SortID, SortDate:
		return view.Desc // newest first
	default:
		return view.Asc // A-Z
	}
}

// SortSelection represents the user's sort choice
type SortSelection struct {
	Field     SortField
	Direction view.Direction
}

// Toggle returns the selection made by choosing field while s is active:
// the same field flips direction, another field starts at its default.
func (s SortSelection) Toggle(field SortField) SortSelection {
	if field != s.Field || field == SortDefault {
		return SortSelection{Field: field, Direction: DefaultDirection(field)}
	}
	if s.Direction == view.Asc {
		return SortSelection{Field: field, Direction: view.Desc}
	}
	return SortSelection{Field: field, Direction: view.Asc}
}

// Compare returns the comparator for the field, nil for SortDefault
func (f SortField) Compare() view.Compare[domain.Document] {
	switch f {
	case SortID:
		return view.By(func(d domain.Document) int64 { return d.ID })
	case SortTitle:
		return view.By(func(d domain.Document) string { return strings.ToLower(d.Title) })
	case SortType:
		return view.By(func(d domain.Document) string { return strings.ToLower(d.TypeName) })
	case SortAuthor:
		return view.By(func(d domain.Document) string { return strings.ToLower(d.AuthorName) })
	case SortDate:
		return view.By(func(d domain.Document) int64 { return d.Date().UnixNano() })
	case SortPrivacy:
		return view.By(func(d domain.Document) string { return string(d.Privacy) })
	default:
		return nil
	}
}
