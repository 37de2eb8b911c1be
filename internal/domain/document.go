package domain

import (
	"strconv"
	"strings"
	"time"
)

// PrivacyType controls who may see a document
type PrivacyType string

const (
	PrivacyPublic  PrivacyType = "public"
	PrivacyPrivate PrivacyType = "private"
)

// Document is one archive entry as listed by /api/documents
type Document struct {
	ID               int64       `json:"doc_id"`
	Title            string      `json:"title"`
	Privacy          PrivacyType `json:"privacy"`
	CreatedAt        time.Time   `json:"created_at"`
	CreatedBy        *int64      `json:"created_by,omitempty"`
	CreatedByLogin   string      `json:"created_by_login,omitempty"`
	CreatedByName    string      `json:"created_by_full_name,omitempty"`
	UpdatedAt        *time.Time  `json:"updated_at,omitempty"`
	UpdatedBy        *int64      `json:"updated_by,omitempty"`
	UpdatedByLogin   string      `json:"updated_by_login,omitempty"`
	UpdatedByName    string      `json:"updated_by_full_name,omitempty"`
	DocumentDate     *time.Time  `json:"document_date,omitempty"`
	AuthorID         *int64      `json:"author_id,omitempty"`
	AuthorName       string      `json:"author_name,omitempty"`
	TypeID           *int64      `json:"type_id,omitempty"`
	TypeName         string      `json:"type_name,omitempty"`
	Tags             []string    `json:"tags,omitempty"`
	Viewers          []int64     `json:"viewers,omitempty"`
	Editors          []int64     `json:"editors,omitempty"`
	CanRequesterEdit bool        `json:"can_requester_edit"`
	Geom             *string     `json:"geom,omitempty"`
}

// Date returns the document date, falling back to the creation time
func (d Document) Date() time.Time {
	if d.DocumentDate != nil {
		return *d.DocumentDate
	}
	return d.CreatedAt
}

// FormattedDate returns the document date as YYYY-MM-DD
func (d Document) FormattedDate() string {
	t := d.Date()
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// DisplayID returns the id as shown in the table
func (d Document) DisplayID() string {
	return strconv.FormatInt(d.ID, 10)
}

// SearchText returns the text fuzzy filters match against
func (d Document) SearchText() string {
	parts := []string{d.Title, d.AuthorName, d.TypeName}
	parts = append(parts, d.Tags...)
	return strings.Join(parts, " ")
}
