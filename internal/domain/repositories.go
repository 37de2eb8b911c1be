package domain

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// DocumentQuery holds the search parameters accepted by GET /api/documents.
// Zero fields are omitted from the request.
type DocumentQuery struct {
	Tag      string
	Author   string
	Type     string
	DateFrom time.Time
	DateTo   time.Time
	Limit    int
	Offset   int
}

// Values encodes the query for the request URL
func (q DocumentQuery) Values() url.Values {
	v := url.Values{}
	if q.Tag != "" {
		v.Set("tag", q.Tag)
	}
	if q.Author != "" {
		v.Set("author", q.Author)
	}
	if q.Type != "" {
		v.Set("type", q.Type)
	}
	if !q.DateFrom.IsZero() {
		v.Set("date_from", q.DateFrom.Format(time.DateOnly))
	}
	if !q.DateTo.IsZero() {
		v.Set("date_to", q.DateTo.Format(time.DateOnly))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// DocumentRepository: Network operations (implemented by the archive client)
type DocumentRepository interface {
	// SearchDocuments returns one page of documents matching q
	SearchDocuments(ctx context.Context, q DocumentQuery) ([]Document, error)

	// GetDocument returns a single document
	GetDocument(ctx context.Context, id int64) (*Document, error)
}

// SignInInput is the body of POST /auth/sign-in
type SignInInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// SignUpInput is the body of POST /auth/sign-up
type SignUpInput struct {
	Login    string  `json:"login"`
	Password string  `json:"password"`
	RoleID   *int64  `json:"role_id,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// AuthResult contains the result of a successful authentication
type AuthResult struct {
	Token string `json:"token"`
}

// Authenticator exchanges credentials for a token
type Authenticator interface {
	SignIn(ctx context.Context, in SignInInput) (*AuthResult, error)
	SignUp(ctx context.Context, in SignUpInput) (int64, error)
}
