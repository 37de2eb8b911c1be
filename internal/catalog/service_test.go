package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/archivist/internal/domain"
	"github.com/mmcdole/archivist/internal/log"
	"github.com/mmcdole/archivist/internal/view"
)

type fakeFetcher struct {
	docs  []domain.Document
	err   error
	calls int
	last  domain.DocumentQuery
	chunk int
}

func (f *fakeFetcher) FetchAllDocuments(_ context.Context, q domain.DocumentQuery, chunkSize int, _ domain.FetchObserver) ([]domain.Document, error) {
	f.calls++
	f.last = q
	f.chunk = chunkSize
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func fixtures() []domain.Document {
	return []domain.Document{
		{ID: 1, Title: "Harbour survey", AuthorName: "Ivanova", TypeName: "Map", Tags: []string{"coast"}, Privacy: domain.PrivacyPublic, CreatedAt: day(3)},
		{ID: 2, Title: "annual report", AuthorName: "Petrov", TypeName: "Report", Tags: []string{"finance"}, Privacy: domain.PrivacyPrivate, CreatedAt: day(1)},
		{ID: 3, Title: "Bridge plans", AuthorName: "Ivanova", TypeName: "Map", Tags: []string{"river", "coast"}, Privacy: domain.PrivacyPublic, CreatedAt: day(1)},
		{ID: 4, Title: "Correspondence", AuthorName: "Sidorov", TypeName: "Letter", Privacy: domain.PrivacyPrivate, CreatedAt: day(2)},
	}
}

func docIDs(docs []domain.Document) []int64 {
	out := make([]int64, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func newService(t *testing.T, f Fetcher, opts Options) *Service {
	t.Helper()
	s, err := NewService(f, log.NullLogger(), opts)
	require.NoError(t, err)
	return s
}

func TestServiceRefresh(t *testing.T) {
	t.Run("loads documents into the view", func(t *testing.T) {
		f := &fakeFetcher{docs: fixtures()}
		s := newService(t, f, Options{PageSize: 2, Query: domain.DocumentQuery{Tag: "coast"}})

		n, err := s.Refresh(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, 4, n)
		assert.Equal(t, "coast", f.last.Tag)
		assert.Equal(t, defaultChunkSize, f.chunk)

		v := s.Source().View()
		assert.Equal(t, 4, v.TotalCount)
		assert.Equal(t, 2, v.PageCount)
		assert.Equal(t, []int64{1, 2}, docIDs(v.Items))
	})

	t.Run("error keeps previous records", func(t *testing.T) {
		f := &fakeFetcher{docs: fixtures()}
		s := newService(t, f, Options{})
		_, err := s.Refresh(context.Background(), nil)
		require.NoError(t, err)

		f.err = domain.ErrServerOffline
		_, err = s.Refresh(context.Background(), nil)
		assert.True(t, errors.Is(err, domain.ErrServerOffline))
		assert.Equal(t, 4, s.Source().View().TotalCount)
	})
}

func TestServiceSort(t *testing.T) {
	cases := []struct {
		name string
		sel  SortSelection
		want []int64
	}{
		{"default keeps server order", SortSelection{Field: SortDefault, Direction: view.Asc}, []int64{1, 2, 3, 4}},
		{"title is case-insensitive", SortSelection{Field: SortTitle, Direction: view.Asc}, []int64{2, 3, 4, 1}},
		{"date desc keeps ties in order", SortSelection{Field: SortDate, Direction: view.Desc}, []int64{1, 4, 2, 3}},
		{"author asc keeps ties in order", SortSelection{Field: SortAuthor, Direction: view.Asc}, []int64{1, 3, 2, 4}},
		{"id desc", SortSelection{Field: SortID, Direction: view.Desc}, []int64{4, 3, 2, 1}},
		{"privacy asc", SortSelection{Field: SortPrivacy, Direction: view.Asc}, []int64{2, 4, 1, 3}},
		{"type asc", SortSelection{Field: SortType, Direction: view.Asc}, []int64{4, 1, 3, 2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newService(t, &fakeFetcher{docs: fixtures()}, Options{})
			_, err := s.Refresh(context.Background(), nil)
			require.NoError(t, err)

			s.SetSort(tc.sel)
			assert.Equal(t, tc.want, docIDs(s.Source().View().Items))
		})
	}

	t.Run("default field forces no direction", func(t *testing.T) {
		s := newService(t, &fakeFetcher{}, Options{})
		s.SetSort(SortSelection{Field: SortDefault, Direction: view.Desc})
		assert.Equal(t, view.None, s.Sort().Direction)
	})
}

func TestServiceFilter(t *testing.T) {
	cases := []struct {
		query string
		want  []int64
	}{
		{"", []int64{1, 2, 3, 4}},
		{"brdg", []int64{3}},
		{"ivanova", []int64{1, 3}},
		{"tag:coast", []int64{1, 3}},
		{"tag:coast brdg", []int64{3}},
		{"type:map", []int64{1, 3}},
		{"author:petr", []int64{2}},
		{"privacy:private", []int64{2, 4}},
		{"zzz", []int64{}},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			s := newService(t, &fakeFetcher{docs: fixtures()}, Options{})
			_, err := s.Refresh(context.Background(), nil)
			require.NoError(t, err)

			s.SetFilter(tc.query)
			assert.Equal(t, tc.query, s.Filter())
			assert.Equal(t, tc.want, docIDs(s.Source().View().Items))
		})
	}
}

func TestSortSelectionToggle(t *testing.T) {
	sel := SortSelection{Field: SortTitle, Direction: view.Asc}

	assert.Equal(t, SortSelection{Field: SortTitle, Direction: view.Desc}, sel.Toggle(SortTitle))
	assert.Equal(t, SortSelection{Field: SortDate, Direction: view.Desc}, sel.Toggle(SortDate))
	assert.Equal(t, SortSelection{Field: SortTitle, Direction: view.Asc}, sel.Toggle(SortTitle).Toggle(SortTitle))
	assert.Equal(t, SortSelection{Field: SortDefault, Direction: view.None}, sel.Toggle(SortDefault))
}

func TestParseSortField(t *testing.T) {
	for _, f := range SortOptions() {
		parsed, err := ParseSortField(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}

	_, err := ParseSortField("rating")
	assert.Error(t, err)
}

func TestIsFieldTerm(t *testing.T) {
	assert.True(t, IsFieldTerm("tag:coast"))
	assert.True(t, IsFieldTerm("Privacy:private"))
	assert.False(t, IsFieldTerm("tag:"))
	assert.False(t, IsFieldTerm("colour:red"))
	assert.False(t, IsFieldTerm("harbour"))

	// Unknown prefixes fall back to fuzzy matching on the whole term
	assert.Nil(t, FilterQuery(""))
	keep := FilterQuery("note:x")
	assert.False(t, keep(fixtures()[0]))
}
