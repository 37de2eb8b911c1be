package tui

import (
	"context"
	"fmt"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/archivist/internal/busy"
	"github.com/mmcdole/archivist/internal/catalog"
	"github.com/mmcdole/archivist/internal/domain"
	"github.com/mmcdole/archivist/internal/log"
	"github.com/mmcdole/archivist/internal/view"
)

type stubFetcher struct {
	docs []domain.Document
	err  error
}

func (f stubFetcher) FetchAllDocuments(context.Context, domain.DocumentQuery, int, domain.FetchObserver) ([]domain.Document, error) {
	return f.docs, f.err
}

// thirtyDocs returns 29 surveys and one annual report (ID 30)
func thirtyDocs() []domain.Document {
	docs := make([]domain.Document, 30)
	for i := range 29 {
		docs[i] = domain.Document{ID: int64(i + 1), Title: fmt.Sprintf("Survey %02d", i+1), Privacy: domain.PrivacyPublic}
	}
	docs[29] = domain.Document{ID: 30, Title: "Annual report", Privacy: domain.PrivacyPrivate}
	return docs
}

func newTestModel(t *testing.T, f catalog.Fetcher) (Model, *busy.Counter) {
	t.Helper()
	svc, err := catalog.NewService(f, log.NullLogger(), catalog.Options{PageSize: 10})
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), nil)
	require.NoError(t, err)

	counter := busy.NewCounter(log.NullLogger())
	m := NewModel(context.Background(), svc, counter)
	t.Cleanup(m.Close)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return updated.(Model), counter
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestNewModel_ShowsCurrentPage(t *testing.T) {
	m, _ := newTestModel(t, stubFetcher{docs: thirtyDocs()})

	r := m.Table.Result()
	assert.Equal(t, 30, r.TotalCount)
	assert.Equal(t, 3, r.PageCount)
	assert.Len(t, r.Items, 10)
	assert.False(t, m.Loading)
}

func TestUpdate_PageKeys(t *testing.T) {
	m, _ := newTestModel(t, stubFetcher{docs: thirtyDocs()})

	m = press(t, m, keyRunes("j"), keyRunes("j"))
	assert.Equal(t, 2, m.Table.Cursor())

	m = press(t, m, keyRunes("n"))
	assert.Equal(t, 1, m.Table.Result().PageIndex)
	assert.Equal(t, 0, m.Table.Cursor())
	assert.Equal(t, int64(11), m.Table.Result().Items[0].ID)

	m = press(t, m, keyRunes("n"), keyRunes("n"))
	assert.Equal(t, 2, m.Table.Result().PageIndex, "stays on the last page")

	m = press(t, m, keyRunes("p"))
	assert.Equal(t, 1, m.Table.Result().PageIndex)
}

func TestUpdate_FilterInput(t *testing.T) {
	m, _ := newTestModel(t, stubFetcher{docs: thirtyDocs()})
	m = press(t, m, keyRunes("n"))

	m = press(t, m, keyRunes("/"))
	require.True(t, m.Filtering)

	m = press(t, m, keyRunes("annual"))
	assert.Equal(t, "annual", m.Catalog.Filter())
	r := m.Table.Result()
	assert.Equal(t, 1, r.TotalCount)
	assert.Equal(t, 0, r.PageIndex)
	require.Len(t, r.Items, 1)
	assert.Equal(t, int64(30), r.Items[0].ID)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Filtering)
	assert.Equal(t, "annual", m.Catalog.Filter(), "enter keeps the filter")

	// esc outside the input clears the applied filter
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", m.Catalog.Filter())
	assert.Equal(t, 30, m.Table.Result().TotalCount)
}

func TestUpdate_FilterEscapeClears(t *testing.T) {
	m, _ := newTestModel(t, stubFetcher{docs: thirtyDocs()})

	m = press(t, m, keyRunes("/"), keyRunes("survey 0"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Filtering)
	assert.Equal(t, "", m.Catalog.Filter())
	assert.Equal(t, 30, m.Table.Result().TotalCount)
}

func TestUpdate_SortModal(t *testing.T) {
	m, _ := newTestModel(t, stubFetcher{docs: thirtyDocs()})

	m = press(t, m, keyRunes("s"))
	require.True(t, m.SortModal.IsVisible())

	// Default -> ID (desc by default)
	m = press(t, m, keyRunes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.SortModal.IsVisible())
	assert.Equal(t, catalog.SortSelection{Field: catalog.SortID, Direction: view.Desc}, m.Catalog.Sort())
	assert.Equal(t, int64(30), m.Table.Result().Items[0].ID)

	// Choosing ID again flips it
	m = press(t, m, keyRunes("s"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, view.Asc, m.Catalog.Sort().Direction)
	assert.Equal(t, int64(1), m.Table.Result().Items[0].ID)
}

func TestUpdate_BusyEdges(t *testing.T) {
	m, counter := newTestModel(t, stubFetcher{docs: thirtyDocs()})

	h := counter.Register()
	msg := WaitForBusyCmd(m.busyCh)()
	assert.Equal(t, BusyMsg{Visible: true}, msg)

	updated, cmd := m.Update(msg)
	m = updated.(Model)
	assert.True(t, m.Loading)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Loading...")

	m = press(t, m, ProgressMsg{Progress: domain.FetchProgress{Loaded: 200, Page: 2}})
	assert.Contains(t, m.View(), "Loading · 200 documents")

	require.NoError(t, counter.Complete(h))
	msg = WaitForBusyCmd(m.busyCh)()
	assert.Equal(t, BusyMsg{Visible: false}, msg)

	m = press(t, m, msg)
	assert.False(t, m.Loading)

	_, cmd = m.Update(spinner.TickMsg{})
	assert.Nil(t, cmd, "spinner stops once idle")
}

func TestUpdate_RefreshWhileLoadingIsIgnored(t *testing.T) {
	m, _ := newTestModel(t, stubFetcher{docs: thirtyDocs()})
	m = press(t, m, BusyMsg{Visible: true})

	updated, _ := m.Update(keyRunes("r"))
	m = updated.(Model)
	assert.Equal(t, "Refresh already running", m.StatusMsg)
}

func TestRefreshCmd(t *testing.T) {
	t.Run("publishes the new page", func(t *testing.T) {
		m, _ := newTestModel(t, stubFetcher{docs: thirtyDocs()})

		msg := RefreshCmd(context.Background(), m.Catalog, domain.NoOpObserver{})()
		assert.Equal(t, RefreshedMsg{Count: 30}, msg)

		viewMsg := WaitForViewCmd(m.viewCh)()
		require.IsType(t, ViewMsg{}, viewMsg)
		assert.Equal(t, 30, viewMsg.(ViewMsg).Result.TotalCount)
	})

	t.Run("reports errors", func(t *testing.T) {
		svc, err := catalog.NewService(stubFetcher{err: domain.ErrServerOffline}, log.NullLogger(), catalog.Options{})
		require.NoError(t, err)

		msg := RefreshCmd(context.Background(), svc, nil)()
		require.IsType(t, ErrMsg{}, msg)
		assert.ErrorIs(t, msg.(ErrMsg).Err, domain.ErrServerOffline)
	})

	t.Run("cancelled refresh is silent", func(t *testing.T) {
		svc, err := catalog.NewService(stubFetcher{err: context.Canceled}, log.NullLogger(), catalog.Options{})
		require.NoError(t, err)

		assert.Nil(t, RefreshCmd(context.Background(), svc, nil)())
	})
}

func TestUpdate_ErrorStatus(t *testing.T) {
	m, _ := newTestModel(t, stubFetcher{docs: thirtyDocs()})

	updated, cmd := m.Update(ErrMsg{Err: domain.ErrAuthFailed, Context: "refreshing documents"})
	m = updated.(Model)
	assert.True(t, m.StatusIsErr)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "refreshing documents: authentication token is invalid")

	m = press(t, m, ClearStatusMsg{})
	assert.Empty(t, m.StatusMsg)
}

func TestUpdate_Quit(t *testing.T) {
	m, _ := newTestModel(t, stubFetcher{docs: thirtyDocs()})

	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_HelpOverlay(t *testing.T) {
	m, _ := newTestModel(t, stubFetcher{docs: thirtyDocs()})

	m = press(t, m, keyRunes("?"))
	assert.True(t, m.ShowHelp)
	assert.Contains(t, m.View(), "next page")

	m = press(t, m, keyRunes("x"))
	assert.False(t, m.ShowHelp)
}
