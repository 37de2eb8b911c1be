package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/archivist/internal/catalog"
	"github.com/mmcdole/archivist/internal/domain"
	"github.com/mmcdole/archivist/internal/view"
)

const refreshTimeout = 60 * time.Second

// Command factories for async operations

// RefreshCmd fetches every document and replaces the table's record set.
// The new page arrives separately as a ViewMsg.
func RefreshCmd(ctx context.Context, svc *catalog.Service, observer domain.FetchObserver) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()

		n, err := svc.Refresh(ctx, observer)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return ErrMsg{Err: err, Context: "refreshing documents"}
		}
		return RefreshedMsg{Count: n}
	}
}

// WaitForBusyCmd waits for the next busy-indicator edge
func WaitForBusyCmd(ch <-chan bool) tea.Cmd {
	return func() tea.Msg {
		visible, ok := <-ch
		if !ok {
			return nil
		}
		return BusyMsg{Visible: visible}
	}
}

// WaitForViewCmd waits for the next recomputed page
func WaitForViewCmd(ch <-chan view.Result[domain.Document]) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return ViewMsg{Result: r}
	}
}

// WaitForProgressCmd waits for the next paging progress update
func WaitForProgressCmd(ch <-chan domain.FetchProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return ProgressMsg{Progress: p}
	}
}

// ClearStatusCmd clears the status bar after d
func ClearStatusCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
