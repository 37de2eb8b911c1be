package tui

import (
	"github.com/mmcdole/archivist/internal/domain"
	"github.com/mmcdole/archivist/internal/view"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// BusyMsg carries a busy-indicator edge from the shared counter
type BusyMsg struct {
	Visible bool
}

// ViewMsg carries a recomputed page of documents
type ViewMsg struct {
	Result view.Result[domain.Document]
}

// ProgressMsg carries paging progress during a refresh
type ProgressMsg struct {
	Progress domain.FetchProgress
}

// RefreshedMsg signals that a refresh finished
type RefreshedMsg struct {
	Count int
}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
