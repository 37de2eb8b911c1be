package tui

import (
	"github.com/mmcdole/archivist/internal/busy"
	"github.com/mmcdole/archivist/internal/domain"
	"github.com/mmcdole/archivist/internal/view"
)

// ProgressObserver adapts domain.FetchObserver to a channel for Bubble Tea.
type ProgressObserver struct {
	ch chan domain.FetchProgress
}

// NewProgressObserver creates a new channel-based progress observer.
func NewProgressObserver(ch chan domain.FetchProgress) *ProgressObserver {
	return &ProgressObserver{ch: ch}
}

// OnProgress sends progress to the channel, replacing any unread update.
func (o *ProgressObserver) OnProgress(progress domain.FetchProgress) {
	busy.SendLatest(o.ch, progress)
}

// ViewObserver adapts view.Observer to a channel for Bubble Tea.
type ViewObserver struct {
	ch chan view.Result[domain.Document]
}

// NewViewObserver creates a new channel-based view observer.
func NewViewObserver(ch chan view.Result[domain.Document]) *ViewObserver {
	return &ViewObserver{ch: ch}
}

// OnView sends the result to the channel, replacing any unread result.
func (o *ViewObserver) OnView(r view.Result[domain.Document]) {
	busy.SendLatest(o.ch, r)
}
