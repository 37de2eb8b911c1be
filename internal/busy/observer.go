package busy

// Observer receives busy edges from a Counter.
// Observers are invoked with the counter locked, in transition order, and
// must not call back into the counter.
type Observer interface {
	OnVisibilityChange(visible bool)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(visible bool)

// OnVisibilityChange calls f(visible).
func (f ObserverFunc) OnVisibilityChange(visible bool) { f(visible) }

// NoOpObserver discards edges (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnVisibilityChange(bool) {}

// ChannelObserver adapts Observer to a channel for Bubble Tea.
// The channel holds at most the latest edge: an unread edge is replaced by
// the newer one, so a slow reader sees the current state and never blocks
// the counter.
type ChannelObserver struct {
	ch chan bool
}

// NewChannelObserver creates a channel-based observer. ch should have a
// buffer of one.
func NewChannelObserver(ch chan bool) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnVisibilityChange sends the edge, replacing any unread one.
func (o *ChannelObserver) OnVisibilityChange(visible bool) {
	SendLatest(o.ch, visible)
}

// SendLatest sends v on a buffered channel without blocking. When the buffer
// is full the oldest unread value is dropped to make room.
func SendLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		// Full: drop the stale value and retry.
		select {
		case <-ch:
		default:
		}
	}
}
