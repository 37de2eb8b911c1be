package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/mmcdole/archivist/internal/busy"
	"github.com/mmcdole/archivist/internal/tui/styles"
)

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

// busySpinner draws a one-line spinner on w while the counter is busy
type busySpinner struct {
	w     io.Writer
	label string

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// attachSpinner is swapped out in tests
var attachSpinner = attachStderrSpinner

// attachStderrSpinner starts drawing on stderr whenever the counter turns
// busy. It does nothing when stderr is not a terminal.
func attachStderrSpinner(counter *busy.Counter, label string) (detach func()) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return func() {}
	}
	return newBusySpinner(os.Stderr, label).attach(counter)
}

func newBusySpinner(w io.Writer, label string) *busySpinner {
	return &busySpinner{w: w, label: label}
}

func (s *busySpinner) attach(counter *busy.Counter) (detach func()) {
	visible, unsubscribe := counter.Subscribe(busy.ObserverFunc(s.OnVisibilityChange))
	if visible {
		s.OnVisibilityChange(true)
	}
	return func() {
		unsubscribe()
		s.OnVisibilityChange(false)
	}
}

// OnVisibilityChange starts or stops the animation
func (s *busySpinner) OnVisibilityChange(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if visible {
		if s.stop != nil {
			return
		}
		stop := make(chan struct{})
		s.stop = stop
		s.wg.Go(func() { s.run(stop) })
		return
	}

	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
	s.wg.Wait()
	fmt.Fprint(s.w, clearSpinnerLine)
}

func (s *busySpinner) run(stop <-chan struct{}) {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	fmt.Fprintf(s.w, "\r%s %s", styles.SpinnerFrames[frame], s.label)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			frame++
			fmt.Fprintf(s.w, "\r%s %s", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)], s.label)
		}
	}
}
