// Package progress shows CLI progress on stderr, keeping stdout clean for
// piping. Nothing is drawn when stderr is not a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// minItems is the smallest count worth a counter.
const minItems = 3

// Counter reports "label... n/total" while a known number of items is
// processed.
type Counter struct {
	w       io.Writer
	label   string
	total   int
	current int
	enabled bool
}

// NewCounter returns a counter for total items writing to stderr.
func NewCounter(label string, total int) *Counter {
	return newCounter(os.Stderr, label, total, isTerminal(os.Stderr))
}

func newCounter(w io.Writer, label string, total int, tty bool) *Counter {
	return &Counter{w: w, label: label, total: total, enabled: tty && total >= minItems}
}

// Step marks one more item done and redraws the line.
func (c *Counter) Step() {
	c.current++
	if c.enabled {
		fmt.Fprintf(c.w, "\r%s... %d/%d", c.label, c.current, c.total)
	}
}

// Done clears the line.
func (c *Counter) Done() {
	if c.enabled {
		clearLine(c.w, len(c.label)+24)
	}
}

// Spinner animates while an operation of unknown length, such as a model
// call, is running.
type Spinner struct {
	w       io.Writer
	label   string
	enabled bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner returns a spinner writing to stderr.
func NewSpinner(label string) *Spinner {
	return &Spinner{w: os.Stderr, label: label, enabled: isTerminal(os.Stderr)}
}

// Start begins the animation. Calling Start on a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for i := 0; ; i++ {
		fmt.Fprintf(s.w, "\r%s %s...", frames[i%len(frames)], s.label)
		select {
		case <-stop:
			clearLine(s.w, len(s.label)+8)
			return
		case <-t.C:
		}
	}
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func clearLine(w io.Writer, width int) {
	fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width))
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
