package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/fatcat/internal/fatcat"
)

const spinnerInterval = 80 * time.Millisecond

//nolint:gochecknoglobals // Spinner frames
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// spinner redraws a single status line in place until stopped.
type spinner struct {
	w        io.Writer
	progress atomic.Pointer[fatcat.Progress]
	stop     chan struct{}
	wg       sync.WaitGroup
}

// startSpinner starts drawing to w.
func startSpinner(w io.Writer) *spinner {
	s := &spinner{w: w, stop: make(chan struct{})}

	// Hide cursor for in-place updates; restored by Stop.
	fmt.Fprint(w, "\033[?25l")

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			s.draw(spinnerFrames[frame%len(spinnerFrames)])

			select {
			case <-ticker.C:
			case <-s.stop:
				return
			}
		}
	}()

	return s
}

func (s *spinner) draw(frame string) {
	msg := "Scanning..."

	if p := s.progress.Load(); p != nil {
		msg = fmt.Sprintf("Scanning... %s files, %s found",
			humanize.Comma(int64(p.FilesSeen)), humanize.Comma(int64(p.Matched))) //nolint:gosec // Counts fit
	}

	fmt.Fprintf(s.w, "\r\033[2K  %s %s\r", cyan.Render(frame), msg)
}

// Update is a fatcat progress hook.
func (s *spinner) Update(p fatcat.Progress) {
	s.progress.Store(&p)
}

// Stop clears the status line and restores the cursor.
func (s *spinner) Stop() {
	close(s.stop)
	s.wg.Wait()

	fmt.Fprint(s.w, "\r\033[2K\r\033[?25h")
}
