package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// progress renders transfer ticks.
// On a terminal it redraws a bar in place;
// otherwise it logs a line now and then.
type progress struct {
	w     io.Writer
	fd    int
	tty   bool
	every time.Duration
	last  time.Time
}

func newProgress(f *os.File) *progress {
	fd := int(f.Fd())
	p := &progress{w: f, fd: fd, tty: term.IsTerminal(fd)}
	if p.tty {
		p.every = 100 * time.Millisecond
	} else {
		p.every = 10 * time.Second
	}
	return p
}

func (p *progress) tick(done, total int, elapsed time.Duration) {
	final := done == total
	if !final && time.Since(p.last) < p.every {
		return
	}
	p.last = time.Now()

	if !p.tty {
		log.Printf("Copy progress: %d/%d chunks, elapsed %s", done, total, elapsed.Round(time.Second))
		return
	}

	width := 80
	if w, _, err := term.GetSize(p.fd); err == nil && w > 0 {
		width = w
	}
	fmt.Fprintf(p.w, "\r%s", progressLine(done, total, elapsed, width))
	if final {
		fmt.Fprintln(p.w)
	}
}

// progressLine formats a one-line progress bar fitting in width columns.
func progressLine(done, total int, elapsed time.Duration, width int) string {
	var frac float64
	if total > 0 {
		frac = float64(done) / float64(total)
	}
	var (
		prefix = fmt.Sprintf("Copy progress: %3.0f%% |", 100*frac)
		suffix = fmt.Sprintf("| %d/%d chunks [elapsed %.2fs]", done, total, elapsed.Seconds())
		barlen = width - len(prefix) - len(suffix) - 1
	)
	if barlen < 10 {
		return prefix[:len(prefix)-2] + suffix[1:]
	}
	filled := int(frac * float64(barlen))
	return prefix + strings.Repeat("#", filled) + strings.Repeat(" ", barlen-filled) + suffix
}
