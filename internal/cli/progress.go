package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v2"
)

// Progress reports per-file import progress: a bar on terminals, one line
// per file otherwise.
type Progress struct {
	w        io.Writer
	terminal bool
	bar      *progressbar.ProgressBar
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewProgress creates a reporter writing to w.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w, terminal: IsTerminal(w)}
}

// Report records that done of total files are finished, the latest being path.
// It matches the indexer's progress callback.
func (p *Progress) Report(done, total int, path string, err error) {
	if p.terminal {
		if p.bar == nil {
			p.bar = progressbar.NewOptions(total, progressbar.OptionSetWriter(p.w))
		}
		_ = p.bar.Add(1)
		return
	}
	if err != nil {
		fmt.Fprintf(p.w, "[%d/%d] failed   %s: %v\n", done, total, path, err)
		return
	}
	fmt.Fprintf(p.w, "[%d/%d] imported %s\n", done, total, path)
}

// Done finishes the bar, if any.
func (p *Progress) Done() {
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(p.w)
	}
}
