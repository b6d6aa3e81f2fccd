package cli

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/alnah/translocutor/internal/translate"
)

// lineReporter prints each status message on its own line.
// Used when stderr is not a terminal (pipes, CI logs).
type lineReporter struct {
	w io.Writer
}

func (r lineReporter) OnStart(msg string) { _, _ = fmt.Fprintf(r.w, "  %s\n", msg) }
func (r lineReporter) OnEnd(msg string)   { _, _ = fmt.Fprintf(r.w, "  %s\n", msg) }

// barReporter drives a spinner on a terminal: the description follows the
// current partition and the counter advances when a partition completes.
type barReporter struct {
	bar *progressbar.ProgressBar
}

func newBarReporter(w io.Writer, description string) *barReporter {
	return &barReporter{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionClearOnFinish(),
		),
	}
}

func (r *barReporter) OnStart(msg string) { r.bar.Describe(msg) }
func (r *barReporter) OnEnd(string)       { _ = r.bar.Add(1) }

func (r *barReporter) finish() {
	_ = r.bar.Finish()
}

// newStatusReporter picks the progress display for env.Stderr.
// The returned func must be called once the file is done.
func newStatusReporter(env *Env, path string) (translate.StatusReporter, func()) {
	if env.IsTerminal != nil && env.IsTerminal(env.Stderr) {
		r := newBarReporter(env.Stderr, "translating "+path)
		return r, r.finish
	}
	return lineReporter{w: env.Stderr}, func() {}
}

// Compile-time interface verification.
var (
	_ translate.StatusReporter = lineReporter{}
	_ translate.StatusReporter = (*barReporter)(nil)
)
