package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// ciInterval is how many files pass between CI progress lines.
const ciInterval = 10

// Reporter provides progress feedback while a folder is indexed.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
	// Abort ends a report whose run stopped before the last file.
	Abort()
}

// Options selects a Reporter.
type Options struct {
	// Quiet disables progress output, e.g. when verbose logs trace each file.
	Quiet  bool
	Output io.Writer
}

// NewReporter returns a CIReporter if the CI environment variable is set,
// a NopReporter when quiet, and a TerminalReporter otherwise.
func NewReporter(opts Options) Reporter {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	switch {
	case opts.Quiet:
		return NopReporter{}
	case os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "":
		return &CIReporter{out: out}
	default:
		return &TerminalReporter{out: out}
	}
}

// Tracker feeds a pipeline's per-file progress into a Reporter.
type Tracker struct {
	r        Reporter
	started  bool
	finished bool
}

// NewTracker wraps r.
func NewTracker(r Reporter) *Tracker {
	return &Tracker{r: r}
}

// Update is the progress callback. The reporter is started on the first
// call and finished once done reaches total.
func (t *Tracker) Update(done, total int, currentFile string) {
	if !t.started {
		t.r.Start(total)
		t.started = true
	}
	t.r.Update(done, currentFile)
	if done == total && !t.finished {
		t.finished = true
		t.r.Finish()
	}
}

// Close aborts a report that was started but never finished, as after a
// canceled or failed run. It is a no-op otherwise.
func (t *Tracker) Close() {
	if t.started && !t.finished {
		t.finished = true
		t.r.Abort()
	}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

func (r *TerminalReporter) Abort() {
	if r.bar != nil {
		_ = r.bar.Clear()
	}
}

// CIReporter prints a progress line every few files, suitable for CI logs.
type CIReporter struct {
	out     io.Writer
	total   int
	current int
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.out, "Indexing %d files\n", total)
}

func (r *CIReporter) Update(current int, _ string) {
	r.current = current
	if current > 0 && (current%ciInterval == 0 || current == r.total) {
		fmt.Fprintf(r.out, "Processed %d/%d files\n", current, r.total)
	}
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.out, "Indexing complete")
}

func (r *CIReporter) Abort() {
	fmt.Fprintf(r.out, "Indexing stopped after %d/%d files\n", r.current, r.total)
}

// NopReporter discards progress.
type NopReporter struct{}

func (NopReporter) Start(int)          {}
func (NopReporter) Update(int, string) {}
func (NopReporter) Finish()            {}
func (NopReporter) Abort()             {}
