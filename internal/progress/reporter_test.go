package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	started, finished, aborted int
	updates                    []int
}

func (r *recorder) Start(total int)              { r.started = total }
func (r *recorder) Update(current int, _ string) { r.updates = append(r.updates, current) }
func (r *recorder) Finish()                      { r.finished++ }
func (r *recorder) Abort()                       { r.aborted++ }

func TestTracker(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(rec)
	for i := 0; i <= 3; i++ {
		tr.Update(i, 3, "file.md")
	}
	tr.Close()
	assert.Equal(t, 3, rec.started)
	assert.Equal(t, []int{0, 1, 2, 3}, rec.updates)
	assert.Equal(t, 1, rec.finished)
	assert.Zero(t, rec.aborted)
}

func TestTracker_Interrupted(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(rec)
	tr.Update(0, 3, "a.md")
	tr.Update(1, 3, "b.md")
	tr.Close()
	tr.Close()
	assert.Zero(t, rec.finished)
	assert.Equal(t, 1, rec.aborted)
}

func TestTracker_NeverStarted(t *testing.T) {
	rec := &recorder{}
	NewTracker(rec).Close()
	assert.Zero(t, rec.aborted)
	assert.Zero(t, rec.started)
}

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{out: &buf}
	tr := NewTracker(r)
	for i := 0; i <= 23; i++ {
		tr.Update(i, 23, "")
	}
	assert.Equal(t, "Indexing 23 files\n"+
		"Processed 10/23 files\n"+
		"Processed 20/23 files\n"+
		"Processed 23/23 files\n"+
		"Indexing complete\n", buf.String())
}

func TestCIReporter_Interrupted(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker(&CIReporter{out: &buf})
	for i := 0; i < 4; i++ {
		tr.Update(i, 23, "")
	}
	tr.Close()
	assert.Equal(t, "Indexing 23 files\n"+
		"Indexing stopped after 3/23 files\n", buf.String())
}

func TestNewReporter(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	assert.IsType(t, NopReporter{}, NewReporter(Options{Quiet: true}))
	assert.IsType(t, &TerminalReporter{}, NewReporter(Options{}))

	t.Setenv("CI", "true")
	assert.IsType(t, &CIReporter{}, NewReporter(Options{}))
	assert.IsType(t, NopReporter{}, NewReporter(Options{Quiet: true}))
}

func TestTerminalReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &TerminalReporter{out: &buf}
	r.Update(1, "before start is ignored")
	r.Start(2)
	r.Update(1, "a.md")
	r.Update(2, "b.md")
	r.Finish()
	assert.NotEmpty(t, buf.String())
}
