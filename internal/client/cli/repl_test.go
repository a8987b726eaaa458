package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	args  [][]string
	err   error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return f.err
}

func (f *fakeExec) List(_ context.Context, a []string) error   { return f.record("list", a) }
func (f *fakeExec) New(_ context.Context, a []string) error    { return f.record("new", a) }
func (f *fakeExec) Show(_ context.Context, a []string) error   { return f.record("show", a) }
func (f *fakeExec) Set(_ context.Context, a []string) error    { return f.record("set", a) }
func (f *fakeExec) Edit(_ context.Context, a []string) error   { return f.record("edit", a) }
func (f *fakeExec) Delete(_ context.Context, a []string) error { return f.record("delete", a) }
func (f *fakeExec) Search(_ context.Context, a []string) error { return f.record("search", a) }
func (f *fakeExec) Import(_ context.Context, a []string) error { return f.record("import", a) }
func (f *fakeExec) Export(_ context.Context, a []string) error { return f.record("export", a) }
func (f *fakeExec) Info(_ context.Context, a []string) error   { return f.record("info", a) }
func (f *fakeExec) Save(_ context.Context, a []string) error   { return f.record("save", a) }
func (f *fakeExec) Reload(_ context.Context, a []string) error { return f.record("reload", a) }

func noPrompt() string { return "" }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := "help\nlist\n\nnew My day\nshow 3\nset 3 title A B\nedit 3\nrm 3\nfind cat\nimport x.json\nexport csv out\ninfo\nsave\nreload\nfoobar\nexit\nlist\n"
	exec := &fakeExec{}
	var out bytes.Buffer

	runREPL(context.Background(), exec, rdr(input), &out, noPrompt)

	assert.Equal(t, []string{"list", "new", "show", "set", "edit", "delete", "search", "import", "export", "info", "save", "reload"}, exec.calls)
	assert.Equal(t, []string{"My", "day"}, exec.args[1])
	assert.Equal(t, []string{"3", "title", "A", "B"}, exec.args[3])
	assert.Contains(t, out.String(), "Available commands")
	assert.Contains(t, out.String(), "Unknown command: foobar")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	exec := &fakeExec{err: errors.New("boom")}
	var out bytes.Buffer

	runREPL(context.Background(), exec, rdr("show 1\nlist"), &out, func() string { return "> " })

	assert.Equal(t, []string{"show", "list"}, exec.calls)
	assert.Contains(t, out.String(), "error: boom")
	assert.Contains(t, out.String(), "> ")
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{}

	runREPL(ctx, exec, rdr("list\n"), &bytes.Buffer{}, noPrompt)
	assert.Empty(t, exec.calls)
}
