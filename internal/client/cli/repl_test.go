package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	privileged bool

	calls []string
	args  [][]string
	err   error
}

func (f *fakeExec) isPrivileged() bool { return f.privileged }

func (f *fakeExec) record(name string) func(context.Context, []string) error {
	return func(_ context.Context, args []string) error {
		f.calls = append(f.calls, name)
		f.args = append(f.args, args)
		return f.err
	}
}

func (f *fakeExec) Apply(ctx context.Context, a []string) error     { return f.record("apply")(ctx, a) }
func (f *fakeExec) Vacancies(ctx context.Context, a []string) error { return f.record("vacancies")(ctx, a) }
func (f *fakeExec) Banner(ctx context.Context, a []string) error    { return f.record("banner")(ctx, a) }
func (f *fakeExec) Tap(ctx context.Context, a []string) error       { return f.record("tap")(ctx, a) }
func (f *fakeExec) Login(ctx context.Context, a []string) error {
	f.privileged = true
	return f.record("login")(ctx, a)
}
func (f *fakeExec) Logout(ctx context.Context, a []string) error {
	f.privileged = false
	return f.record("logout")(ctx, a)
}
func (f *fakeExec) Chat(ctx context.Context, a []string) error       { return f.record("chat")(ctx, a) }
func (f *fakeExec) Say(ctx context.Context, a []string) error        { return f.record("say")(ctx, a) }
func (f *fakeExec) Apps(ctx context.Context, a []string) error       { return f.record("apps")(ctx, a) }
func (f *fakeExec) Status(ctx context.Context, a []string) error     { return f.record("status")(ctx, a) }
func (f *fakeExec) Note(ctx context.Context, a []string) error       { return f.record("note")(ctx, a) }
func (f *fakeExec) Rate(ctx context.Context, a []string) error       { return f.record("rate")(ctx, a) }
func (f *fakeExec) Holidays(ctx context.Context, a []string) error   { return f.record("holidays")(ctx, a) }
func (f *fakeExec) AddHoliday(ctx context.Context, a []string) error { return f.record("addholiday")(ctx, a) }
func (f *fakeExec) DelHoliday(ctx context.Context, a []string) error { return f.record("delholiday")(ctx, a) }
func (f *fakeExec) AddVacancy(ctx context.Context, a []string) error { return f.record("addvacancy")(ctx, a) }
func (f *fakeExec) DelVacancy(ctx context.Context, a []string) error { return f.record("delvacancy")(ctx, a) }
func (f *fakeExec) Sync(ctx context.Context, a []string) error       { return f.record("sync")(ctx, a) }
func (f *fakeExec) Backup(ctx context.Context, a []string) error     { return f.record("backup")(ctx, a) }

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			switch x := v.(type) {
			case string:
				parts[i] = x
			case error:
				parts[i] = x.Error()
			}
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func run(exec *fakeExec, lines ...string) {
	in := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), exec, func() string { return "" }, in)
}

func TestRunREPL_GuestCannotReachAdminCommands(t *testing.T) {
	out := capturePrints(t)
	exec := &fakeExec{}

	run(exec, "help", "apps", "sync", "backup", "apply", "vacancies", "banner", "exit")

	assert.Equal(t, []string{"apply", "vacancies", "banner"}, exec.calls)
	assert.Equal(t, guestHelp, (*out)[0])
	assert.Contains(t, *out, "Unknown command: apps")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_AdminFlow(t *testing.T) {
	out := capturePrints(t)
	exec := &fakeExec{}

	run(exec,
		"login",
		"help",
		"",
		"apps",
		"status 2025-03-07T10:00:00.000Z approved",
		"note 2025-03-07T10:00:00.000Z call back",
		"holidays",
		"addholiday 2025-03-08 Women's Day",
		"sync",
		"logout",
		"apps",
		"quit",
		"banner",
	)

	assert.Equal(t, []string{"login", "apps", "status", "note", "holidays", "addholiday", "sync", "logout"}, exec.calls)
	assert.Equal(t, []string{"2025-03-07T10:00:00.000Z", "approved"}, exec.args[2])
	assert.Equal(t, []string{"2025-03-08", "Women's", "Day"}, exec.args[5])
	assert.Contains(t, *out, adminHelp)
	assert.Contains(t, *out, "Unknown command: apps")
}

func TestRunREPL_ErrorsAreReportedAndLoopContinues(t *testing.T) {
	out := capturePrints(t)
	exec := &fakeExec{err: errors.New("boom")}

	run(exec, "banner", "vacancies")

	assert.Equal(t, []string{"banner", "vacancies"}, exec.calls)
	assert.Equal(t, []string{"Error: boom", "Error: boom"}, *out)
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	capturePrints(t)
	exec := &fakeExec{}

	run(exec)
	assert.Empty(t, exec.calls)

	run(exec, "tap")
	assert.Equal(t, []string{"tap"}, exec.calls)
}
