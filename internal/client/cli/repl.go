package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. Each handler
// receives the arguments after the command word.
type execIface interface {
	isPrivileged() bool

	Apply(ctx context.Context, args []string) error
	Vacancies(ctx context.Context, args []string) error
	Banner(ctx context.Context, args []string) error
	Tap(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Chat(ctx context.Context, args []string) error
	Say(ctx context.Context, args []string) error

	Apps(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Note(ctx context.Context, args []string) error
	Rate(ctx context.Context, args []string) error
	Holidays(ctx context.Context, args []string) error
	AddHoliday(ctx context.Context, args []string) error
	DelHoliday(ctx context.Context, args []string) error
	AddVacancy(ctx context.Context, args []string) error
	DelVacancy(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Backup(ctx context.Context, args []string) error
}

const (
	guestHelp = "Available commands: apply, vacancies, banner, chat, say, tap, login, exit"
	adminHelp = "Available commands: apps, status, note, rate, holidays, addholiday, delholiday, " +
		"vacancies, addvacancy, delvacancy, chat, say, banner, sync, backup, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a
// until EOF or exit/quit. Handler errors are printed and the loop goes on.
// Admin-only commands are hidden from guests and reported as unknown.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		fmt.Printf("oskolki %s> ", statusFn())
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !(errors.Is(readErr, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if readErr != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		var h func(context.Context, []string) error
		switch cmd {
		case "help":
			if a.isPrivileged() {
				printlnFn(adminHelp)
			} else {
				printlnFn(guestHelp)
			}
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "apply":
			h = a.Apply
		case "vacancies":
			h = a.Vacancies
		case "banner":
			h = a.Banner
		case "tap":
			h = a.Tap
		case "login":
			h = a.Login
		case "chat":
			h = a.Chat
		case "say":
			h = a.Say
		}

		if h == nil && a.isPrivileged() {
			switch cmd {
			case "logout":
				h = a.Logout
			case "apps":
				h = a.Apps
			case "status":
				h = a.Status
			case "note":
				h = a.Note
			case "rate":
				h = a.Rate
			case "holidays":
				h = a.Holidays
			case "addholiday":
				h = a.AddHoliday
			case "delholiday":
				h = a.DelHoliday
			case "addvacancy":
				h = a.AddVacancy
			case "delvacancy":
				h = a.DelVacancy
			case "sync":
				h = a.Sync
			case "backup":
				h = a.Backup
			}
		}

		if h == nil {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if err := h(ctx, args); err != nil {
			printlnFn("Error:", err)
		}

		// unterminated last line
		if readErr != nil {
			return
		}
	}
}
