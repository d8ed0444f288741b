package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/oskolki/internal/client/models"
	"github.com/dmitrijs2005/oskolki/internal/common"
)

// getSimpleText and getPassword are indirections swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

// Apply prompts for the application form and submits it.
func (a *App) Apply(ctx context.Context, _ []string) error {
	var form models.ApplicationForm
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"ФИО", &form.FullName},
		{"Email", &form.Email},
		{"Телефон", &form.Phone},
		{"Должность (" + a.vacancyTitles() + ")", &form.Position},
		{"Ожидаемая зарплата", &form.Salary},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	app, err := a.service.SubmitApplication(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✅ Заявка отправлена (%s)\n", app.ID)
	return nil
}

func (a *App) vacancyTitles() string {
	vs := a.service.Vacancies()
	titles := make([]string, len(vs))
	for i, v := range vs {
		titles[i] = v.Title
	}
	return strings.Join(titles, ", ")
}

func (a *App) Vacancies(_ context.Context, _ []string) error {
	vs := a.service.Vacancies()
	if len(vs) == 0 {
		fmt.Fprintln(a.out, "No vacancies")
		return nil
	}
	for _, v := range vs {
		fmt.Fprintf(a.out, "[%s] %s  %d–%d\n", v.ID, v.Title, v.SalaryMin, v.SalaryMax)
		if v.Description != "" {
			fmt.Fprintf(a.out, "    %s\n", v.Description)
		}
	}
	return nil
}

func (a *App) Banner(_ context.Context, _ []string) error {
	fmt.Fprintln(a.out, a.service.Banner(a.now()).Text())
	return nil
}

// Tap feeds the hidden gesture; reaching the threshold opens the login
// prompt.
func (a *App) Tap(ctx context.Context, _ []string) error {
	if a.isPrivileged() || !a.gesture.Tap() {
		return nil
	}
	return a.Login(ctx, nil)
}

func (a *App) Login(ctx context.Context, _ []string) error {
	if a.isPrivileged() {
		fmt.Fprintln(a.out, "Already logged in")
		return nil
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	if err := a.session.Login(ctx, email, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// applicantThread is the application the local applicant last submitted.
func (a *App) applicantThread(ctx context.Context) (string, error) {
	var last models.Application
	if !a.local.Load(ctx, common.KeyLastApplication, &last) || last.ID == "" {
		return "", fmt.Errorf("%w: submit an application first", common.ErrNotFound)
	}
	return last.ID, nil
}

func (a *App) side() models.Sender {
	if a.isPrivileged() {
		return models.SenderAdmin
	}
	return models.SenderUser
}

// Chat lists threads with unread counts (admin, no args) or prints one
// thread and marks the other side's messages read.
func (a *App) Chat(ctx context.Context, args []string) error {
	var appID string
	switch {
	case len(args) > 0:
		if !a.isPrivileged() {
			return usage("chat")
		}
		appID = args[0]
	case a.isPrivileged():
		log := a.service.Chat()
		if log.Len() == 0 {
			fmt.Fprintln(a.out, "No messages")
			return nil
		}
		for _, app := range a.service.Applications() {
			if n := len(log[app.ID]); n > 0 {
				fmt.Fprintf(a.out, "%s  %s  messages: %d, unread: %d\n", app.ID, app.FullName, n, log.Unread(app.ID, models.SenderAdmin))
			}
		}
		return nil
	default:
		id, err := a.applicantThread(ctx)
		if err != nil {
			return err
		}
		appID = id
	}

	for _, m := range a.service.Thread(appID) {
		fmt.Fprintf(a.out, "[%s] %s: %s\n", m.Timestamp, m.Sender, m.Text)
	}
	_, err := a.service.MarkChatRead(ctx, appID, a.side())
	return err
}

// Say sends a chat message. Admins name the application; applicants write
// to their own thread.
func (a *App) Say(ctx context.Context, args []string) error {
	var appID string
	if a.isPrivileged() {
		if len(args) < 2 {
			return usage("say <application id> <text>")
		}
		appID, args = args[0], args[1:]
	} else {
		if len(args) == 0 {
			return usage("say <text>")
		}
		id, err := a.applicantThread(ctx)
		if err != nil {
			return err
		}
		appID = id
	}

	_, err := a.service.SendMessage(ctx, appID, a.side(), strings.Join(args, " "))
	return err
}
