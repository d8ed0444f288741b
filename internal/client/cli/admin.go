package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/oskolki/internal/client/models"
)

func (a *App) Apps(_ context.Context, _ []string) error {
	apps := a.service.Applications()
	if len(apps) == 0 {
		fmt.Fprintln(a.out, "No applications")
		return nil
	}
	for _, app := range apps {
		fmt.Fprintf(a.out, "%s  %-24s %-10s %-12s %s\n",
			app.ID, app.FullName, app.Position, app.Status.Label(), strings.Repeat("★", app.Rating.Stars()))
		fmt.Fprintf(a.out, "    %s, %s, %s\n", app.Email, app.Phone, app.Salary)
		if app.Notes != "" {
			fmt.Fprintf(a.out, "    📝 %s\n", app.Notes)
		}
	}
	return nil
}

func (a *App) Status(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("status <application id> <new|viewed|approved|rejected>")
	}
	app, err := a.service.UpdateStatus(ctx, args[0], models.Status(args[1]))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s → %s\n", app.ID, app.Status.Label())
	return nil
}

func (a *App) Note(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage("note <application id> [text]")
	}
	_, err := a.service.UpdateNotes(ctx, args[0], strings.Join(args[1:], " "))
	return err
}

func (a *App) Rate(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("rate <application id> <0-3>")
	}
	stars, err := strconv.Atoi(args[1])
	if err != nil {
		return usage("rate <application id> <0-3>")
	}
	_, err = a.service.SetRating(ctx, args[0], stars)
	return err
}

func (a *App) Holidays(_ context.Context, _ []string) error {
	hs := a.service.Holidays()
	if len(hs) == 0 {
		fmt.Fprintln(a.out, "No holidays")
		return nil
	}
	for _, h := range hs {
		fmt.Fprintf(a.out, "%s  %s  %s\n", h.ID, h.Date, h.Name)
	}
	return nil
}

func (a *App) AddHoliday(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("addholiday <YYYY-MM-DD> <name>")
	}
	h, err := a.service.AddHoliday(ctx, strings.Join(args[1:], " "), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s (%s)\n", h.Name, h.ID)
	return nil
}

func (a *App) DelHoliday(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delholiday <id>")
	}
	return a.service.DeleteHoliday(ctx, args[0])
}

func (a *App) AddVacancy(ctx context.Context, _ []string) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	bounds := make([]int, 2)
	for i, prompt := range []string{"Salary from", "Salary to"} {
		s, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if s == "" {
			continue
		}
		if bounds[i], err = strconv.Atoi(s); err != nil {
			return usage("salary must be a number")
		}
	}

	v, err := a.service.AddVacancy(ctx, models.Vacancy{Title: title, Description: desc, SalaryMin: bounds[0], SalaryMax: bounds[1]})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added vacancy %s (%s)\n", v.Title, v.ID)
	return nil
}

func (a *App) DelVacancy(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delvacancy <id>")
	}
	return a.service.DeleteVacancy(ctx, args[0])
}

// Sync runs a full refresh and reports reachability.
func (a *App) Sync(ctx context.Context, _ []string) error {
	err := a.service.Refresh(ctx)
	if a.service.Online() {
		a.setMode(ModeOnline)
	} else {
		a.setMode(ModeOffline)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Synchronized")
	return nil
}

func (a *App) Backup(ctx context.Context, _ []string) error {
	if !a.archiver.Enabled() {
		fmt.Fprintln(a.out, "Backup is not configured (set s3_bucket)")
		return nil
	}
	key, err := a.archiver.Upload(ctx, a.service.Snapshot())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Snapshot stored as %s\n", key)
	return nil
}
