package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/client/models"
	"github.com/dmitrijs2005/oskolki/internal/common"
)

func (o *Orchestrator) requireAdmin(op string) error {
	if !o.gate.IsPrivileged() {
		return fmt.Errorf("%w: %s", common.ErrForbidden, op)
	}
	return nil
}

// SubmitApplication validates the form, puts the new application at the
// head of the list, caches it together with the applicant's email and
// posts it to the endpoint in the background.
func (o *Orchestrator) SubmitApplication(ctx context.Context, form models.ApplicationForm) (models.Application, error) {
	if err := form.Validate(); err != nil {
		return models.Application{}, err
	}

	o.mu.Lock()
	at := o.opts.Now()
	app := models.NewApplication(form, at)
	// ids are timestamps; step forward on the rare same-millisecond clash
	for indexApplication(o.state.Applications, app.ID) >= 0 {
		at = at.Add(time.Millisecond)
		app.ID = at.UTC().Format(models.IDLayout)
	}
	o.state.Applications = append([]models.Application{app}, o.state.Applications...)
	o.touchLocked(Applications)
	o.cache.SaveAll(ctx, map[string]any{
		common.KeyApplications:    o.state.Applications,
		common.KeyUserEmail:       app.Email,
		common.KeyLastApplication: app,
	})
	row := app.ToRow()
	o.pushLocked(ctx, Applications, "submit", func(ctx context.Context) error {
		return o.remote.Append(ctx, common.SheetApplications, row)
	})
	o.mu.Unlock()

	o.log.Info(ctx, "application submitted", "id", app.ID, "position", app.Position)
	return app, nil
}

// updateApplication applies fn to one application and pushes the full row.
func (o *Orchestrator) updateApplication(ctx context.Context, op, id string, fn func(*models.Application) error) (models.Application, error) {
	if err := o.requireAdmin(op); err != nil {
		return models.Application{}, err
	}

	o.mu.Lock()
	i := indexApplication(o.state.Applications, id)
	if i < 0 {
		o.mu.Unlock()
		return models.Application{}, fmt.Errorf("%w: application %s", common.ErrNotFound, id)
	}
	updated := o.state.Applications[i]
	if err := fn(&updated); err != nil {
		o.mu.Unlock()
		return models.Application{}, err
	}
	apps := append([]models.Application{}, o.state.Applications...)
	apps[i] = updated
	o.state.Applications = apps
	o.touchLocked(Applications)
	o.cache.Save(ctx, common.KeyApplications, apps)
	row := updated.ToRow()
	o.pushLocked(ctx, Applications, op, func(ctx context.Context) error {
		return o.remote.Append(ctx, common.SheetApplications, row)
	})
	o.mu.Unlock()
	return updated, nil
}

func (o *Orchestrator) UpdateStatus(ctx context.Context, id string, status models.Status) (models.Application, error) {
	if strings.TrimSpace(string(status)) == "" {
		return models.Application{}, fmt.Errorf("%w: status is required", common.ErrValidation)
	}
	st, err := models.ParseStatus(string(status))
	if err != nil {
		return models.Application{}, err
	}
	return o.updateApplication(ctx, "status", id, func(a *models.Application) error {
		a.Status = st
		return nil
	})
}

func (o *Orchestrator) UpdateNotes(ctx context.Context, id, notes string) (models.Application, error) {
	return o.updateApplication(ctx, "notes", id, func(a *models.Application) error {
		a.Notes = strings.TrimSpace(notes)
		return nil
	})
}

// SetRating sets 1..3 stars; 0 clears the rating.
func (o *Orchestrator) SetRating(ctx context.Context, id string, stars int) (models.Application, error) {
	r, err := models.NewRating(stars)
	if err != nil {
		return models.Application{}, err
	}
	return o.updateApplication(ctx, "rating", id, func(a *models.Application) error {
		a.Rating = r
		return nil
	})
}

func (o *Orchestrator) AddHoliday(ctx context.Context, name, date string) (models.Holiday, error) {
	if err := o.requireAdmin("add holiday"); err != nil {
		return models.Holiday{}, err
	}
	h, err := models.NewHoliday(o.opts.NewID(), name, date, o.opts.Now())
	if err != nil {
		return models.Holiday{}, err
	}

	o.mu.Lock()
	if o.opts.UniqueHolidayDates {
		for _, existing := range o.state.Holidays {
			if existing.Date == h.Date {
				o.mu.Unlock()
				return models.Holiday{}, fmt.Errorf("%w: %s already has holiday %q", common.ErrValidation, h.Date, existing.Name)
			}
		}
	}
	o.state.Holidays = append(append([]models.Holiday{}, o.state.Holidays...), h)
	o.touchLocked(Holidays)
	o.cache.Save(ctx, common.KeyHolidays, o.state.Holidays)
	row := h.ToRow()
	o.pushLocked(ctx, Holidays, "add", func(ctx context.Context) error {
		return o.remote.Append(ctx, common.SheetHolidays, row)
	})
	o.mu.Unlock()
	return h, nil
}

// DeleteHoliday removes the holiday locally and sends the sentinel delete.
func (o *Orchestrator) DeleteHoliday(ctx context.Context, id string) error {
	if err := o.requireAdmin("delete holiday"); err != nil {
		return err
	}

	o.mu.Lock()
	kept := make([]models.Holiday, 0, len(o.state.Holidays))
	for _, h := range o.state.Holidays {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	if len(kept) == len(o.state.Holidays) {
		o.mu.Unlock()
		return fmt.Errorf("%w: holiday %s", common.ErrNotFound, id)
	}
	o.state.Holidays = kept
	o.touchLocked(Holidays)
	o.cache.Save(ctx, common.KeyHolidays, kept)
	o.pushLocked(ctx, Holidays, "delete", func(ctx context.Context) error {
		return o.remote.Delete(ctx, common.SheetHolidays, id)
	})
	o.mu.Unlock()
	return nil
}

// AddVacancy stores a vacancy locally; it reaches the endpoint only when
// vacancy sync is enabled.
func (o *Orchestrator) AddVacancy(ctx context.Context, v models.Vacancy) (models.Vacancy, error) {
	if err := o.requireAdmin("add vacancy"); err != nil {
		return models.Vacancy{}, err
	}
	v.ID = o.opts.NewID()
	v.Title = strings.TrimSpace(v.Title)
	v.Description = strings.TrimSpace(v.Description)
	if err := v.Validate(); err != nil {
		return models.Vacancy{}, err
	}

	o.mu.Lock()
	o.state.Vacancies = append(append([]models.Vacancy{}, o.state.Vacancies...), v)
	o.touchLocked(Vacancies)
	o.cache.Save(ctx, common.KeyVacancies, o.state.Vacancies)
	if o.opts.SyncVacancies {
		row := v.ToRow()
		o.pushLocked(ctx, Vacancies, "add", func(ctx context.Context) error {
			return o.remote.Append(ctx, common.SheetVacancies, row)
		})
	}
	o.mu.Unlock()
	return v, nil
}

func (o *Orchestrator) DeleteVacancy(ctx context.Context, id string) error {
	if err := o.requireAdmin("delete vacancy"); err != nil {
		return err
	}

	o.mu.Lock()
	kept := make([]models.Vacancy, 0, len(o.state.Vacancies))
	for _, v := range o.state.Vacancies {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(o.state.Vacancies) {
		o.mu.Unlock()
		return fmt.Errorf("%w: vacancy %s", common.ErrNotFound, id)
	}
	o.state.Vacancies = kept
	o.touchLocked(Vacancies)
	o.cache.Save(ctx, common.KeyVacancies, kept)
	if o.opts.SyncVacancies {
		o.pushLocked(ctx, Vacancies, "delete", func(ctx context.Context) error {
			return o.remote.Delete(ctx, common.SheetVacancies, id)
		})
	}
	o.mu.Unlock()
	return nil
}

// SendMessage appends a message to the application's thread. Messages
// from the admin side need a privileged session.
func (o *Orchestrator) SendMessage(ctx context.Context, appID string, from models.Sender, text string) (models.ChatMessage, error) {
	if from == models.SenderAdmin {
		if err := o.requireAdmin("admin message"); err != nil {
			return models.ChatMessage{}, err
		}
	}
	msg, err := models.NewChatMessage(o.opts.NewID(), appID, from, text, o.opts.Now())
	if err != nil {
		return models.ChatMessage{}, err
	}

	o.mu.Lock()
	if indexApplication(o.state.Applications, appID) < 0 {
		o.mu.Unlock()
		return models.ChatMessage{}, fmt.Errorf("%w: application %s", common.ErrNotFound, appID)
	}
	chat := o.state.Chat.Clone()
	chat[appID] = append(chat[appID], msg)
	o.state.Chat = chat
	o.touchLocked(Chat)
	o.cache.Save(ctx, common.KeyChat, chat)
	row := msg.ToRow()
	o.pushLocked(ctx, Chat, "send", func(ctx context.Context) error {
		return o.remote.Append(ctx, common.SheetChat, row)
	})
	o.mu.Unlock()
	return msg, nil
}

// MarkChatRead flags the other side's messages in a thread as read by
// reader. The flag is local; it returns how many messages changed.
func (o *Orchestrator) MarkChatRead(ctx context.Context, appID string, reader models.Sender) (int, error) {
	if _, err := models.ParseSender(string(reader)); err != nil {
		return 0, err
	}
	if reader == models.SenderAdmin {
		if err := o.requireAdmin("read chat"); err != nil {
			return 0, err
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Chat.Unread(appID, reader) == 0 {
		return 0, nil
	}
	chat := o.state.Chat.Clone()
	n := 0
	for i := range chat[appID] {
		m := &chat[appID][i]
		if m.Sender != reader && !m.Read {
			m.Read = true
			n++
		}
	}
	o.state.Chat = chat
	o.touchLocked(Chat)
	o.cache.Save(ctx, common.KeyChat, chat)
	return n, nil
}
