package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/oskolki/internal/client/models"
	"github.com/dmitrijs2005/oskolki/internal/common"
)

var sheets = map[Collection]string{
	Applications: common.SheetApplications,
	Holidays:     common.SheetHolidays,
	Chat:         common.SheetChat,
	Vacancies:    common.SheetVacancies,
}

var cacheKeys = map[Collection]string{
	Applications: common.KeyApplications,
	Holidays:     common.KeyHolidays,
	Chat:         common.KeyChat,
	Vacancies:    common.KeyVacancies,
}

// fetch reads one collection and tracks reachability. The returned ticket
// must be checked with staleLocked before the rows are applied.
func (o *Orchestrator) fetch(ctx context.Context, c Collection) (uint64, []models.Row, error) {
	ticket := o.ticket(c)
	rows, err := o.remote.FetchCollection(ctx, sheets[c])

	o.online.Store(err == nil || !errors.Is(err, common.ErrNetwork))
	if err != nil {
		return ticket, nil, fmt.Errorf("%s: %w", c, err)
	}
	return ticket, rows, nil
}

func decodeRows[T any](rows []models.Row, from func(models.Row) (T, error)) ([]T, []error) {
	out := make([]T, 0, len(rows))
	var bad []error
	for _, r := range rows {
		v, err := from(r)
		if err != nil {
			bad = append(bad, err)
			continue
		}
		out = append(out, v)
	}
	return out, bad
}

func (o *Orchestrator) warnSkipped(ctx context.Context, c Collection, bad []error) {
	if len(bad) > 0 {
		o.log.Warn(ctx, "skipped malformed remote rows", "collection", c, "count", len(bad), "first", bad[0])
	}
}

// Refresh re-reads every synced collection. Each collection succeeds or
// fails on its own; a successful read replaces memory and cache. Failures
// leave the last known state in place and are returned joined, for
// display only.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	errs := []error{
		o.refreshApplications(ctx),
		o.refreshHolidays(ctx),
		o.refreshChat(ctx),
	}
	if o.opts.SyncVacancies {
		errs = append(errs, o.refreshVacancies(ctx))
	}
	err := errors.Join(errs...)
	if err != nil {
		o.log.Warn(ctx, "refresh failed for some collections", "error", err)
	}
	return err
}

func (o *Orchestrator) refreshApplications(ctx context.Context) error {
	ticket, rows, err := o.fetch(ctx, Applications)
	if err != nil {
		return err
	}
	apps, bad := decodeRows(rows, models.ApplicationFromRow)
	o.warnSkipped(ctx, Applications, bad)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.staleLocked(Applications, ticket) {
		o.log.Debug(ctx, "dropped stale response", "collection", Applications, "ticket", ticket)
		return nil
	}
	o.applied[Applications] = ticket
	o.state.Applications = apps
	o.cache.Save(ctx, common.KeyApplications, apps)
	return nil
}

func (o *Orchestrator) refreshHolidays(ctx context.Context) error {
	ticket, rows, err := o.fetch(ctx, Holidays)
	if err != nil {
		return err
	}
	fetched, bad := decodeRows(rows, models.HolidayFromRow)
	o.warnSkipped(ctx, Holidays, bad)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.staleLocked(Holidays, ticket) {
		o.log.Debug(ctx, "dropped stale response", "collection", Holidays, "ticket", ticket)
		return nil
	}
	o.applied[Holidays] = ticket
	o.state.Holidays = mergeHolidays(o.state.Holidays, fetched, o.opts.HolidayMerge)
	o.cache.Save(ctx, common.KeyHolidays, o.state.Holidays)
	return nil
}

func (o *Orchestrator) refreshChat(ctx context.Context) error {
	ticket, rows, err := o.fetch(ctx, Chat)
	if err != nil {
		return err
	}
	msgs, bad := decodeRows(rows, models.ChatMessageFromRow)
	o.warnSkipped(ctx, Chat, bad)
	log := models.GroupChat(msgs)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.staleLocked(Chat, ticket) {
		o.log.Debug(ctx, "dropped stale response", "collection", Chat, "ticket", ticket)
		return nil
	}
	o.applied[Chat] = ticket
	o.state.Chat = log
	o.cache.Save(ctx, common.KeyChat, log)
	return nil
}

func (o *Orchestrator) refreshVacancies(ctx context.Context) error {
	ticket, rows, err := o.fetch(ctx, Vacancies)
	if err != nil {
		return err
	}
	vs, bad := decodeRows(rows, models.VacancyFromRow)
	o.warnSkipped(ctx, Vacancies, bad)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.staleLocked(Vacancies, ticket) {
		o.log.Debug(ctx, "dropped stale response", "collection", Vacancies, "ticket", ticket)
		return nil
	}
	o.applied[Vacancies] = ticket
	o.state.Vacancies = vs
	o.cache.Save(ctx, common.KeyVacancies, vs)
	return nil
}
