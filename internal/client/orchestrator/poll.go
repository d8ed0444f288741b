package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/client/models"
	"github.com/dmitrijs2005/oskolki/internal/common"
)

func (o *Orchestrator) onSessionChange(privileged bool) {
	if privileged {
		o.startPolling()
		return
	}
	o.stopPolling()
}

// startPolling launches the polling loop, stopping any previous one first
// so at most one loop ever runs.
func (o *Orchestrator) startPolling() {
	o.pollMu.Lock()
	defer o.pollMu.Unlock()

	if o.stopPoll != nil {
		o.stopPoll()
	}

	ctx, cancel := context.WithCancel(o.base)
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Run(ctx)
	}()
	o.stopPoll = func() {
		cancel()
		<-done
	}
	o.log.Debug(ctx, "polling started", "interval", o.opts.PollInterval, "detector", o.opts.Detector.Name())
}

func (o *Orchestrator) stopPolling() {
	o.pollMu.Lock()
	defer o.pollMu.Unlock()

	if o.stopPoll != nil {
		o.stopPoll()
		o.stopPoll = nil
		o.log.Debug(context.Background(), "polling stopped")
	}
}

// Polling reports whether the polling loop is running.
func (o *Orchestrator) Polling() bool {
	o.pollMu.Lock()
	defer o.pollMu.Unlock()
	return o.stopPoll != nil
}

// Run polls every PollInterval until ctx is done. Ticks are skipped while
// the gate is not privileged.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !o.gate.IsPrivileged() {
				continue
			}
			_ = o.Poll(ctx)
		}
	}
}

// Poll re-reads applications and chat. When the detector reports new
// data the collection is replaced and a notification raised; otherwise
// memory is left as is. Read failures are logged and returned.
func (o *Orchestrator) Poll(ctx context.Context) error {
	err := errors.Join(o.pollApplications(ctx), o.pollChat(ctx))
	if err != nil {
		o.log.Warn(ctx, "poll failed", "error", err)
	}
	return err
}

func (o *Orchestrator) pollApplications(ctx context.Context) error {
	ticket, rows, err := o.fetch(ctx, Applications)
	if err != nil {
		return err
	}
	apps, bad := decodeRows(rows, models.ApplicationFromRow)
	o.warnSkipped(ctx, Applications, bad)
	fetched := fingerprint(apps, len(apps))

	o.mu.Lock()
	if o.staleLocked(Applications, ticket) {
		o.mu.Unlock()
		return nil
	}
	held := fingerprint(o.state.Applications, len(o.state.Applications))
	if !o.opts.Detector.Changed(held, fetched) {
		o.mu.Unlock()
		return nil
	}
	o.applied[Applications] = ticket
	o.state.Applications = apps
	o.cache.Save(ctx, common.KeyApplications, apps)
	o.mu.Unlock()

	o.notifier.Notify(ctx, Event{Collection: Applications, Added: max(0, fetched.Len-held.Len), Total: fetched.Len})
	return nil
}

func (o *Orchestrator) pollChat(ctx context.Context) error {
	ticket, rows, err := o.fetch(ctx, Chat)
	if err != nil {
		return err
	}
	msgs, bad := decodeRows(rows, models.ChatMessageFromRow)
	o.warnSkipped(ctx, Chat, bad)
	log := models.GroupChat(msgs)
	fetched := fingerprint(log.Flatten(), log.Len())

	o.mu.Lock()
	if o.staleLocked(Chat, ticket) {
		o.mu.Unlock()
		return nil
	}
	held := fingerprint(o.state.Chat.Flatten(), o.state.Chat.Len())
	if !o.opts.Detector.Changed(held, fetched) {
		o.mu.Unlock()
		return nil
	}
	o.applied[Chat] = ticket
	o.state.Chat = log
	o.cache.Save(ctx, common.KeyChat, log)
	o.mu.Unlock()

	o.notifier.Notify(ctx, Event{Collection: Chat, Added: max(0, fetched.Len-held.Len), Total: fetched.Len})
	return nil
}
