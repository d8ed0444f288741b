package orchestrator

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/oskolki/internal/logging"
)

// Event announces new data found by polling.
type Event struct {
	Collection Collection
	// Added is how many more records the fetched collection holds; zero
	// when the content changed without growing.
	Added int
	Total int
}

func (e Event) Message() string {
	switch e.Collection {
	case Applications:
		if e.Added > 0 {
			return fmt.Sprintf("🔔 Новые заявки: %d", e.Added)
		}
		return "🔔 Заявки обновлены"
	case Chat:
		if e.Added > 0 {
			return fmt.Sprintf("💬 Новые сообщения: %d", e.Added)
		}
		return "💬 Чат обновлён"
	default:
		return fmt.Sprintf("🔔 %s updated", e.Collection)
	}
}

// Notifier surfaces polling events to the user. Notify is called from the
// polling goroutine and must not block for long.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

type NotifierFunc func(ctx context.Context, e Event)

func (f NotifierFunc) Notify(ctx context.Context, e Event) { f(ctx, e) }

// LogNotifier only logs; used when nothing else is wired.
type LogNotifier struct {
	Log logging.Logger
}

func (n LogNotifier) Notify(ctx context.Context, e Event) {
	n.Log.Info(ctx, e.Message(), "collection", e.Collection, "added", e.Added, "total", e.Total)
}
