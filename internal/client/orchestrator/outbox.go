package orchestrator

import (
	"context"
	"sync"
)

type pendingWrite struct {
	ctx        context.Context
	collection Collection
	op         string
	write      func(ctx context.Context) error
}

// outbox sends remote writes one at a time in the order they were queued.
// A drainer goroutine runs only while the queue is non-empty.
type outbox struct {
	mu      sync.Mutex
	queue   []pendingWrite
	running bool
}

// pushLocked queues a remote write behind every write queued before it.
// Callers hold o.mu so the queue order matches the order mutations hit
// memory. It never blocks; the write's outcome is only logged.
func (o *Orchestrator) pushLocked(ctx context.Context, c Collection, op string, write func(ctx context.Context) error) {
	o.outbox.mu.Lock()
	defer o.outbox.mu.Unlock()

	o.outbox.queue = append(o.outbox.queue, pendingWrite{
		ctx:        context.WithoutCancel(ctx),
		collection: c,
		op:         op,
		write:      write,
	})
	if o.outbox.running {
		return
	}
	o.outbox.running = true
	o.wg.Add(1)
	go o.drain()
}

func (o *Orchestrator) drain() {
	defer o.wg.Done()
	for {
		o.outbox.mu.Lock()
		if len(o.outbox.queue) == 0 {
			o.outbox.running = false
			o.outbox.mu.Unlock()
			return
		}
		w := o.outbox.queue[0]
		o.outbox.queue[0] = pendingWrite{}
		o.outbox.queue = o.outbox.queue[1:]
		o.outbox.mu.Unlock()

		o.send(w)
	}
}

// send runs one write bounded by WriteTimeout. It outlives the caller's
// context.
func (o *Orchestrator) send(w pendingWrite) {
	wctx, cancel := context.WithTimeout(w.ctx, o.opts.WriteTimeout)
	defer cancel()

	if err := w.write(wctx); err != nil {
		o.log.Warn(wctx, "remote write failed", "collection", w.collection, "op", w.op, "error", err)
		return
	}
	o.log.Debug(wctx, "remote write sent", "collection", w.collection, "op", w.op)
}
