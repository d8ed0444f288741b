// Package orchestrator owns the in-memory copies of every collection and
// keeps them loosely consistent with the local cache and the remote sheet
// endpoint.
//
// Reads go memory-first. Mutations update memory, then the cache
// (synchronously), then the remote endpoint (in the background, best
// effort). Remote reads overwrite memory and cache wholesale, guarded by a
// per-collection sequence so a stale response never replaces newer state.
package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/client/banner"
	"github.com/dmitrijs2005/oskolki/internal/client/models"
	"github.com/dmitrijs2005/oskolki/internal/client/remote"
	"github.com/dmitrijs2005/oskolki/internal/common"
	"github.com/dmitrijs2005/oskolki/internal/logging"
	"github.com/google/uuid"
)

type Collection string

const (
	Applications Collection = "applications"
	Holidays     Collection = "holidays"
	Chat         Collection = "chat"
	Vacancies    Collection = "vacancies"
)

// LocalCache is the subset of *cache.Cache the orchestrator uses.
type LocalCache interface {
	Load(ctx context.Context, key string, dst any) bool
	Save(ctx context.Context, key string, value any) bool
	SaveAll(ctx context.Context, values map[string]any) bool
	SeedVacancies(ctx context.Context, defaults []models.Vacancy) bool
}

// Gate is the subset of *session.Gate the orchestrator uses.
type Gate interface {
	IsPrivileged() bool
	OnChange(fn func(privileged bool))
}

// State is the application state. Values handed out by accessors are
// copies; callers may keep or modify them freely.
type State struct {
	Applications []models.Application `json:"applications"`
	Holidays     []models.Holiday     `json:"holidays"`
	Vacancies    []models.Vacancy     `json:"vacancies"`
	Chat         models.ChatLog       `json:"chat"`
}

func (s State) clone() State {
	return State{
		Applications: append([]models.Application{}, s.Applications...),
		Holidays:     append([]models.Holiday{}, s.Holidays...),
		Vacancies:    append([]models.Vacancy{}, s.Vacancies...),
		Chat:         s.Chat.Clone(),
	}
}

type Options struct {
	PollInterval time.Duration
	// WriteTimeout bounds each background remote write.
	WriteTimeout       time.Duration
	HolidayMerge       MergePolicy
	Detector           Detector
	SyncVacancies      bool
	UniqueHolidayDates bool

	Now   func() time.Time
	NewID func() string
}

const (
	DefaultPollInterval = 10 * time.Second
	DefaultWriteTimeout = 15 * time.Second
)

type Orchestrator struct {
	cache    LocalCache
	remote   remote.Client
	gate     Gate
	notifier Notifier
	log      logging.Logger
	opts     Options

	mu    sync.Mutex
	state State
	// seq is the last ticket issued per collection, applied the newest
	// ticket whose result reached memory.
	seq     map[Collection]uint64
	applied map[Collection]uint64

	online atomic.Bool

	outbox outbox

	wg         sync.WaitGroup
	base       context.Context
	cancelBase context.CancelFunc

	pollMu   sync.Mutex
	stopPoll func()
}

func New(c LocalCache, r remote.Client, g Gate, n Notifier, log logging.Logger, opts Options) *Orchestrator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.HolidayMerge == "" {
		opts.HolidayMerge = MergeRemote
	}
	if opts.Detector == nil {
		opts.Detector = LengthDetector{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	log = log.With("component", "orchestrator")
	if n == nil {
		n = LogNotifier{Log: log}
	}

	base, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cache:    c,
		remote:   r,
		gate:     g,
		notifier: n,
		log:      log,
		opts:     opts,
		state: State{
			Applications: []models.Application{},
			Holidays:     []models.Holiday{},
			Vacancies:    []models.Vacancy{},
			Chat:         models.ChatLog{},
		},
		seq:        make(map[Collection]uint64),
		applied:    make(map[Collection]uint64),
		base:       base,
		cancelBase: cancel,
	}
}

// Start loads every collection from the cache (seeding default vacancies
// on first run), wires polling to the session gate and launches the first
// full refresh in the background. It returns without waiting for the
// network.
func (o *Orchestrator) Start(ctx context.Context) {
	o.pollMu.Lock()
	o.cancelBase()
	o.base, o.cancelBase = context.WithCancel(ctx)
	base := o.base
	o.pollMu.Unlock()

	o.loadLocal(ctx)

	o.gate.OnChange(o.onSessionChange)
	if o.gate.IsPrivileged() {
		o.startPolling()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := o.Refresh(base); err != nil {
			o.log.Warn(base, "initial refresh incomplete, using cached data", "error", err)
		}
	}()
}

func (o *Orchestrator) loadLocal(ctx context.Context) {
	if o.cache.SeedVacancies(ctx, models.DefaultVacancies()) {
		o.log.Debug(ctx, "first run, default vacancies seeded")
	}

	var (
		apps      []models.Application
		holidays  []models.Holiday
		vacancies []models.Vacancy
		chat      models.ChatLog
	)
	o.cache.Load(ctx, common.KeyApplications, &apps)
	o.cache.Load(ctx, common.KeyHolidays, &holidays)
	o.cache.Load(ctx, common.KeyVacancies, &vacancies)
	o.cache.Load(ctx, common.KeyChat, &chat)

	o.mu.Lock()
	defer o.mu.Unlock()
	if apps != nil {
		o.state.Applications = apps
	}
	if holidays != nil {
		o.state.Holidays = holidays
	}
	if vacancies != nil {
		o.state.Vacancies = vacancies
	}
	if chat != nil {
		o.state.Chat = chat
	}
	o.log.Info(ctx, "local state loaded",
		"applications", len(o.state.Applications),
		"holidays", len(o.state.Holidays),
		"vacancies", len(o.state.Vacancies),
		"messages", o.state.Chat.Len())
}

// Wait blocks until the initial refresh and every queued remote write have
// finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close stops polling and waits for background work.
func (o *Orchestrator) Close() {
	o.stopPolling()
	o.pollMu.Lock()
	o.cancelBase()
	o.pollMu.Unlock()
	o.wg.Wait()
}

// Online reports whether the last remote read reached the endpoint.
func (o *Orchestrator) Online() bool {
	return o.online.Load()
}

// ticket issues the next sequence number for a remote read of c.
func (o *Orchestrator) ticket(c Collection) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq[c]++
	return o.seq[c]
}

// staleLocked reports whether a read issued with ticket was overtaken by a
// newer read or local mutation already applied to c.
func (o *Orchestrator) staleLocked(c Collection, ticket uint64) bool {
	return ticket <= o.applied[c]
}

// touchLocked records a local mutation of c, invalidating reads in flight.
func (o *Orchestrator) touchLocked(c Collection) {
	o.seq[c]++
	o.applied[c] = o.seq[c]
}

func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

func (o *Orchestrator) Applications() []models.Application {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.Application{}, o.state.Applications...)
}

func (o *Orchestrator) Application(id string) (models.Application, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	i := indexApplication(o.state.Applications, id)
	if i < 0 {
		return models.Application{}, false
	}
	return o.state.Applications[i], true
}

func (o *Orchestrator) Holidays() []models.Holiday {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.Holiday{}, o.state.Holidays...)
}

func (o *Orchestrator) Vacancies() []models.Vacancy {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.Vacancy{}, o.state.Vacancies...)
}

func (o *Orchestrator) Chat() models.ChatLog {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Chat.Clone()
}

// Thread is the conversation for one application, oldest first.
func (o *Orchestrator) Thread(appID string) []models.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.ChatMessage{}, o.state.Chat[appID]...)
}

// Banner computes the holiday banner for now.
func (o *Orchestrator) Banner(now time.Time) banner.Banner {
	return banner.Compute(o.Holidays(), now)
}

func indexApplication(apps []models.Application, id string) int {
	for i := range apps {
		if apps[i].ID == id {
			return i
		}
	}
	return -1
}
