package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/client/backup"
	"github.com/dmitrijs2005/oskolki/internal/client/banner"
	"github.com/dmitrijs2005/oskolki/internal/client/cache"
	"github.com/dmitrijs2005/oskolki/internal/client/config"
	"github.com/dmitrijs2005/oskolki/internal/client/models"
	"github.com/dmitrijs2005/oskolki/internal/client/orchestrator"
	"github.com/dmitrijs2005/oskolki/internal/client/remote"
	"github.com/dmitrijs2005/oskolki/internal/client/session"
	"github.com/dmitrijs2005/oskolki/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Service is the orchestrator surface the REPL drives.
type Service interface {
	Start(ctx context.Context)
	Close()
	Refresh(ctx context.Context) error
	Online() bool
	Snapshot() orchestrator.State

	Applications() []models.Application
	Holidays() []models.Holiday
	Vacancies() []models.Vacancy
	Chat() models.ChatLog
	Thread(appID string) []models.ChatMessage
	Banner(now time.Time) banner.Banner

	SubmitApplication(ctx context.Context, form models.ApplicationForm) (models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) (models.Application, error)
	UpdateNotes(ctx context.Context, id, notes string) (models.Application, error)
	SetRating(ctx context.Context, id string, stars int) (models.Application, error)
	AddHoliday(ctx context.Context, name, date string) (models.Holiday, error)
	DeleteHoliday(ctx context.Context, id string) error
	AddVacancy(ctx context.Context, v models.Vacancy) (models.Vacancy, error)
	DeleteVacancy(ctx context.Context, id string) error
	SendMessage(ctx context.Context, appID string, from models.Sender, text string) (models.ChatMessage, error)
	MarkChatRead(ctx context.Context, appID string, reader models.Sender) (int, error)
}

type Session interface {
	IsPrivileged() bool
	Restore(ctx context.Context) session.State
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context)
}

type Archiver interface {
	Enabled() bool
	Upload(ctx context.Context, snapshot any) (string, error)
}

type Tapper interface {
	Tap() bool
}

// Loader reads applicant-side keys from the local cache.
type Loader interface {
	Load(ctx context.Context, key string, dst any) bool
}

type App struct {
	config   *config.Config
	service  Service
	session  Session
	archiver Archiver
	gesture  Tapper
	local    Loader
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time
	closers  []func()

	modeMu sync.Mutex
	Mode   Mode
}

// NewApp opens the configured cache backend and wires every client
// component together.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	var (
		store cache.Store
		err   error
	)
	switch c.CacheBackend {
	case config.BackendRedis:
		store, err = cache.OpenRedis(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB, c.RedisPrefix)
	default:
		store, err = cache.OpenSQLite(ctx, c.CacheDSN)
	}
	if err != nil {
		log.Printf("error opening %s cache: %s", c.CacheBackend, err.Error())
		return nil, err
	}
	local := cache.New(store, logger)

	merge, err := orchestrator.ParseMergePolicy(c.HolidayMerge)
	if err != nil {
		return nil, err
	}
	detector, err := orchestrator.ParseDetector(c.ChangeDetection)
	if err != nil {
		return nil, err
	}

	gate := session.NewGate(local, logger, session.Options{Secret: []byte(c.SessionSecret), TTL: c.SessionTTL})
	gesture := session.NewGesture(session.DefaultGestureTaps, session.DefaultGestureWindow)
	rc := remote.NewHTTPClient(c.Endpoint, c.RequestTimeout, nil)

	svc := orchestrator.New(local, rc, gate, NewTerminalNotifier(os.Stdout), logger, orchestrator.Options{
		PollInterval:       c.PollInterval,
		WriteTimeout:       c.WriteTimeout,
		HolidayMerge:       merge,
		Detector:           detector,
		SyncVacancies:      c.SyncVacancies,
		UniqueHolidayDates: c.UniqueHolidayDates,
	})

	archiver := backup.NewArchiver(backup.Options{
		Bucket:    c.S3Bucket,
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Prefix:    c.S3Prefix,
	}, nil, logger)

	return &App{
		config:   c,
		service:  svc,
		session:  gate,
		archiver: archiver,
		gesture:  gesture,
		local:    local,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		now:      time.Now,
		closers:  []func(){gesture.Stop, func() { _ = local.Close() }},
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.Mode
}

func (a *App) isPrivileged() bool {
	return a.session.IsPrivileged()
}

func (a *App) status() string {
	role := "guest"
	if a.isPrivileged() {
		role = "admin"
	}
	if m := a.mode(); m != "" {
		return fmt.Sprintf("(%s %s)", role, m)
	}
	return fmt.Sprintf("(%s)", role)
}

// StartOnlineStatusWatcher mirrors the orchestrator's reachability flag
// into Mode until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if a.service.Online() {
				a.setMode(ModeOnline)
			} else {
				a.setMode(ModeOffline)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Run restores the session, starts the orchestrator and blocks in the REPL
// until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		a.service.Close()
		for _, c := range a.closers {
			c()
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.session.Restore(ctx)
	a.service.Start(ctx)

	go a.StartOnlineStatusWatcher(ctx, time.Second)

	log.Println("Welcome to Oskolki (type 'help' for commands)")
	_ = a.Banner(ctx, nil)

	runREPL(ctx, a, a.status, a.reader)
}
