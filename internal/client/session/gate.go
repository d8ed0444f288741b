// Package session holds the two-state admin gate (Guest / Privileged) and
// the secret tap gesture that reveals the credential prompt.
//
// The credential check compares against one fixed pair. It is a stand-in
// for access control and is insecure by construction.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/common"
	"github.com/dmitrijs2005/oskolki/internal/cryptox"
	"github.com/dmitrijs2005/oskolki/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

type State int

const (
	Guest State = iota
	Privileged
)

func (s State) String() string {
	if s == Privileged {
		return "privileged"
	}
	return "guest"
}

// legacyFlag is how older clients stored the session: the literal "true"
// plus an optional expiry in unix milliseconds.
const legacyFlag = "true"

// DefaultTTL keeps a granted session for ten years.
const DefaultTTL = 10 * 365 * 24 * time.Hour

// FlagStore is the slice of the local cache the gate needs.
type FlagStore interface {
	Load(ctx context.Context, key string, dst any) bool
	SaveAll(ctx context.Context, values map[string]any) bool
	Remove(ctx context.Context, keys ...string) bool
}

type Options struct {
	// Secret signs the cached flag. Empty means a random key generated on
	// first use and kept in the cache next to the flag.
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

type Gate struct {
	store  FlagStore
	log    logging.Logger
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	salt     []byte
	verifier []byte

	keyMu sync.Mutex

	mu        sync.Mutex
	state     State
	listeners []func(privileged bool)
}

func NewGate(store FlagStore, log logging.Logger, opts Options) *Gate {
	g := &Gate{
		store:  store,
		log:    log.With("component", "session"),
		secret: opts.Secret,
		ttl:    opts.TTL,
		now:    opts.Now,
		salt:   cryptox.RandomBytes(16),
	}
	if g.ttl <= 0 {
		g.ttl = DefaultTTL
	}
	if g.now == nil {
		g.now = time.Now
	}
	g.verifier = cryptox.MakeVerifier(g.derive(common.AdminEmail, common.AdminPassword))
	return g
}

// signingKey returns the configured secret or the one cached under
// common.KeySessionKey, creating and caching it when absent.
func (g *Gate) signingKey(ctx context.Context) []byte {
	g.keyMu.Lock()
	defer g.keyMu.Unlock()

	if len(g.secret) > 0 {
		return g.secret
	}

	var key []byte
	if g.store.Load(ctx, common.KeySessionKey, &key) && len(key) > 0 {
		g.secret = key
		return key
	}

	key = cryptox.RandomBytes(32)
	if !g.store.SaveAll(ctx, map[string]any{common.KeySessionKey: key}) {
		g.log.Warn(ctx, "session key not cached; flag will not survive restart")
	}
	g.secret = key
	return key
}

func (g *Gate) derive(email, password string) []byte {
	secret := []byte(email + "\x00" + password)
	defer cryptox.Wipe(secret)
	return cryptox.DeriveKey(secret, g.salt)
}

// OnChange registers fn to be called after every state transition.
// Listeners run synchronously on the goroutine that caused the change.
func (g *Gate) OnChange(fn func(privileged bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) IsPrivileged() bool {
	return g.State() == Privileged
}

func (g *Gate) transition(to State) {
	g.mu.Lock()
	changed := g.state != to
	g.state = to
	listeners := append([]func(bool){}, g.listeners...)
	g.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(to == Privileged)
	}
}

// Restore reads the cached flag and enters Privileged when it is present
// and unexpired. An expired flag is cleared. A flag that fails the
// signature check is left in place and the gate stays Guest.
func (g *Gate) Restore(ctx context.Context) State {
	var token string
	if !g.store.Load(ctx, common.KeySession, &token) || token == "" {
		return g.State()
	}

	if token == legacyFlag {
		var expiry int64
		if g.store.Load(ctx, common.KeySessionExpiry, &expiry) && g.now().UnixMilli() > expiry {
			g.log.Info(ctx, "cached session expired")
			g.clear(ctx)
			return g.State()
		}
		g.transition(Privileged)
		return Privileged
	}

	if _, err := parseToken(token, g.signingKey(ctx), g.now); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			g.log.Info(ctx, "cached session expired")
			g.clear(ctx)
		} else {
			g.log.Warn(ctx, "cached session rejected", "error", err)
		}
		return g.State()
	}

	g.transition(Privileged)
	return Privileged
}

// Login enters Privileged when email and password match the admin pair.
// On mismatch it returns common.ErrAuth and leaves the state alone.
func (g *Gate) Login(ctx context.Context, email, password string) error {
	if !cryptox.VerifierMatches(g.derive(email, password), g.verifier) {
		return fmt.Errorf("%w: login %q", common.ErrAuth, email)
	}

	token, expires, err := issueToken(email, g.signingKey(ctx), g.now(), g.ttl)
	if err != nil {
		// the gate still opens; only persistence is lost
		g.log.Warn(ctx, "session token not issued", "error", err)
	} else {
		g.store.SaveAll(ctx, map[string]any{
			common.KeySession:       token,
			common.KeySessionExpiry: expires.UnixMilli(),
		})
	}

	g.log.Info(ctx, "admin session started")
	g.transition(Privileged)
	return nil
}

// Logout returns to Guest and removes the cached flag.
func (g *Gate) Logout(ctx context.Context) {
	g.clear(ctx)
	g.log.Info(ctx, "admin session ended")
	g.transition(Guest)
}

func (g *Gate) clear(ctx context.Context) {
	g.store.Remove(ctx, common.KeySession, common.KeySessionExpiry)
}
