package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/oskolki/internal/client/models"
	"github.com/dmitrijs2005/oskolki/internal/common"
	"github.com/dmitrijs2005/oskolki/internal/logging"
)

// Cache stores JSON-encoded values in a Store. Failures never reach the
// caller as errors: they are logged as warnings and reported through the
// boolean results.
type Cache struct {
	store Store
	log   logging.Logger
}

func New(store Store, log logging.Logger) *Cache {
	return &Cache{store: store, log: log.With("component", "cache")}
}

// Load decodes the value under key into dst. It returns false when the key
// is absent, unreadable or undecodable; dst is left untouched then.
func (c *Cache) Load(ctx context.Context, key string, dst any) bool {
	b, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn(ctx, "cache read failed", "key", key, "error", err)
		return false
	}
	if b == nil {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		c.log.Warn(ctx, "cache value undecodable", "key", key, "error", err)
		return false
	}
	return true
}

// Has reports whether key holds a value.
func (c *Cache) Has(ctx context.Context, key string) bool {
	b, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn(ctx, "cache read failed", "key", key, "error", err)
		return false
	}
	return b != nil
}

func (c *Cache) Save(ctx context.Context, key string, value any) bool {
	b, err := json.Marshal(value)
	if err != nil {
		c.log.Warn(ctx, "cache write skipped", "key", key, "error", fmt.Errorf("%w: encode: %v", common.ErrStorage, err))
		return false
	}
	if err := c.store.Set(ctx, key, b); err != nil {
		c.log.Warn(ctx, "cache write failed", "key", key, "error", err)
		return false
	}
	return true
}

// SaveAll writes every entry or none.
func (c *Cache) SaveAll(ctx context.Context, values map[string]any) bool {
	encoded := make(map[string][]byte, len(values))
	for k, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			c.log.Warn(ctx, "cache write skipped", "key", k, "error", fmt.Errorf("%w: encode: %v", common.ErrStorage, err))
			return false
		}
		encoded[k] = b
	}
	if err := c.store.SetMulti(ctx, encoded); err != nil {
		c.log.Warn(ctx, "cache write failed", "keys", len(values), "error", err)
		return false
	}
	return true
}

func (c *Cache) Remove(ctx context.Context, keys ...string) bool {
	if err := c.store.DeleteMulti(ctx, keys...); err != nil {
		c.log.Warn(ctx, "cache delete failed", "keys", keys, "error", err)
		return false
	}
	return true
}

// SeedVacancies stores defaults only when no vacancies were ever saved.
// It reports whether seeding happened; repeated calls are no-ops.
func (c *Cache) SeedVacancies(ctx context.Context, defaults []models.Vacancy) bool {
	b, err := c.store.Get(ctx, common.KeyVacancies)
	if err != nil {
		c.log.Warn(ctx, "vacancy seed check failed", "error", err)
		return false
	}
	if b != nil {
		return false
	}
	if defaults == nil {
		defaults = []models.Vacancy{}
	}
	ok := c.SaveAll(ctx, map[string]any{
		common.KeyVacancies:       defaults,
		common.KeyVacanciesSeeded: defaults,
	})
	if ok {
		c.log.Info(ctx, "seeded default vacancies", "count", len(defaults))
	}
	return ok
}

func (c *Cache) Close() error {
	return c.store.Close()
}
