package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/services/comparison"
	"github.com/EnmanuelReynoso23/el-pensum/utils/cache"
	"go.uber.org/zap"
)

const catalogVersionKey = "catalog:version"

// LookupCache is the subset of the Redis cache used for name lookups
type LookupCache interface {
	Get(ctx context.Context, key string) (string, error)
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Increment(ctx context.Context, key string) (int64, error)
}

// CachedCatalog caches university and program lookups in Redis.
// Keys embed a version number; Invalidate bumps it so stale entries are
// never read again and simply expire. Cache failures fall through to the store.
type CachedCatalog struct {
	store  comparison.Catalog
	cache  LookupCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCatalog wraps store with a lookup cache
func NewCachedCatalog(store comparison.Catalog, c LookupCache, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCatalog{store: store, cache: c, ttl: ttl, logger: logger}
}

func (c *CachedCatalog) version(ctx context.Context) (string, error) {
	v, err := c.cache.Get(ctx, catalogVersionKey)
	if errors.Is(err, cache.ErrNotFound) {
		return "0", nil
	}
	return v, err
}

func (c *CachedCatalog) key(ctx context.Context, kind, lookup string) (string, bool) {
	v, err := c.version(ctx)
	if err != nil {
		c.logger.Debug("catalog cache unavailable", zap.Error(err))
		return "", false
	}
	return fmt.Sprintf("catalog:v%s:%s:%s", v, kind, strings.ToLower(strings.TrimSpace(lookup))), true
}

func cachedLookup[T any](ctx context.Context, c *CachedCatalog, kind, lookup string, load func() ([]T, error)) ([]T, error) {
	key, ok := c.key(ctx, kind, lookup)
	if ok {
		var hit []T
		err := c.cache.GetJSON(ctx, key, &hit)
		if err == nil {
			return hit, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			c.logger.Debug("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	rows, err := load()
	if err != nil {
		return nil, err
	}

	if ok {
		if rows == nil {
			rows = []T{}
		}
		if err := c.cache.SetJSON(ctx, key, rows, c.ttl); err != nil {
			c.logger.Debug("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return rows, nil
}

func (c *CachedCatalog) FindUniversitiesByName(ctx context.Context, name string) ([]model.University, error) {
	return cachedLookup(ctx, c, "university:name", name, func() ([]model.University, error) {
		return c.store.FindUniversitiesByName(ctx, name)
	})
}

func (c *CachedCatalog) FindUniversitiesBySlug(ctx context.Context, slug string) ([]model.University, error) {
	return cachedLookup(ctx, c, "university:slug", slug, func() ([]model.University, error) {
		return c.store.FindUniversitiesBySlug(ctx, slug)
	})
}

func (c *CachedCatalog) FindProgramsByName(ctx context.Context, name string) ([]model.Program, error) {
	return cachedLookup(ctx, c, "program:name", name, func() ([]model.Program, error) {
		return c.store.FindProgramsByName(ctx, name)
	})
}

func (c *CachedCatalog) FindProgramsBySlug(ctx context.Context, slug string) ([]model.Program, error) {
	return cachedLookup(ctx, c, "program:slug", slug, func() ([]model.Program, error) {
		return c.store.FindProgramsBySlug(ctx, slug)
	})
}

// FindOffering is never cached
func (c *CachedCatalog) FindOffering(ctx context.Context, universityID, programID uint) (*model.Offering, error) {
	return c.store.FindOffering(ctx, universityID, programID)
}

// Invalidate bumps the catalog version
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	v, err := c.cache.Increment(ctx, catalogVersionKey)
	if err != nil {
		return fmt.Errorf("bump catalog version: %w", err)
	}
	c.logger.Debug("catalog cache invalidated", zap.String("version", strconv.FormatInt(v, 10)))
	return nil
}
