// Package cache implements the read-through caches in front of the document
// store.
//
// Collection caches are partitioned by scope and tagged with a per-scope
// version counter held in the cache store. A write bumps the counters of
// every scope whose pages could change; pages cached under an older version
// are never addressed again and simply expire. Entity caches hold a single
// document and are deleted on write.
//
// Version counters are written without a TTL and must outlive every page
// cached under them. If a counter is lost it restarts at zero and pages
// cached under the low versions become addressable again until they expire.
// A Redis instance backing this cache therefore needs maxmemory-policy
// noeviction or one of the volatile-* policies, which only evict keys that
// carry a TTL (pages and entities, never counters).
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go-recruitment-platform/internal/domain"
)

type Family string

const (
	FamilyJobs             Family = "jobs"
	FamilyPendingCompanies Family = "pending_companies"
)

const (
	DefaultJobsTTL             = 5 * time.Minute
	DefaultPendingCompaniesTTL = 10 * time.Minute
	DefaultEntityTTL           = 10 * time.Minute
)

type Config struct {
	JobsTTL             time.Duration
	PendingCompaniesTTL time.Duration
	EntityTTL           time.Duration
}

type Manager struct {
	store     domain.CacheStore
	ttl       map[Family]time.Duration
	entityTTL time.Duration
	log       *slog.Logger
}

func NewManager(store domain.CacheStore, cfg Config, log *slog.Logger) *Manager {
	if cfg.JobsTTL <= 0 {
		cfg.JobsTTL = DefaultJobsTTL
	}
	if cfg.PendingCompaniesTTL <= 0 {
		cfg.PendingCompaniesTTL = DefaultPendingCompaniesTTL
	}
	if cfg.EntityTTL <= 0 {
		cfg.EntityTTL = DefaultEntityTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		store: store,
		ttl: map[Family]time.Duration{
			FamilyJobs:             cfg.JobsTTL,
			FamilyPendingCompanies: cfg.PendingCompaniesTTL,
		},
		entityTTL: cfg.EntityTTL,
		log:       log,
	}
}

// VersionKey names the counter of a scope. Single-partition families use
// "{family}_version". Counters never expire; see the package doc for the
// eviction policy this relies on.
func VersionKey(family Family, scope domain.Scope) string {
	if scope == domain.ScopeNone {
		return string(family) + "_version"
	}
	return fmt.Sprintf("%s:%s:version", family, scope)
}

func PageKey(family Family, scope domain.Scope, version int64, page, pageSize int) string {
	if scope == domain.ScopeNone {
		return fmt.Sprintf("%s:v%d:p%d:s%d", family, version, page, pageSize)
	}
	return fmt.Sprintf("%s:%s:v%d:p%d:s%d", family, scope, version, page, pageSize)
}

func CompanyKey(id string) string {
	return "company:" + id
}

func ProfileKey(userID string) string {
	return "user:" + userID + ":profile"
}

func (m *Manager) enabled() bool {
	return m != nil && m.store != nil
}

// Version returns the effective version of a scope. A recruiter page also
// lists every published job, so its version is the sum of its own counter
// and the public counter: both only grow, so the sum changes whenever
// either is bumped and an old key is never reused.
func (m *Manager) Version(ctx context.Context, family Family, scope domain.Scope) (int64, error) {
	v, err := m.store.IncrBy(ctx, VersionKey(family, scope), 0)
	if err != nil {
		return 0, err
	}
	if scope.IsRecruiter() {
		pub, err := m.store.IncrBy(ctx, VersionKey(family, domain.ScopePublic), 0)
		if err != nil {
			return 0, err
		}
		v += pub
	}
	return v, nil
}

// Invalidate bumps one scope.
func (m *Manager) Invalidate(ctx context.Context, family Family, scope domain.Scope) {
	m.InvalidateAll(ctx, family, scope)
}

// InvalidateAll bumps each distinct scope once. Failures are logged; the
// affected pages then live until their TTL.
func (m *Manager) InvalidateAll(ctx context.Context, family Family, scopes ...domain.Scope) {
	if !m.enabled() {
		return
	}
	seen := make(map[domain.Scope]bool, len(scopes))
	for _, scope := range scopes {
		if seen[scope] {
			continue
		}
		seen[scope] = true
		if _, err := m.store.IncrBy(ctx, VersionKey(family, scope), 1); err != nil {
			m.log.Warn("Cache version bump failed", "family", family, "scope", scope, "error", err)
		}
	}
}

// GetPage serves a page from the cache or loads and stores it. Any cache
// failure degrades to a direct load.
func GetPage[T any](
	ctx context.Context,
	m *Manager,
	family Family,
	scope domain.Scope,
	page, pageSize int,
	load func(ctx context.Context) (*domain.PaginatedResult[T], error),
) (*domain.PaginatedResult[T], error) {
	if !m.enabled() {
		return load(ctx)
	}

	version, err := m.Version(ctx, family, scope)
	if err != nil {
		m.log.Warn("Cache version read failed, bypassing cache", "family", family, "scope", scope, "error", err)
		return load(ctx)
	}
	key := PageKey(family, scope, version, page, pageSize)

	if raw, found, err := m.store.Get(ctx, key); err != nil {
		m.log.Warn("Cache read failed", "key", key, "error", err)
	} else if found {
		var cached domain.PaginatedResult[T]
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		m.log.Warn("Discarding undecodable cache entry", "key", key)
	}

	result, err := load(ctx)
	if err != nil {
		return nil, err
	}
	m.put(ctx, key, result, m.ttl[family])
	return result, nil
}

// GetEntity serves a single cached document or loads and stores it.
func GetEntity[T any](ctx context.Context, m *Manager, key string, load func(ctx context.Context) (*T, error)) (*T, error) {
	if !m.enabled() {
		return load(ctx)
	}

	if raw, found, err := m.store.Get(ctx, key); err != nil {
		m.log.Warn("Cache read failed", "key", key, "error", err)
	} else if found {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	entity, err := load(ctx)
	if err != nil {
		return nil, err
	}
	m.put(ctx, key, entity, m.entityTTL)
	return entity, nil
}

// Forget deletes entity entries.
func (m *Manager) Forget(ctx context.Context, keys ...string) {
	if !m.enabled() || len(keys) == 0 {
		return
	}
	if err := m.store.Delete(ctx, keys...); err != nil {
		m.log.Warn("Cache delete failed", "keys", keys, "error", err)
	}
}

func (m *Manager) put(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		m.log.Warn("Cache encode failed", "key", key, "error", err)
		return
	}
	if err := m.store.Set(ctx, key, raw, ttl); err != nil {
		m.log.Warn("Cache write failed", "key", key, "error", err)
	}
}
