package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go-recruitment-platform/config"
	"go-recruitment-platform/internal/cache"
	"go-recruitment-platform/internal/domain"
	mongorepo "go-recruitment-platform/internal/repository/mongo"
	"go-recruitment-platform/internal/repository/postgres"
	"go-recruitment-platform/pkg/database"
	"go-recruitment-platform/pkg/redis"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
)

type CLI struct {
	Verbose bool `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `name:"version" help:"Print version."`

	Migrate MigrateCmd `cmd:"" help:"Create document store tables or indexes."`
	Cache   CacheCmd   `cmd:"" help:"Inspect and invalidate listing caches."`
}

type Context struct {
	Out    io.Writer
	Config *config.Config
	Logger zerolog.Logger
	// OpenCache connects the shared cache store.
	OpenCache func(ctx context.Context) (domain.CacheStore, error)
}

func redisCache(cfg *config.Config) func(ctx context.Context) (domain.CacheStore, error) {
	return func(ctx context.Context) (domain.CacheStore, error) {
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is not set")
		}
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			return nil, err
		}
		return redis.NewStore(redis.Client(), cfg.CacheInstanceName), nil
	}
}

type MigrateCmd struct {
	Timeout time.Duration `help:"Give up after this long." default:"30s"`
}

func (m *MigrateCmd) Run(rc *Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.Timeout)
	defer cancel()

	switch rc.Config.DocumentStore {
	case config.StoreMongo:
		client, db, err := database.NewMongoConnection(ctx, rc.Config.MongoURI, rc.Config.MongoDatabase)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		if err := mongorepo.NewDocumentStore(db).EnsureIndexes(ctx); err != nil {
			return err
		}
	case config.StorePostgres:
		pool, err := database.NewPostgresConnection(ctx, rc.Config.DBUrl)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.NewDocumentStore(pool).Migrate(ctx, domain.CollectionJobs, domain.CollectionUsers); err != nil {
			return err
		}
	default:
		return fmt.Errorf("document store %q has no schema", rc.Config.DocumentStore)
	}

	rc.Logger.Info().Str("store", rc.Config.DocumentStore).Msg("migration complete")
	return nil
}

type CacheCmd struct {
	Version CacheVersionCmd `cmd:"" help:"Print the current version of listing scopes."`
	Bump    CacheBumpCmd    `cmd:"" help:"Invalidate listing scopes by bumping their version."`
	Forget  CacheForgetCmd  `cmd:"" help:"Drop cached company or profile entries."`
}

type ScopeArgs struct {
	Family string   `help:"Key family." enum:"jobs,pending_companies" default:"jobs"`
	Scopes []string `arg:"" optional:"" help:"Scopes such as public, admin or recruiter:<id>. Defaults to public and admin."`
}

func (a ScopeArgs) resolve() (cache.Family, []domain.Scope) {
	family := cache.Family(a.Family)
	if family == cache.FamilyPendingCompanies {
		return family, []domain.Scope{domain.ScopeNone}
	}
	if len(a.Scopes) == 0 {
		return family, []domain.Scope{domain.ScopePublic, domain.ScopeAdmin}
	}
	scopes := make([]domain.Scope, len(a.Scopes))
	for i, s := range a.Scopes {
		scopes[i] = domain.Scope(s)
	}
	return family, scopes
}

type CacheVersionCmd struct {
	ScopeArgs
}

func (c *CacheVersionCmd) Run(rc *Context) error {
	ctx := context.Background()
	m, err := openManager(ctx, rc)
	if err != nil {
		return err
	}

	family, scopes := c.resolve()
	for _, scope := range scopes {
		v, err := m.Version(ctx, family, scope)
		if err != nil {
			return fmt.Errorf("read version of %s: %w", cache.VersionKey(family, scope), err)
		}
		fmt.Fprintf(rc.Out, "%s\t%d\n", cache.VersionKey(family, scope), v)
	}
	return nil
}

type CacheBumpCmd struct {
	ScopeArgs
}

func (c *CacheBumpCmd) Run(rc *Context) error {
	ctx := context.Background()
	m, err := openManager(ctx, rc)
	if err != nil {
		return err
	}

	family, scopes := c.resolve()
	m.InvalidateAll(ctx, family, scopes...)
	for _, scope := range scopes {
		rc.Logger.Info().Str("key", cache.VersionKey(family, scope)).Msg("scope invalidated")
	}
	return nil
}

type CacheForgetCmd struct {
	Company []string `help:"Company ids."`
	Profile []string `help:"User ids whose profile should be dropped."`
}

func (c *CacheForgetCmd) Run(rc *Context) error {
	var keys []string
	for _, id := range c.Company {
		keys = append(keys, cache.CompanyKey(id))
	}
	for _, id := range c.Profile {
		keys = append(keys, cache.ProfileKey(id))
	}
	if len(keys) == 0 {
		return errors.New("nothing to forget: pass --company or --profile")
	}

	ctx := context.Background()
	m, err := openManager(ctx, rc)
	if err != nil {
		return err
	}
	m.Forget(ctx, keys...)
	rc.Logger.Info().Strs("keys", keys).Msg("entries dropped")
	return nil
}

func openManager(ctx context.Context, rc *Context) (*cache.Manager, error) {
	store, err := rc.OpenCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cache.NewManager(store, cache.Config{}, nil), nil
}
