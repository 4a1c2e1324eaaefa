package usecase

import (
	"context"
	"time"

	"go-recruitment-platform/internal/domain"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type healthUsecase struct {
	store pinger
	cache pinger
}

// NewHealthUsecase reports on the document store and the cache store. A nil
// cache is reported as disabled.
func NewHealthUsecase(store domain.DocumentStore, cache domain.CacheStore) domain.HealthUsecase {
	h := &healthUsecase{store: store}
	if cache != nil {
		h.cache = cache
	}
	return h
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := map[string]string{
		"status":   "ok",
		"database": "up",
		"cache":    "disabled",
	}
	if u.store == nil || u.store.Ping(ctx) != nil {
		result["database"] = "down"
		result["status"] = "degraded"
	}
	if u.cache != nil {
		if err := u.cache.Ping(ctx); err != nil {
			// cache failures degrade performance only
			result["cache"] = "down"
		} else {
			result["cache"] = "up"
		}
	}
	return result
}
