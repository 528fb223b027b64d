// Package service fetches upstream payloads through the gateway and
// transforms them into the clean domain values the API serves.
package service

import (
	"time"

	"github.com/Zillorz/svue-api/src/repository"
	"github.com/Zillorz/svue-api/src/upstream"
)

type Service struct {
	Upstream *upstream.Client

	// Cache is nil unless response caching is enabled in config.
	Cache    *repository.CacheRepository
	CacheTTL time.Duration
}

// NewService creates a new instance of Service.
func NewService(up *upstream.Client, cache *repository.CacheRepository, cacheTTL time.Duration) *Service {
	return &Service{
		Upstream: up,
		Cache:    cache,
		CacheTTL: cacheTTL,
	}
}
