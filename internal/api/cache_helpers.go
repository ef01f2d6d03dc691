package api

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"mytrader-platform/internal/cache"
)

// Cache helpers for read-heavy endpoints. All of them tolerate a nil or
// degraded cache service: reads fall through to the database and writes
// are dropped with a warning.

func (s *Server) getCachedPlanCatalog(ctx context.Context) ([]PlanResponse, bool) {
	if s.cacheService == nil {
		return nil, false
	}

	var catalog []PlanResponse
	if err := s.cacheService.GetJSON(ctx, cache.PlanCatalogKey(), &catalog); err != nil {
		return nil, false
	}
	return catalog, true
}

func (s *Server) setCachedPlanCatalog(ctx context.Context, catalog []PlanResponse) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.SetJSON(ctx, cache.PlanCatalogKey(), catalog, cache.DefaultPlanCatalogTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to cache plan catalog")
	}
}

func (s *Server) invalidatePlanCatalog(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, cache.PlanCatalogKey()); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate plan catalog cache")
	}
}

func (s *Server) getCachedSystemConfig(ctx context.Context) (SystemConfigResponse, bool) {
	if s.cacheService == nil {
		return SystemConfigResponse{}, false
	}

	var cfg SystemConfigResponse
	if err := s.cacheService.GetJSON(ctx, cache.SystemConfigKey(), &cfg); err != nil {
		return SystemConfigResponse{}, false
	}
	return cfg, true
}

func (s *Server) setCachedSystemConfig(ctx context.Context, cfg SystemConfigResponse) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.SetJSON(ctx, cache.SystemConfigKey(), cfg, cache.DefaultSystemConfigTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to cache system config")
	}
}

func (s *Server) invalidateSystemConfig(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, cache.SystemConfigKey()); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate system config cache")
	}
}

// invalidateAllEntitlements drops every user's cached resolution. Used
// when a plan or the platform fee schedule changes.
func (s *Server) invalidateAllEntitlements(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	pattern := fmt.Sprintf(cache.PrefixEntitlement, "*")
	if err := s.cacheService.DeletePattern(ctx, pattern); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate entitlement caches")
	}
}
