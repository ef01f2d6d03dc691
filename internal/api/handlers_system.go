package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mytrader-platform/internal/auth"
	"mytrader-platform/internal/domain"
)

// ============================================================================
// ADMIN SYSTEM CONFIG HANDLERS
// ============================================================================

// loadSystemConfig fetches the singleton configuration. Writes the error
// response and returns nil when it is missing or unreadable.
func (s *Server) loadSystemConfig(c *gin.Context) *domain.SystemConfig {
	cfg, err := s.repo.GetSystemConfig(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load system config")
		return nil
	}
	if cfg == nil {
		errorResponse(c, http.StatusNotFound, "system config not initialized")
		return nil
	}
	return cfg
}

// handleGetSystemConfig returns the platform configuration
func (s *Server) handleGetSystemConfig(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, ok := s.getCachedSystemConfig(ctx); ok {
		successResponse(c, cached)
		return
	}

	cfg := s.loadSystemConfig(c)
	if cfg == nil {
		return
	}

	response := ToSystemConfigResponse(cfg)
	s.setCachedSystemConfig(ctx, response)

	successResponse(c, response)
}

// handleUpdateSystemFees replaces the platform default fee schedule. The
// change reaches every user, so all cached resolutions are dropped.
func (s *Server) handleUpdateSystemFees(c *gin.Context) {
	var req FeeRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	fees, err := req.ToTradingFees()
	if err != nil {
		writeDomainError(c, err)
		return
	}

	cfg := s.loadSystemConfig(c)
	if cfg == nil {
		return
	}

	if err := cfg.UpdateFees(fees, auth.GetUserID(c)); err != nil {
		writeDomainError(c, err)
		return
	}

	ctx := c.Request.Context()

	if err := s.repo.SaveSystemConfig(ctx, cfg); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to save system config")
		return
	}

	s.invalidateSystemConfig(ctx)
	s.invalidateAllEntitlements(ctx)

	successResponse(c, ToSystemConfigResponse(cfg))
}

// handleUpdateSystemLimits replaces the global platform limits
func (s *Server) handleUpdateSystemLimits(c *gin.Context) {
	var req UpdateSystemLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	cfg := s.loadSystemConfig(c)
	if cfg == nil {
		return
	}

	if err := cfg.UpdateLimits(req.MaxOpenStrategiesPerUser, req.MaxStrategiesInTemplate, auth.GetUserID(c)); err != nil {
		writeDomainError(c, err)
		return
	}

	ctx := c.Request.Context()

	if err := s.repo.SaveSystemConfig(ctx, cfg); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to save system config")
		return
	}

	s.invalidateSystemConfig(ctx)

	successResponse(c, ToSystemConfigResponse(cfg))
}
