package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mytrader-platform/internal/auth"
	"mytrader-platform/internal/domain"
)

// ============================================================================
// ADMIN USER MANAGEMENT HANDLERS
// ============================================================================

// loadUserByParam fetches the user addressed by the :id route parameter.
// Writes the error response and returns nil on failure.
func (s *Server) loadUserByParam(c *gin.Context) *domain.User {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid user ID")
		return nil
	}

	user, err := s.repo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load user")
		return nil
	}
	if user == nil {
		errorResponse(c, http.StatusNotFound, "user not found")
		return nil
	}
	return user
}

// saveAndRespond persists a mutated user, invalidates its cached
// entitlements and writes the full user view.
func (s *Server) saveAndRespond(c *gin.Context, user *domain.User) {
	if err := s.repo.UpdateUser(c.Request.Context(), user); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to save user")
		return
	}

	s.entitlements.Invalidate(c.Request.Context(), user.ID())

	successResponse(c, ToUserDetailResponse(user))
}

// handleListUsers lists users, optionally filtered by status or plan
func (s *Server) handleListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	var users []*domain.User
	var err error

	if planParam := c.Query("plan"); planParam != "" {
		planID, parseErr := strconv.Atoi(planParam)
		if parseErr != nil || planID <= 0 {
			errorResponse(c, http.StatusBadRequest, "invalid plan ID")
			return
		}
		users, err = s.repo.ListUsersByPlan(ctx, planID)
	} else if statusParam := c.Query("status"); statusParam != "" {
		status, parseErr := domain.ParseStatus(statusParam)
		if parseErr != nil {
			writeDomainError(c, parseErr)
			return
		}
		users, err = s.repo.ListUsersByStatus(ctx, status)
	} else {
		users, err = s.repo.ListUsersByStatus(ctx, domain.StatusActive)
	}
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list users")
		return
	}

	responses := make([]UserDetailResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, ToUserDetailResponse(user))
	}
	successResponse(c, responses)
}

// handleGetUser returns a single user by ID
func (s *Server) handleGetUser(c *gin.Context) {
	user := s.loadUserByParam(c)
	if user == nil {
		return
	}
	successResponse(c, ToUserDetailResponse(user))
}

// handleSuspendUser suspends an active user
func (s *Server) handleSuspendUser(c *gin.Context) {
	user := s.loadUserByParam(c)
	if user == nil {
		return
	}

	if err := user.Suspend(); err != nil {
		writeDomainError(c, err)
		return
	}

	s.saveAndRespond(c, user)
}

// handleReactivateUser reactivates a suspended user
func (s *Server) handleReactivateUser(c *gin.Context) {
	user := s.loadUserByParam(c)
	if user == nil {
		return
	}

	if err := user.Reactivate(); err != nil {
		writeDomainError(c, err)
		return
	}

	s.saveAndRespond(c, user)
}

// handleDeleteUser soft-deletes a user. Deletion is terminal.
func (s *Server) handleDeleteUser(c *gin.Context) {
	user := s.loadUserByParam(c)
	if user == nil {
		return
	}

	if err := user.Delete(); err != nil {
		writeDomainError(c, err)
		return
	}

	s.saveAndRespond(c, user)
}

// ============================================================================
// ADMIN OVERRIDE AND FEE HANDLERS
// ============================================================================

// handleGrantOverride grants a plan override to a trader. A new grant
// replaces any existing override wholesale.
func (s *Server) handleGrantOverride(c *gin.Context) {
	var req GrantOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	grantedBy := auth.GetUserID(c)

	var override *domain.PlanOverride
	var err error
	switch req.Kind {
	case "vip":
		override, err = domain.NewVIPOverride(grantedBy, req.Reason)
	case "trial":
		override, err = domain.NewTrialOverride(grantedBy, req.TrialDays)
	case "beta":
		override, err = domain.NewBetaTesterOverride(grantedBy)
	case "custom":
		override, err = domain.NewPlanOverride(grantedBy, req.Reason, req.StrategyLimit, req.Features, req.ExpiresAt)
	default:
		errorResponse(c, http.StatusBadRequest, "kind must be one of vip, trial, beta, custom")
		return
	}
	if err != nil {
		writeDomainError(c, err)
		return
	}

	user := s.loadUserByParam(c)
	if user == nil {
		return
	}

	if err := user.GrantPlanOverride(override); err != nil {
		writeDomainError(c, err)
		return
	}

	s.saveAndRespond(c, user)
}

// handleRevokeOverride removes a user's plan override
func (s *Server) handleRevokeOverride(c *gin.Context) {
	user := s.loadUserByParam(c)
	if user == nil {
		return
	}

	if err := user.RevokePlanOverride(); err != nil {
		writeDomainError(c, err)
		return
	}

	s.saveAndRespond(c, user)
}

// handleSetCustomFees sets a negotiated fee schedule for a user. Absent
// rates fall back to the platform defaults at resolution time.
func (s *Server) handleSetCustomFees(c *gin.Context) {
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

	user := s.loadUserByParam(c)
	if user == nil {
		return
	}

	user.SetCustomFees(&fees)

	s.saveAndRespond(c, user)
}

// handleClearCustomFees removes a user's negotiated fee schedule
func (s *Server) handleClearCustomFees(c *gin.Context) {
	user := s.loadUserByParam(c)
	if user == nil {
		return
	}

	user.SetCustomFees(nil)

	s.saveAndRespond(c, user)
}

// handleGetUserEntitlements resolves any user's entitlements (admin view)
func (s *Server) handleGetUserEntitlements(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid user ID")
		return
	}

	resolution, err := s.entitlements.Resolve(c.Request.Context(), userID)
	if err != nil {
		writeEntitlementError(c, err)
		return
	}

	successResponse(c, resolution)
}

// handleGetCacheStats returns Redis circuit breaker statistics
func (s *Server) handleGetCacheStats(c *gin.Context) {
	if s.cacheService == nil {
		errorResponse(c, http.StatusNotFound, "cache is disabled")
		return
	}
	successResponse(c, s.cacheService.GetStats())
}
