package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mytrader-platform/internal/auth"
	"mytrader-platform/internal/domain"
	"mytrader-platform/internal/entitlement"
)

// ============================================================================
// CURRENT USER HANDLERS
// ============================================================================

// loadCurrentUser fetches the authenticated user's aggregate. Writes the
// error response and returns nil when the user cannot be loaded.
func (s *Server) loadCurrentUser(c *gin.Context) *domain.User {
	userID := auth.GetUserID(c)
	if userID == uuid.Nil {
		errorResponse(c, http.StatusUnauthorized, "authentication required")
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

// handleGetMe returns the authenticated user's full profile
func (s *Server) handleGetMe(c *gin.Context) {
	user := s.loadCurrentUser(c)
	if user == nil {
		return
	}
	successResponse(c, ToUserDetailResponse(user))
}

// handleUpdateProfile updates display name and/or risk profile
func (s *Server) handleUpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := s.loadCurrentUser(c)
	if user == nil {
		return
	}

	var riskProfile *domain.RiskProfile
	if req.RiskProfile != nil {
		parsed, err := domain.ParseRiskProfile(*req.RiskProfile)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		riskProfile = &parsed
	}

	if err := user.UpdateProfile(req.DisplayName, riskProfile); err != nil {
		writeDomainError(c, err)
		return
	}

	if err := s.repo.UpdateUser(c.Request.Context(), user); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	successResponse(c, ToUserDetailResponse(user))
}

// handleSetPhone sets or replaces the user's phone number. A replaced
// number starts unverified again.
func (s *Server) handleSetPhone(c *gin.Context) {
	var req SetPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var phone domain.PhoneNumber
	var err error
	if req.CountryCode == "" {
		phone, err = domain.NewBrazilianPhone(req.Number)
	} else {
		phone, err = domain.NewPhoneNumber(req.CountryCode, req.Number)
	}
	if err != nil {
		writeDomainError(c, err)
		return
	}

	user := s.loadCurrentUser(c)
	if user == nil {
		return
	}

	user.SetPhone(phone)

	if err := s.repo.UpdateUser(c.Request.Context(), user); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to save phone")
		return
	}

	successResponse(c, ToUserDetailResponse(user))
}

// handleVerifyPhone marks the user's phone as verified
func (s *Server) handleVerifyPhone(c *gin.Context) {
	user := s.loadCurrentUser(c)
	if user == nil {
		return
	}

	if err := user.VerifyPhone(); err != nil {
		writeDomainError(c, err)
		return
	}

	if err := s.repo.UpdateUser(c.Request.Context(), user); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to save verification")
		return
	}

	successResponse(c, ToUserDetailResponse(user))
}

// handleUpdateSubscription moves the user to a different plan
func (s *Server) handleUpdateSubscription(c *gin.Context) {
	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	billingPeriod, err := domain.ParseBillingPeriod(req.BillingPeriod)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	ctx := c.Request.Context()

	plan, err := s.repo.GetPlanByID(ctx, req.SubscriptionPlanID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load plan")
		return
	}
	if plan == nil || !plan.IsActive() {
		errorResponse(c, http.StatusNotFound, "plan not available")
		return
	}

	user := s.loadCurrentUser(c)
	if user == nil {
		return
	}

	if err := user.UpdateSubscription(plan.ID(), billingPeriod); err != nil {
		writeDomainError(c, err)
		return
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	s.entitlements.Invalidate(ctx, user.ID())

	successResponse(c, ToUserDetailResponse(user))
}

// handleGetMyEntitlements resolves the authenticated user's entitlements
func (s *Server) handleGetMyEntitlements(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == uuid.Nil {
		errorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	resolution, err := s.entitlements.Resolve(c.Request.Context(), userID)
	if err != nil {
		writeEntitlementError(c, err)
		return
	}

	successResponse(c, resolution)
}

// writeEntitlementError maps resolver errors to HTTP responses
func writeEntitlementError(c *gin.Context, err error) {
	switch err {
	case entitlement.ErrUserNotFound, entitlement.ErrPlanNotFound:
		errorResponse(c, http.StatusNotFound, err.Error())
	case entitlement.ErrUserDeleted:
		errorResponse(c, http.StatusGone, err.Error())
	case entitlement.ErrNotTrader:
		errorResponse(c, http.StatusConflict, err.Error())
	case entitlement.ErrConfigUnavailable:
		errorResponse(c, http.StatusServiceUnavailable, err.Error())
	default:
		errorResponse(c, http.StatusInternalServerError, "failed to resolve entitlements")
	}
}
