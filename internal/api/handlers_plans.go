package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mytrader-platform/internal/domain"
)

// ============================================================================
// PLAN CATALOG HANDLERS (public)
// ============================================================================

// handleListActivePlans returns the public catalog of active plans
func (s *Server) handleListActivePlans(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, ok := s.getCachedPlanCatalog(ctx); ok {
		successResponse(c, cached)
		return
	}

	plans, err := s.repo.ListPlans(ctx, true)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list plans")
		return
	}

	responses := make([]PlanResponse, 0, len(plans))
	for _, plan := range plans {
		responses = append(responses, ToPlanResponse(plan))
	}

	s.setCachedPlanCatalog(ctx, responses)

	successResponse(c, responses)
}

// handleGetActivePlan returns one active plan from the public catalog
func (s *Server) handleGetActivePlan(c *gin.Context) {
	plan := s.loadPlanByParam(c)
	if plan == nil {
		return
	}
	if !plan.IsActive() {
		errorResponse(c, http.StatusNotFound, "plan not found")
		return
	}
	successResponse(c, ToPlanResponse(plan))
}

// ============================================================================
// ADMIN PLAN HANDLERS
// ============================================================================

// loadPlanByParam fetches the plan addressed by the :id route parameter.
// Writes the error response and returns nil on failure.
func (s *Server) loadPlanByParam(c *gin.Context) *domain.SubscriptionPlan {
	planID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid plan ID")
		return nil
	}

	plan, err := s.repo.GetPlanByID(c.Request.Context(), planID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load plan")
		return nil
	}
	if plan == nil {
		errorResponse(c, http.StatusNotFound, "plan not found")
		return nil
	}
	return plan
}

// handleListAllPlans lists every plan, active or not
func (s *Server) handleListAllPlans(c *gin.Context) {
	plans, err := s.repo.ListPlans(c.Request.Context(), false)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list plans")
		return
	}

	responses := make([]PlanResponse, 0, len(plans))
	for _, plan := range plans {
		responses = append(responses, ToPlanResponse(plan))
	}
	successResponse(c, responses)
}

// handleGetPlan returns a plan with its subscriber count
func (s *Server) handleGetPlan(c *gin.Context) {
	plan := s.loadPlanByParam(c)
	if plan == nil {
		return
	}

	response := ToPlanResponse(plan)
	if count, err := s.repo.CountPlanSubscribers(c.Request.Context(), plan.ID()); err == nil {
		response.SubscriberCount = &count
	}

	successResponse(c, response)
}

// handleCreatePlan creates a new subscription plan
func (s *Server) handleCreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	priceMonthly, err := domain.BRL(req.PriceMonthly)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	priceAnnual, err := domain.BRL(req.PriceAnnual)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	plan, err := domain.NewSubscriptionPlan(req.Name, priceMonthly, priceAnnual,
		req.AnnualDiscountPercent, req.StrategyLimit, req.Features)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	ctx := c.Request.Context()

	existing, err := s.repo.GetPlanByName(ctx, plan.Name())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to check plan name")
		return
	}
	if existing != nil {
		errorResponse(c, http.StatusConflict, "a plan with this name already exists")
		return
	}

	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to create plan")
		return
	}

	s.invalidatePlanCatalog(ctx)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    ToPlanResponse(plan),
	})
}

// handleUpdatePlan updates plan pricing, strategy limit and/or features
func (s *Server) handleUpdatePlan(c *gin.Context) {
	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	plan := s.loadPlanByParam(c)
	if plan == nil {
		return
	}

	if req.Pricing != nil {
		priceMonthly, err := domain.BRL(req.Pricing.PriceMonthly)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		priceAnnual, err := domain.BRL(req.Pricing.PriceAnnual)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		if err := plan.UpdatePricing(priceMonthly, priceAnnual, req.Pricing.AnnualDiscountPercent); err != nil {
			writeDomainError(c, err)
			return
		}
	}

	if req.StrategyLimit != nil {
		if err := plan.UpdateStrategyLimit(*req.StrategyLimit); err != nil {
			writeDomainError(c, err)
			return
		}
	}

	if req.Features != nil {
		plan.UpdateFeatures(*req.Features)
	}

	s.savePlanAndRespond(c, plan)
}

// handleActivatePlan makes a plan available for new subscriptions
func (s *Server) handleActivatePlan(c *gin.Context) {
	plan := s.loadPlanByParam(c)
	if plan == nil {
		return
	}

	plan.Activate()

	s.savePlanAndRespond(c, plan)
}

// handleDeactivatePlan retires a plan. Existing subscribers keep it.
func (s *Server) handleDeactivatePlan(c *gin.Context) {
	plan := s.loadPlanByParam(c)
	if plan == nil {
		return
	}

	plan.Deactivate()

	s.savePlanAndRespond(c, plan)
}

// savePlanAndRespond persists a mutated plan and drops caches that the
// change can affect: the public catalog and every subscriber's cached
// resolution.
func (s *Server) savePlanAndRespond(c *gin.Context, plan *domain.SubscriptionPlan) {
	ctx := c.Request.Context()

	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to save plan")
		return
	}

	s.invalidatePlanCatalog(ctx)
	s.invalidateAllEntitlements(ctx)

	successResponse(c, ToPlanResponse(plan))
}
