package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"mytrader-platform/internal/auth"
	"mytrader-platform/internal/cache"
	"mytrader-platform/internal/database"
	"mytrader-platform/internal/domain"
	"mytrader-platform/internal/entitlement"
	"mytrader-platform/internal/vault"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server represents the HTTP API server
type Server struct {
	router       *gin.Engine
	httpServer   *http.Server
	repo         *database.Repository
	config       ServerConfig
	authService  *auth.Service
	entitlements *entitlement.Service
	cacheService *cache.CacheService // Can be nil when Redis is disabled
	vaultClient  *vault.Client       // Can be nil when Vault is disabled
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	AllowedOrigins string
	ProductionMode bool
}

// NewServer creates a new API server
func NewServer(
	config ServerConfig,
	repo *database.Repository,
	authService *auth.Service,
	entitlements *entitlement.Service,
	cacheService *cache.CacheService, // Can be nil if Redis is disabled
	vaultClient *vault.Client, // Can be nil if vault is disabled
) *Server {
	// Set Gin mode
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	if config.AllowedOrigins == "" || config.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(config.AllowedOrigins, ",")
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:       router,
		repo:         repo,
		config:       config,
		authService:  authService,
		entitlements: entitlements,
		cacheService: cacheService,
		vaultClient:  vaultClient,
	}

	server.setupRoutes()

	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	jwtManager := s.authService.GetJWTManager()
	authHandlers := auth.NewHandlers(s.authService)

	// Auth routes (public, no authentication required)
	authGroup := s.router.Group("/api/auth")
	{
		authGroup.POST("/register", authHandlers.Register)
		authGroup.POST("/login", authHandlers.Login)
		authGroup.POST("/refresh", authHandlers.Refresh)
		authGroup.POST("/logout", authHandlers.Logout)
		authGroup.POST("/change-password", auth.Middleware(jwtManager), authHandlers.ChangePassword)
	}

	// Plan catalog (public, traders browse plans before registering)
	s.router.GET("/api/plans", s.handleListActivePlans)
	s.router.GET("/api/plans/:id", s.handleGetActivePlan)

	// API routes (all require authentication)
	api := s.router.Group("/api")
	api.Use(auth.Middleware(jwtManager))
	{
		// Current user endpoints
		me := api.Group("/users/me")
		{
			me.GET("", s.handleGetMe)
			me.PUT("/profile", s.handleUpdateProfile)
			me.POST("/phone", s.handleSetPhone)
			me.POST("/phone/verify", s.handleVerifyPhone)
			me.PUT("/subscription", s.handleUpdateSubscription)
			me.GET("/entitlements", s.handleGetMyEntitlements)
		}

		// Admin endpoints
		admin := api.Group("/admin")
		admin.Use(auth.RequireAdmin())
		{
			// User management
			admin.GET("/users", s.handleListUsers)
			admin.GET("/users/:id", s.handleGetUser)
			admin.POST("/users/:id/suspend", s.handleSuspendUser)
			admin.POST("/users/:id/reactivate", s.handleReactivateUser)
			admin.DELETE("/users/:id", s.handleDeleteUser)

			// Plan override management
			admin.POST("/users/:id/override", s.handleGrantOverride)
			admin.DELETE("/users/:id/override", s.handleRevokeOverride)

			// Custom fee management
			admin.PUT("/users/:id/fees", s.handleSetCustomFees)
			admin.DELETE("/users/:id/fees", s.handleClearCustomFees)

			// Entitlement inspection
			admin.GET("/users/:id/entitlements", s.handleGetUserEntitlements)

			// Plan management
			admin.GET("/plans", s.handleListAllPlans)
			admin.GET("/plans/:id", s.handleGetPlan)
			admin.POST("/plans", s.handleCreatePlan)
			admin.PUT("/plans/:id", s.handleUpdatePlan)
			admin.POST("/plans/:id/activate", s.handleActivatePlan)
			admin.POST("/plans/:id/deactivate", s.handleDeactivatePlan)

			// System configuration
			admin.GET("/system/config", s.handleGetSystemConfig)
			admin.PUT("/system/config/fees", s.handleUpdateSystemFees)
			admin.PUT("/system/config/limits", s.handleUpdateSystemLimits)

			// Cache diagnostics
			admin.GET("/cache/stats", s.handleGetCacheStats)
		}
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting HTTP server on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if err := s.repo.HealthCheck(ctx); err != nil {
		checks["database"] = "unhealthy"
		healthy = false
	} else {
		checks["database"] = "healthy"
	}

	if s.cacheService != nil {
		if s.cacheService.IsHealthy() {
			checks["redis"] = "healthy"
		} else {
			// Degraded, not fatal: reads fall back to the database
			checks["redis"] = "degraded"
		}
	}

	if s.vaultClient != nil && s.vaultClient.IsEnabled() {
		if err := s.vaultClient.Health(ctx); err != nil {
			checks["vault"] = "unhealthy"
		} else {
			checks["vault"] = "healthy"
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	checks["status"] = status
	c.JSON(code, checks)
}

// errorResponse is a helper to send error responses
func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

// successResponse is a helper to send success responses
func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// writeDomainError maps domain errors to HTTP responses: malformed input
// becomes 400, operations disallowed in the current state become 409.
func writeDomainError(c *gin.Context, err error) {
	if domain.IsValidation(err) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	if code := domain.RuleCode(err); code != "" {
		c.JSON(http.StatusConflict, gin.H{
			"error":   code,
			"message": err.Error(),
		})
		return
	}

	errorResponse(c, http.StatusInternalServerError, "request failed")
}
