package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chartvision-backend-go/internal/core"
	"chartvision-backend-go/internal/db"
	"chartvision-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (logging, recovery, CORS) is expected to be
// applied to the router before this is called, typically in main.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	userService core.UserService,
	usageService core.UsageService,
	analysisService core.AnalysisService,
	historyService core.HistoryService,
	billingService core.BillingService,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		// Without the auth client no route can be secured; refuse to start.
		logger.Fatal("CRITICAL_SETUP_ERROR: Firebase Auth client is not initialized. Routes will not be set up.")
		panic("Firebase Auth client is nil during route setup")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient)

	authHandler := NewAuthHandler(userService)
	userHandler := NewUserHandler(userService)
	usageHandler := NewUsageHandler(userService, usageService)
	analysisHandler := NewAnalysisHandler(userService, usageService, analysisService)
	historyHandler := NewHistoryHandler(historyService)
	billingHandler := NewBillingHandler(billingService)

	apiV1 := router.Group("/api/v1")
	{
		// --- User and Authentication Endpoints ---
		userAuthGroup := apiV1.Group("/users")
		{
			// Called after client-side Firebase login/signup to ensure a
			// backend profile exists.
			userAuthGroup.POST("/initialize", authMW.VerifyToken(), authHandler.InitializeUserProfile)
			userAuthGroup.GET("/me", authMW.VerifyToken(), userHandler.GetCurrentUserProfile)
		}

		// --- Usage Endpoint ---
		apiV1.GET("/usage/me", authMW.VerifyToken(), usageHandler.GetMyUsage)

		// --- Analysis Endpoint ---
		apiV1.POST("/analyses", authMW.VerifyToken(), analysisHandler.Analyze)

		// --- History Endpoint ---
		apiV1.GET("/history", authMW.VerifyToken(), historyHandler.ListMyHistory)

		// --- Billing Endpoints ---
		billingRouteGroup := apiV1.Group("/billing")
		{
			billingRouteGroup.POST("/create-checkout-session", authMW.VerifyToken(), billingHandler.CreateCheckoutSession)

			// Public webhook endpoint (no VerifyToken here): the payment
			// provider authenticates via signature, handled by the service.
			billingRouteGroup.POST("/webhooks/payments", billingHandler.HandlePaymentWebhook)
		}
	}

	// --- General Health Check Endpoint ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "ChartVision backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
