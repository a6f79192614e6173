package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"chartvision-backend-go/internal/ai"
	"chartvision-backend-go/internal/api"
	"chartvision-backend-go/internal/config"
	"chartvision-backend-go/internal/core"
	"chartvision-backend-go/internal/db"
	"chartvision-backend-go/internal/media"
	"chartvision-backend-go/internal/middleware"
)

func main() {
	// --- 1. Initialize Logger (Zap) ---
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Load Application Configuration ---
	// A local .env file is a development convenience; in deployed
	// environments the variables come from the runtime.
	if err := godotenv.Load(); err != nil {
		zapLogger.Debug("No .env file loaded", zap.Error(err))
	}
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Initialize Firebase Admin SDK (Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirebase(initCtx, appConfig); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil || firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firestore or Firebase Auth client is nil after initialization. Application cannot start.")
	}

	// --- 4. Initialize Repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	usageRepo := db.NewFirestoreUsageRepository(firestoreClient)
	historyRepo := db.NewFirestoreHistoryRepository(firestoreClient)
	zapLogger.Info("Repositories initialized successfully.")

	// --- 5. Initialize Model Client and Media Store ---
	modelClient, err := ai.NewClient(appConfig.GeminiAPIKey, appConfig.GeminiModel)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize model service client", zap.Error(err))
	}
	zapLogger.Info("Model service client initialized", zap.String("model", appConfig.GeminiModel))

	var mediaStore core.MediaStore
	if appConfig.MediaStorageEnabled() {
		cloudinaryStore, err := media.NewCloudinaryStore(appConfig.CloudinaryCloudName, appConfig.CloudinaryAPIKey, appConfig.CloudinaryAPISecret)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Cloudinary media store", zap.Error(err))
		}
		mediaStore = cloudinaryStore
		zapLogger.Info("Cloudinary media store initialized.")
	} else {
		zapLogger.Warn("Media storage disabled: Cloudinary credentials not configured. History items will not carry image URLs.")
	}

	// --- 6. Initialize Services ---
	userService := core.NewUserService(userRepo)
	historyService := core.NewHistoryService(historyRepo)
	billingService := core.NewBillingService(userRepo)

	usageService, err := core.NewUsageService(usageRepo, appConfig.FreeDailyLimit)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize UsageService", zap.Error(err))
	}

	analysisService, err := core.NewAnalysisService(modelClient, usageService, historyService, mediaStore, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize AnalysisService", zap.Error(err))
	}
	zapLogger.Info("Core services initialized successfully.")

	// --- 7. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	// --- 8. Apply Global Middleware (Order is important) ---
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))

	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured. API might not be accessible from a web frontend.")
	}

	// --- 9. Setup API Routes ---
	api.SetupRoutes(
		router,
		zapLogger,
		userService,
		usageService,
		analysisService,
		historyService,
		billingService,
	)

	// --- 10. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 11. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
