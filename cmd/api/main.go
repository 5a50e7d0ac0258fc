package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"

	"github.com/yourusername/testhub-api/internal/config"
	"github.com/yourusername/testhub-api/internal/handler"
	"github.com/yourusername/testhub-api/internal/middleware"
	"github.com/yourusername/testhub-api/internal/rbac"
	pgRepo "github.com/yourusername/testhub-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/testhub-api/internal/repository/redis"
	"github.com/yourusername/testhub-api/internal/service"
	"github.com/yourusername/testhub-api/pkg/auth"
	"github.com/yourusername/testhub-api/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Loading configuration from %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Repositories
	userRepo := pgRepo.NewUserRepo(db)
	roleRepo := pgRepo.NewRoleRepo(db)
	testRepo := pgRepo.NewTestRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Token service
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Outbound email, no-op unless configured
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.ResendAPIKey != "" {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
		emailService = resendService
		log.Println("Transactional email enabled")
	}

	// LLM feedback, disabled unless an API key is configured
	var chatClient service.ChatCompleter
	if cfg.OpenAI.APIKey != "" {
		clientConfig := openai.DefaultConfig(cfg.OpenAI.APIKey)
		if cfg.OpenAI.BaseURL != "" {
			clientConfig.BaseURL = cfg.OpenAI.BaseURL
		}
		chatClient = openai.NewClientWithConfig(clientConfig)
		log.Printf("AI feedback enabled (model %s)", cfg.OpenAI.Model)
	} else {
		log.Println("AI feedback disabled: no OpenAI API key configured")
	}

	// Services
	authService := service.NewAuthService(userRepo, roleRepo, jwtService, emailService)
	testService := service.NewTestService(testRepo, questionRepo)
	attemptService := service.NewAttemptService(attemptRepo, testRepo, questionRepo, db)
	feedbackService := service.NewFeedbackService(
		attemptRepo, testRepo, questionRepo, cacheRepo,
		chatClient, cfg.OpenAI.Model, cfg.OpenAI.Temperature,
	)
	seedService := service.NewSeedService(userRepo, roleRepo, testRepo, questionRepo, cfg.Admin)

	if err := seedService.EnsureCoreData(); err != nil {
		log.Printf("Failed to seed core data: %v", err)
		os.Exit(1)
	}

	// Handlers and middleware
	authHandler := handler.NewAuthHandler(authService)
	testHandler := handler.NewTestHandler(testService, attemptService)
	attemptHandler := handler.NewAttemptHandler(attemptService, feedbackService)

	checker := rbac.NewChecker(nil)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, checker)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode
	router := gin.Default()

	// Trusted proxies affect c.ClientIP() and with it rate limit keys.
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", authHandler.Me)
		}

		tests := api.Group("/tests")
		{
			// Listing is public; authenticated viewers additionally see
			// their own unpublished tests.
			tests.GET("", authMiddleware.OptionalAuth(), testHandler.ListTests)

			tests.GET("/mine",
				authMiddleware.RequireAuth(),
				authMiddleware.RequirePermission("test:manage-own"),
				testHandler.ListMyTests)

			tests.POST("",
				authMiddleware.RequireAuth(),
				authMiddleware.RequirePermission("test:create"),
				testHandler.CreateTest)

			testWithID := tests.Group("/:id")
			testWithID.Use(middleware.ExtractUintParam("id", "testID"))
			{
				testWithID.GET("", authMiddleware.OptionalAuth(), testHandler.GetTest)

				managed := testWithID.Group("")
				managed.Use(authMiddleware.RequireAuth(), authMiddleware.RequirePermission("test:manage-own"))
				{
					managed.PUT("", testHandler.UpdateTest)
					managed.PATCH("/publish", testHandler.SetPublished)
					managed.DELETE("", testHandler.DeleteTest)
					managed.POST("/questions", testHandler.AddQuestion)
				}

				testWithID.GET("/attempts/export",
					authMiddleware.RequireAuth(),
					authMiddleware.RequirePermission("test:export-own"),
					testHandler.ExportAttempts)

				testWithID.POST("/attempts",
					authMiddleware.RequireAuth(),
					authMiddleware.RequirePermission("attempt:create"),
					attemptHandler.StartAttempt)
			}
		}

		questions := api.Group("/questions/:id")
		questions.Use(
			middleware.ExtractUintParam("id", "questionID"),
			authMiddleware.RequireAuth(),
			authMiddleware.RequirePermission("test:manage-own"),
		)
		{
			questions.PUT("", testHandler.UpdateQuestion)
			questions.DELETE("", testHandler.DeleteQuestion)
		}

		attempts := api.Group("/attempts")
		attempts.Use(authMiddleware.RequireAuth())
		{
			attempts.GET("", attemptHandler.ListMyAttempts)

			attemptWithID := attempts.Group("/:id")
			attemptWithID.Use(middleware.ExtractUintParam("id", "attemptID"))
			{
				attemptWithID.GET("", attemptHandler.GetAttempt)
				attemptWithID.POST("/submit", attemptHandler.SubmitAttempt)
				attemptWithID.GET("/result", attemptHandler.GetAttemptResult)
				attemptWithID.POST("/feedback",
					rateLimiter.Limit(middleware.FeedbackRateLimitConfig()),
					attemptHandler.GenerateFeedback)
			}
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
