package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"vitalis/internal/agent"
	"vitalis/internal/config"
	"vitalis/internal/database"
	"vitalis/internal/handlers"
	"vitalis/internal/jobs"
	"vitalis/internal/learning"
	"vitalis/internal/logging"
	"vitalis/internal/middleware"
	"vitalis/internal/models"
	"vitalis/internal/services"
	"vitalis/pkg/auth"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Vitalis server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Printf("📋 Configuration loaded (Port: %s)", cfg.Port)

	// MySQL: the vitals/product store
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MySQL: %v", err)
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize vitals store schema: %v", err)
	}

	// MongoDB: the agent-state store
	mongoDB, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close(context.Background())
	if err := mongoDB.Initialize(context.Background()); err != nil {
		log.Fatalf("❌ Failed to initialize agent-state indexes: %v", err)
	}

	// Redis: action-event pub/sub and trigger rate limiting
	redisService, err := services.NewRedisService(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	services.InitMetrics()

	// Agent policy defaults for users who have not customized preferences
	agentDefaults, err := config.LoadAgentDefaults(cfg.AgentDefaults)
	if err != nil {
		log.Fatalf("❌ Failed to load agent defaults: %v", err)
	}
	prefDefaults := models.AgentPreferences{
		AutonomyLevel:             agentDefaults.AutonomyLevel,
		NudgesEnabled:             true,
		CelebrationsEnabled:       true,
		GoalAdjustEnabled:         true,
		EscalationsEnabled:        true,
		QuietHoursStart:           agentDefaults.QuietHoursStart,
		QuietHoursEnd:             agentDefaults.QuietHoursEnd,
		MaxNudgesPerDay:           agentDefaults.MaxNudgesPerDay,
		MaxGoalAdjustmentsPerWeek: agentDefaults.MaxGoalAdjustmentsPerWeek,
	}

	// Completion providers (hot-reloaded below)
	providerService, err := services.NewProviderService(cfg.ProvidersFile)
	if err != nil {
		log.Fatalf("❌ Failed to load completion providers: %v", err)
	}
	go startProvidersFileWatcher(cfg.ProvidersFile, providerService)

	// Stores and domain services
	userService := services.NewUserService(mongoDB)
	healthService := services.NewHealthService(db)
	nudgeService := services.NewNudgeService(db)
	prefsService := services.NewPreferencesService(mongoDB, prefDefaults)
	actionLogService := services.NewActionLogService(mongoDB)
	memoryService := services.NewMemoryService(mongoDB)
	userModelService := services.NewUserModelService(mongoDB)
	outcomeService := services.NewOutcomeService(mongoDB)
	taskService := services.NewTaskService(mongoDB)
	eventService := services.NewEventService(redisService)

	// Decision path
	contextBuilder := agent.NewContextBuilder(
		userService, healthService, prefsService,
		actionLogService, memoryService, userModelService,
	)
	completionClient := agent.NewCompletionClient(
		providerService, time.Duration(cfg.CompletionTimeoutSeconds)*time.Second,
	)
	executor := agent.NewExecutor(
		healthService, nudgeService, actionLogService, taskService, eventService,
	)
	engine := agent.NewEngine(
		contextBuilder, completionClient, executor,
		cfg.AgentModel, agentDefaults.MaxActionsPerTrigger,
	)

	// Learning path
	updater := learning.NewUpdater(userModelService, memoryService)
	learningService := learning.NewService(
		userService, healthService, actionLogService, outcomeService, updater,
	)

	// Auth
	var jwtAuth *auth.LocalJWTAuth
	if cfg.JWTSecret != "" {
		jwtAuth, err = auth.NewLocalJWTAuth(cfg.JWTSecret, 24*time.Hour, 30*24*time.Hour)
		if err != nil {
			log.Fatalf("❌ Failed to initialize JWT auth: %v", err)
		}
	} else if os.Getenv("ENVIRONMENT") == "production" {
		log.Fatal("❌ JWT_SECRET is required in production")
	} else {
		log.Println("⚠️  JWT_SECRET not set - end-user auth disabled (development mode only)")
	}

	// HTTP surface
	app := fiber.New(fiber.Config{
		AppName:      "vitalis",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnvDefault("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Service-Key",
	}))

	prometheus := fiberprometheus.New("vitalis")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	agentHandler := handlers.NewAgentHandler(engine, actionLogService, memoryService)
	learningHandler := handlers.NewLearningHandler(learningService)
	prefsHandler := handlers.NewPreferencesHandler(prefsService)
	outcomeHandler := handlers.NewOutcomeHandler(outcomeService)
	vitalsHandler := handlers.NewVitalsHandler(healthService, nudgeService, engine)
	healthHandler := handlers.NewHealthHandler(db, mongoDB, redisService)

	app.Get("/health", healthHandler.Handle)

	userAuth := middleware.LocalAuthMiddleware(jwtAuth)
	ensureUser := middleware.EnsureUserProfile(userService)
	serviceAuth := middleware.ServiceKeyMiddleware(cfg.ServiceKey)
	triggerAuth := middleware.UserOrServiceAuth(jwtAuth, cfg.ServiceKey)
	triggerLimit := middleware.TriggerRateLimit(redisService, cfg.TriggerRatePerHour, time.Hour)

	api := app.Group("/api")
	api.Post("/agent/trigger", triggerAuth, triggerLimit, agentHandler.Trigger)
	api.Get("/agent/actions", userAuth, ensureUser, agentHandler.Actions)
	api.Get("/agent/memory", userAuth, ensureUser, agentHandler.Memory)
	api.Get("/agent/preferences", userAuth, ensureUser, prefsHandler.Get)
	api.Put("/agent/preferences", userAuth, ensureUser, prefsHandler.Update)
	api.Post("/vitals", userAuth, ensureUser, vitalsHandler.Record)
	api.Get("/nudges", userAuth, ensureUser, vitalsHandler.Nudges)
	api.Post("/learning/run", serviceAuth, learningHandler.Run)
	api.Post("/interactions", serviceAuth, outcomeHandler.Record)

	// Background jobs
	scheduler, err := jobs.NewScheduler(redisService)
	if err != nil {
		log.Fatalf("❌ Failed to create job scheduler: %v", err)
	}

	learningJob := jobs.NewLearningJob(learningService)
	morningJob := jobs.NewAnalysisJob(userService, engine, models.TriggerMorningAnalysis)
	eveningJob := jobs.NewAnalysisJob(userService, engine, models.TriggerEveningAnalysis)
	dispatcher := jobs.NewFollowupDispatcher(taskService, engine)

	mustRegister := func(err error) {
		if err != nil {
			log.Fatalf("❌ Failed to register job: %v", err)
		}
	}
	mustRegister(scheduler.RegisterCron("learning_batch", cfg.LearningCron, 30*time.Minute, learningJob.Run))
	mustRegister(scheduler.RegisterCron("morning_analysis", cfg.MorningAnalysisCron, 30*time.Minute, morningJob.Run))
	mustRegister(scheduler.RegisterCron("evening_analysis", cfg.EveningAnalysisCron, 30*time.Minute, eveningJob.Run))
	mustRegister(scheduler.RegisterInterval("followup_dispatcher", time.Minute, 5*time.Minute, dispatcher.Run))

	scheduler.Start()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		if err := scheduler.Stop(); err != nil {
			log.Printf("⚠️ Error stopping scheduler: %v", err)
		}

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// startProvidersFileWatcher watches providers.json for changes and hot-reloads
func startProvidersFileWatcher(filePath string, providerService *services.ProviderService) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️  Failed to create file watcher: %v", err)
		return
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		log.Printf("⚠️  Failed to get absolute path for %s: %v", filePath, err)
		watcher.Close()
		return
	}

	// Watch the directory containing the file (more reliable than watching the file directly)
	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)

	if err := watcher.Add(dir); err != nil {
		log.Printf("⚠️  Failed to watch directory %s: %v", dir, err)
		watcher.Close()
		return
	}

	log.Printf("👁️  Watching %s for changes (hot-reload enabled)", filePath)

	// Debounce timer to avoid multiple reloads for rapid file changes
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}

				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := providerService.Reload(filePath); err != nil {
						log.Printf("❌ Failed to reload providers after file change: %v", err)
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  File watcher error: %v", err)
		}
	}
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
