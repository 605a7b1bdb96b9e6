package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/cache"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/config"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/database"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/handlers"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/middleware"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/monitoring"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/repositories"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/rollover"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/services"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/store"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Application holds all application dependencies and state
type Application struct {
	Config *config.Config
	DB     *gorm.DB
	Pool   *database.Pool
	Cache  cache.Cache
	Redis  *redis.Client
	Router *gin.Engine
	Server *http.Server

	// Services
	TaskService     services.TaskService
	AuthService     services.AuthService
	RegisterService services.RegisterService
	NoteService     services.NoteService
	GoalService     services.GoalService
	APIKeyService   services.APIKeyService

	Stores   *store.Manager
	Rollover *rollover.Scheduler
	Worker   *worker.Worker
	Jobs     *worker.JobQueue
}

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startServer()
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	log.Println("🚀 Initializing Organisor Backend...")
	log.Printf("📋 Environment: %s", cfg.Server.Environment)

	pool, err := database.NewPool(database.PoolConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.Pool = pool
	app.DB = pool.DB

	log.Println("✅ Database connected and configured")

	migrationConfig := &repositories.MigrationConfig{
		Driver:         cfg.Database.Driver,
		MigrationsPath: "file://migrations",
		DBName:         cfg.Database.Name,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}

	if err := repositories.RunMigrations(app.DB, migrationConfig); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis unavailable: %v (continuing with memory cache only)", err)
		redisClient = nil
	} else {
		app.Redis = redisClient
		log.Println("✅ Redis connected")
	}

	if redisClient != nil {
		redisCache := cache.NewRedisCacheWithClient(redisClient)
		app.Cache = cache.NewMultiLevelCache(redisCache)
		log.Println("✅ Multi-level cache initialized (Memory L1 + Redis L2)")
	} else {
		app.Cache = cache.NewMultiLevelCache(nil)
		log.Println("✅ Memory-only cache initialized (Redis fallback)")
	}

	// Services
	app.AuthService = services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	app.RegisterService = services.NewRegisterService()
	app.NoteService = services.NewNoteService(app.DB)
	app.GoalService = services.NewGoalService(app.DB)
	app.APIKeyService = services.NewAPIKeyService(app.DB)

	taskServiceImpl := services.NewTaskService(app.DB)
	if app.Cache != nil {
		app.TaskService = services.NewCachedTaskService(taskServiceImpl, app.Cache)
		log.Println("✅ Cached task service initialized")
	} else {
		app.TaskService = taskServiceImpl
	}

	app.Stores = store.NewManager(app.TaskService)

	if cfg.Rollover.Enabled {
		app.Rollover = rollover.NewScheduler(app.DB, app.TaskService, app.Stores)
		if err := app.Rollover.Start(cfg.Rollover.Schedule, cfg.Rollover.Timezone); err != nil {
			return nil, fmt.Errorf("rollover scheduler failed: %w", err)
		}
	}

	if app.Redis != nil {
		app.Worker = worker.NewWorker(worker.WorkerConfig{
			RedisClient:  app.Redis,
			Concurrency:  2,
			PollInterval: time.Second,
			Queues:       []string{"jobs", "retry_queue"},
		})
		app.Jobs = worker.NewJobQueue(app.Redis)
		app.registerJobHandlers()
		app.Worker.Start(2)
	}

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		return app.Pool.Health()
	})
	if app.Cache != nil {
		monitoring.RegisterHealthCheck("cache", func(ctx context.Context) error {
			return app.Cache.Health()
		})
	}

	log.Println("✅ All services initialized")

	return app, nil
}

// registerJobHandlers wires the background jobs: expired refresh tokens get
// purged, and task reminders are logged for the notification relay to pick
// up.
func (app *Application) registerJobHandlers() {
	app.Worker.RegisterHandler(worker.JobTypeCleanup, func(ctx context.Context, job *worker.Job) error {
		result := app.DB.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&models.Token{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			log.Printf("🧹 Purged %d expired refresh tokens", result.RowsAffected)
		}
		// Re-arm for the next day.
		return app.Jobs.EnqueueAt("jobs", worker.JobTypeCleanup, nil, time.Now().Add(24*time.Hour))
	})

	app.Worker.RegisterHandler(worker.JobTypeTaskReminder, func(ctx context.Context, job *worker.Job) error {
		log.Printf("⏳ Task reminder due: %v", job.Payload)
		return nil
	})

	if err := app.Jobs.Enqueue("jobs", worker.JobTypeCleanup, nil); err != nil {
		log.Printf("⚠️  Failed to enqueue cleanup job: %v", err)
	}
}

func (app *Application) setupRoutes() {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Global middleware stack (order matters!)
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.SecureHeader())

	// Rate limiting
	rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
	r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://host.docker.internal"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Api-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health and monitoring endpoints (no auth required)
	r.GET("/health", monitoring.HealthHandler())
	r.GET("/ready", monitoring.ReadinessHandler())
	r.GET("/live", monitoring.LivenessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	// Machine-facing capture endpoint, authenticated by API key.
	ingestHandler := handlers.NewIngestHandler(app.Stores)
	r.POST("/api/ingest", middleware.APIKeyMiddleware(app.APIKeyService), ingestHandler.Ingest)

	v1 := r.Group("/api/v1")

	// Public authentication routes (no auth required)
	authRoutes := v1.Group("/auth")
	{
		authHandler := handlers.NewAuthHandler(app.DB, app.AuthService)
		refreshHandler := handlers.NewRefreshHandler(app.DB, app.AuthService)
		registrationHandler := handlers.NewRegisterHandler(app.DB, app.RegisterService)

		authRoutes.POST("/register", registrationHandler.Registration)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.POST("/refresh", refreshHandler.Refresh)
	}

	// Protected routes (require authentication)
	protected := v1.Group("")
	protected.Use(middleware.AuthzMiddleware(middleware.AuthzConfig{Secret: app.Config.Auth.JWTSecret}))
	{
		// Task board routes
		taskHandler := handlers.NewTaskHandler(app.Stores)
		taskRoutes := protected.Group("/tasks")
		{
			taskRoutes.GET("", taskHandler.GetTasks)
			taskRoutes.GET("/board", taskHandler.GetBoard)
			taskRoutes.GET("/archive", taskHandler.GetArchive)
			taskRoutes.POST("", taskHandler.CreateTask)
			taskRoutes.PATCH("/:id", taskHandler.UpdateTaskField)
			taskRoutes.POST("/:id/toggle", taskHandler.ToggleCompletion)
			taskRoutes.POST("/:id/archive", taskHandler.ArchiveTask)
			taskRoutes.POST("/:id/unarchive", taskHandler.UnarchiveTask)
			taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
			taskRoutes.POST("/move", taskHandler.MoveTask)
			taskRoutes.POST("/reorder", taskHandler.ReorderTasks)
		}

		// Notes
		noteHandler := handlers.NewNoteHandler(app.NoteService)
		noteRoutes := protected.Group("/notes")
		{
			noteRoutes.GET("", noteHandler.GetNotes)
			noteRoutes.GET("/tags", noteHandler.GetTags)
			noteRoutes.GET("/:id", noteHandler.GetNoteByID)
			noteRoutes.POST("", noteHandler.CreateNote)
			noteRoutes.PUT("/:id", noteHandler.UpdateNote)
			noteRoutes.DELETE("/:id", noteHandler.DeleteNote)
		}

		// Goals
		goalHandler := handlers.NewGoalHandler(app.GoalService)
		goalRoutes := protected.Group("/goals")
		{
			goalRoutes.GET("", goalHandler.GetGoals)
			goalRoutes.POST("", goalHandler.SetGoal)
			goalRoutes.DELETE("/:goal_type", goalHandler.DeleteGoal)
		}

		// API keys for the ingest endpoint
		keyHandler := handlers.NewAPIKeyHandler(app.APIKeyService)
		keyRoutes := protected.Group("/apikeys")
		{
			keyRoutes.GET("", keyHandler.ListKeys)
			keyRoutes.POST("", keyHandler.CreateKey)
			keyRoutes.DELETE("/:id", keyHandler.RevokeKey)
		}

		// Cache management
		if app.Cache != nil {
			cacheHandler := handlers.NewCacheHandler(app.Cache)
			cacheRoutes := protected.Group("/cache")
			{
				cacheRoutes.GET("/stats", cacheHandler.Stats)
				cacheRoutes.POST("/invalidate", cacheHandler.Invalidate)
			}
		}
	}

	app.Router = r
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}

		app.cleanup()
		log.Println("✅ Server stopped gracefully")
	}()

	log.Printf("🚀 Server starting on %s", addr)
	log.Printf("📊 Metrics available at http://%s/metrics", addr)
	log.Printf("💚 Health check at http://%s/health", addr)

	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

func (app *Application) cleanup() {
	log.Println("🧹 Cleaning up resources...")

	if app.Rollover != nil {
		app.Rollover.Stop()
	}

	if app.Worker != nil {
		app.Worker.Stop()
	}

	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			log.Printf("⚠️  Error closing cache: %v", err)
		}
	}

	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			log.Printf("⚠️  Error closing Redis: %v", err)
		}
	}

	if app.Pool != nil {
		if err := app.Pool.Close(); err != nil {
			log.Printf("⚠️  Error closing database: %v", err)
		}
	}

	log.Println("✅ Cleanup complete")
}
