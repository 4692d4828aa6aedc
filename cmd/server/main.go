// Package main runs the team hub HTTP server with WebSocket fan-out
// and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/circuit-breakers/teamhub/config"
	"github.com/circuit-breakers/teamhub/internal/admin"
	"github.com/circuit-breakers/teamhub/internal/analytics"
	"github.com/circuit-breakers/teamhub/internal/auth"
	"github.com/circuit-breakers/teamhub/internal/buildlogs"
	"github.com/circuit-breakers/teamhub/internal/events"
	"github.com/circuit-breakers/teamhub/internal/media"
	"github.com/circuit-breakers/teamhub/internal/messages"
	"github.com/circuit-breakers/teamhub/internal/middleware"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/internal/realtime"
	"github.com/circuit-breakers/teamhub/internal/resources"
	"github.com/circuit-breakers/teamhub/internal/sponsors"
	"github.com/circuit-breakers/teamhub/internal/tasks"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/queue"
	"github.com/circuit-breakers/teamhub/pkg/redis"
	"github.com/circuit-breakers/teamhub/pkg/response"
	"github.com/circuit-breakers/teamhub/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var s3Client *storage.S3
	if cfg.AWS.Bucket != "" {
		s3Client, err = storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			Bucket:               cfg.AWS.Bucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	var hub *realtime.Hub
	if rdb != nil {
		pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
		hub = realtime.NewHub(logger, pubsub, pubsub)
	} else {
		hub = realtime.NewHub(logger, nil, nil)
	}

	var jobQueue *queue.Queue
	if rdb != nil {
		jobQueue = queue.NewQueue(rdb.Client, logger)
	}

	// Auth and team directory
	userRepo := auth.NewRepository(jsonstore.NewKeyed[models.User](cfg.Data.UsersFile(), logger), logger)
	if err := userRepo.EnsureDefaultAdmin(ctx); err != nil {
		logger.Fatal("seed user directory", zap.Error(err))
	}
	resolver := auth.NewResolver(userRepo)
	authHandler := auth.NewHandler(userRepo, jwtService, logger)

	// Tasks
	taskRepo := tasks.NewRepository(jsonstore.NewCollection[models.Task](cfg.Data.TasksFile(), logger), logger)
	taskHandler := tasks.NewHandler(taskRepo, resolver, logger)

	// Build logs
	logRepo := buildlogs.NewRepository(jsonstore.NewCollection[models.BuildLog](cfg.Data.BuildLogsFile(), logger), logger)
	logHandler := buildlogs.NewHandler(logRepo, logger)

	// Resources
	resourceRepo := resources.NewRepository(jsonstore.NewCollection[models.Resource](cfg.Data.ResourcesFile(), logger), logger)
	resourceHandler := resources.NewHandler(resourceRepo, storage.NewLocal(cfg.Data.ResourceUploadsDir(), logger), s3Client, logger)

	// Media gallery
	mediaRepo := media.NewRepository(jsonstore.NewCollection[models.MediaItem](cfg.Data.MediaFile(), logger), logger)
	mediaHandler := media.NewHandler(mediaRepo, storage.NewLocal(cfg.Data.MediaUploadsDir(), logger), s3Client, logger)

	// Sponsors
	sponsorRepo := sponsors.NewRepository(jsonstore.NewCollection[models.Sponsor](cfg.Data.SponsorsFile(), logger), logger)
	sponsorHandler := sponsors.NewHandler(sponsorRepo, logger)

	// Calendar
	eventRepo := events.NewRepository(jsonstore.NewCollection[models.Event](cfg.Data.EventsFile(), logger), logger)
	eventHandler := events.NewHandler(eventRepo, logger)

	// Message board
	messageRepo := messages.NewRepository(jsonstore.NewCollection[models.Message](cfg.Data.MessagesFile(), logger), logger)
	messageHandler := messages.NewHandler(messageRepo, hub, logger)

	// Dashboard
	dashboardHandler := analytics.NewHandler(taskRepo, logRepo, eventRepo, sponsorRepo, logger)

	// Admin panel
	settingsRepo := admin.NewSettingsRepository(jsonstore.NewDocument[models.Settings](cfg.Data.SettingsFile(), logger), logger)
	auditRepo := admin.NewAuditRepository(jsonstore.NewCollection[models.AuditEntry](cfg.Data.AuditLogFile(), logger), logger)
	adminHandler := admin.NewHandler(userRepo, settingsRepo, auditRepo, jobQueue, logger)

	wsValidate := func(token string) (username, name string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.Username, claims.Name, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	router.POST("/auth/login", authHandler.Login)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/team", authHandler.ListMembers)
		api.GET("/dashboard", dashboardHandler.Dashboard)

		// Tasks
		api.GET("/tasks", taskHandler.List)
		api.POST("/tasks", taskHandler.Create)
		api.GET("/tasks/:id", taskHandler.Get)
		api.PUT("/tasks/:id", taskHandler.Update)
		api.DELETE("/tasks/:id", middleware.RequireRole("admin", "lead"), taskHandler.Delete)

		// Build logs
		api.GET("/buildlogs", logHandler.List)
		api.POST("/buildlogs", logHandler.Create)
		api.GET("/buildlogs/:id", logHandler.Get)
		api.PUT("/buildlogs/:id", logHandler.Update)
		api.DELETE("/buildlogs/:id", middleware.RequireRole("admin", "lead"), logHandler.Delete)

		// Resources
		api.GET("/resources", resourceHandler.List)
		api.POST("/resources", resourceHandler.Create)
		api.GET("/resources/:id", resourceHandler.Get)
		api.GET("/resources/:id/download", resourceHandler.Download)
		api.PUT("/resources/:id", resourceHandler.Update)
		api.DELETE("/resources/:id", middleware.RequireRole("admin", "lead"), resourceHandler.Delete)

		// Media gallery
		api.GET("/media", mediaHandler.List)
		api.POST("/media", mediaHandler.Create)
		api.GET("/media/:id", mediaHandler.Get)
		api.GET("/media/:id/file", mediaHandler.File)
		api.PUT("/media/:id", mediaHandler.Update)
		api.DELETE("/media/:id", middleware.RequireRole("admin", "lead"), mediaHandler.Delete)

		// Sponsors
		api.GET("/sponsors", sponsorHandler.List)
		api.GET("/sponsors/:id", sponsorHandler.Get)
		api.POST("/sponsors", middleware.RequireRole("admin", "lead"), sponsorHandler.Create)
		api.PUT("/sponsors/:id", middleware.RequireRole("admin", "lead"), sponsorHandler.Update)
		api.DELETE("/sponsors/:id", middleware.RequireRole("admin", "lead"), sponsorHandler.Delete)

		// Calendar
		api.GET("/events", eventHandler.List)
		api.POST("/events", eventHandler.Create)
		api.GET("/events/:id", eventHandler.Get)
		api.PUT("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", middleware.RequireRole("admin", "lead"), eventHandler.Delete)

		// Message board
		api.GET("/messages", messageHandler.List)
		api.POST("/messages", messageHandler.Post)
		api.POST("/messages/:id/replies", messageHandler.Reply)
		api.PUT("/messages/:id", messageHandler.Edit)
		api.DELETE("/messages/:id", messageHandler.Delete)

		// Admin panel
		adm := api.Group("/admin", middleware.RequireRole("admin"))
		{
			adm.GET("/users", adminHandler.ListUsers)
			adm.POST("/users", adminHandler.CreateUser)
			adm.PUT("/users/:username", adminHandler.UpdateUser)
			adm.DELETE("/users/:username", adminHandler.DeleteUser)
			adm.GET("/settings", adminHandler.GetSettings)
			adm.PUT("/settings", adminHandler.UpdateSettings)
			adm.GET("/audit", adminHandler.ListAudit)
			adm.POST("/maintenance/backup", adminHandler.RunBackup)
			adm.POST("/maintenance/cleanup", adminHandler.RunCleanup)
		}
	}

	// WebSocket (token in query; browsers cannot set headers here)
	router.GET("/ws", realtime.ServeWs(hub, logger, wsValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
