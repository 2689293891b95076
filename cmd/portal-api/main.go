package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"voluma/capture-portal/capture-portal-backend/internal/audit"
	"voluma/capture-portal/capture-portal-backend/internal/auth"
	"voluma/capture-portal/capture-portal-backend/internal/config"
	"voluma/capture-portal/capture-portal-backend/internal/notifications"
	wshub "voluma/capture-portal/capture-portal-backend/internal/notifications/websocket"
	"voluma/capture-portal/capture-portal-backend/internal/projects"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// .env is optional outside local development
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.Security.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	dbURL := cfg.Database.GetDatabaseURL()

	gormDB, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(&projects.Project{}, &projects.ProjectActivity{}); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	sqlxDB, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer sqlxDB.Close()
	sqlxDB.SetMaxOpenConns(cfg.Database.MaxConnections)
	sqlxDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// Wire modules
	hub := wshub.NewHub(logger)
	notifier := notifications.NewService(hub, logger)
	auditRepo := audit.NewRepository(sqlxDB)
	projectRepo := projects.NewProjectRepository(gormDB)
	activityRepo := projects.NewActivityRepository(gormDB)
	projectService := projects.NewProjectService(projectRepo, activityRepo, auditRepo, notifier, logger)
	projectHandler := projects.NewHandler(projectService, logger)

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	api := router.Group("/api/v1")
	api.Use(auth.Middleware(cfg.Security.JWTSecret))
	{
		projectHandler.RegisterRoutes(api)
		api.GET("/ws", func(c *gin.Context) {
			hub.HandleConnection(c.Writer, c.Request)
		})
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
