// Package main boots the task tracking API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/ncore/config"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/tasktrack/data"
	"github.com/ncobase/tasktrack/handler"
	"github.com/ncobase/tasktrack/middleware"
	"github.com/ncobase/tasktrack/service"
)

const defaultDatabase = "tasktrack"

// App represents the main application.
type App struct {
	config  *config.Config
	logger  *logger.Logger
	data    *data.Data
	handler *handler.Handler
	server  *http.Server
}

// NewApp creates a new application instance with manual dependency injection.
func NewApp() (*App, func(), error) {
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, nil, err
	}

	cleanup1, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log := logger.StdLogger()

	mongoURI := cfg.Data.Database.Master.Source
	dataLayer, err := data.New(mongoURI, databaseName(mongoURI), log)
	if err != nil {
		cleanup1()
		return nil, nil, fmt.Errorf("failed to create data layer: %w", err)
	}

	svc := service.NewService(dataLayer, cfg, log)
	h := handler.New(svc, log)

	app := &App{
		config:  cfg,
		logger:  log,
		data:    dataLayer,
		handler: h,
	}

	cleanup := func() {
		if err := dataLayer.Close(); err != nil {
			log.Error(context.Background(), "failed to close data layer", "error", err)
		}
		cleanup1()
	}

	return app, cleanup, nil
}

// validateConfig rejects a configuration the server cannot run with. A
// missing signing secret would silently issue forgeable tokens, so it is a
// startup error rather than a runtime fallback.
func validateConfig(cfg *config.Config) error {
	if cfg.Data == nil || cfg.Data.Database == nil || cfg.Data.Database.Master == nil ||
		cfg.Data.Database.Master.Source == "" {
		return errors.New("data.database.master.source is required")
	}
	if cfg.Auth == nil || cfg.Auth.JWT == nil || cfg.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret is required")
	}
	return nil
}

// databaseName extracts the database from the connection string path,
// falling back to a default when the URI does not name one.
func databaseName(source string) string {
	u, err := url.Parse(source)
	if err != nil {
		return defaultDatabase
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return defaultDatabase
	}
	return name
}

// Run starts the application server.
func (a *App) Run() error {
	if a.config.Environment != "" {
		if a.config.IsProd() {
			gin.SetMode(gin.ReleaseMode)
		} else {
			gin.SetMode(gin.DebugMode)
		}
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(a.logger))

	a.handler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	addr := fmt.Sprintf("%s:%d", a.config.Host, a.config.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		a.logger.Info(context.Background(), "Starting server", "addr", addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(context.Background(), "Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info(context.Background(), "Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error(ctx, "Server forced to shutdown", "error", err)
		return err
	}

	a.logger.Info(context.Background(), "Server exited")
	return nil
}

func main() {
	app, cleanup, err := NewApp()
	if err != nil {
		fmt.Printf("Failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		fmt.Printf("Failed to run app: %v\n", err)
		os.Exit(1)
	}
}
