package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/fxjournal/journal-api/internal/auth"
	"github.com/fxjournal/journal-api/internal/config"
	"github.com/fxjournal/journal-api/internal/database"
	"github.com/fxjournal/journal-api/internal/journal"
	"github.com/fxjournal/journal-api/internal/settings"
	"github.com/fxjournal/journal-api/internal/uploads"
	"github.com/fxjournal/journal-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// init configures the application logging based on environment settings.
// In development mode, it enables pretty printing with timestamps.
func init() {
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the journal API server with graceful shutdown
// support.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.Logger.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	router := gin.Default()

	// Initialize services and handlers
	authService := auth.NewService(cfg.Auth.JWTSecret)
	authHandlers := auth.NewGinHandlers(authService)
	if cfg.Auth.APIKey != "" {
		authService.RegisterAPICredentials(cfg.Auth.APIKey, cfg.Auth.APISecret)
	}

	journalService := journal.NewService(db)
	journalHandlers := journal.NewGinHandlers(journalService)

	uploadService := uploads.NewService(cfg.Media)
	uploadHandlers := uploads.NewGinHandlers(uploadService)

	themeStore, err := settings.NewStore(cfg.Settings.Path, nil)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load settings")
	}
	settingsHandlers := settings.NewGinHandlers(themeStore)

	// Setup middleware
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit())

	setupRoutes(router, cfg.Auth.JWTSecret, authHandlers, journalHandlers, uploadHandlers, settingsHandlers)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures all API endpoints and their handlers. Reads are
// public; mutating journal routes and the upload ticket require a JWT.
func setupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authHandlers *auth.GinHandlers,
	journalHandlers *journal.GinHandlers,
	uploadHandlers *uploads.GinHandlers,
	settingsHandlers *settings.GinHandlers,
) {
	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/token", authHandlers.GenerateTokenHandler())
		}

		trades := api.Group("/trades")
		{
			trades.GET("", journalHandlers.ListTradesHandler())
			trades.GET("/stats", journalHandlers.StatsHandler())

			protected := trades.Group("")
			protected.Use(middleware.JWTAuth(jwtSecret))
			{
				protected.POST("", journalHandlers.CreateTradeHandler())
				protected.GET("/signature", uploadHandlers.SignatureHandler())
				protected.PATCH("/:trade_id", journalHandlers.UpdateTradeHandler())
				protected.DELETE("/:trade_id", journalHandlers.DeleteTradeHandler())
			}

			trades.GET("/:trade_id", journalHandlers.GetTradeHandler())
		}

		settingsGroup := api.Group("/settings")
		{
			settingsGroup.GET("/theme", settingsHandlers.GetThemeHandler())
			settingsGroup.PUT("/theme", settingsHandlers.SetThemeHandler())
		}
	}
}
