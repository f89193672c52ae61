package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/getsy/restaurant-backend/internal/api/handler"
	"github.com/getsy/restaurant-backend/internal/config"
	"github.com/getsy/restaurant-backend/internal/db"
	"github.com/getsy/restaurant-backend/internal/db/repository"
	"github.com/getsy/restaurant-backend/internal/router"
	"github.com/getsy/restaurant-backend/internal/service"
	"github.com/getsy/restaurant-backend/internal/websockets"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if err := config.ConfigureLogger(cfg.Log); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logger")
	}

	location, err := time.LoadLocation(cfg.Reservations.Timezone)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load reservation timezone")
	}

	// Initialize database
	database, err := db.NewPostgres(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close()

	// Run database migrations
	if err := database.Migrate(cfg.Database); err != nil {
		logrus.WithError(err).Fatal("Failed to run database migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos := repository.NewRepositories(database.DB)
	restaurantService := service.NewRestaurantService(repos)

	// Initialize WebSocket hub
	hub := websockets.NewHub(restaurantService)
	go hub.Run(ctx)

	notifier := service.NewNotifier(cfg.Twilio)

	authService := service.NewAuthService(repos, service.JWTConfig{
		Secret:    cfg.JWT.Secret,
		ExpiresIn: cfg.JWT.ExpiresIn,
	}, notifier)
	reservationService := service.NewReservationService(repos, notifier, hub, cfg.Reservations.EnforceCapacity)

	scheduler := service.NewScheduler(reservationService, location)
	if err := scheduler.Start(cfg.Reservations.CompletionSchedule); err != nil {
		logrus.WithError(err).Fatal("Failed to start scheduler")
	}
	defer scheduler.Stop()

	r := router.New(router.Handlers{
		Restaurants:  handler.NewRestaurantHandler(restaurantService),
		Events:       handler.NewEventHandler(service.NewEventService(repos)),
		Reservations: handler.NewReservationHandler(reservationService),
		Reviews:      handler.NewReviewHandler(service.NewReviewService(repos)),
		Users:        handler.NewUserHandler(authService),
		Roles:        handler.NewRoleHandler(service.NewRoleService(repos)),
		WebSocket:    handler.NewWebSocketHandler(hub, cfg.Server.AllowedOrigins),
	}, authService, cfg.Server.AllowedOrigins, database.HealthCheck)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithField("address", cfg.Server.Address).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("Server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
		os.Exit(1)
	}

	logrus.Info("Server exited properly")
}
