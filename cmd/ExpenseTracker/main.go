package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	database "github.com/bhuvi12a/expense-tracker/db"
	"github.com/bhuvi12a/expense-tracker/internal/auth"
	"github.com/bhuvi12a/expense-tracker/internal/config"
	emailService "github.com/bhuvi12a/expense-tracker/internal/email"
	"github.com/bhuvi12a/expense-tracker/internal/finance/application"
	"github.com/bhuvi12a/expense-tracker/internal/finance/infrastructure"
	"github.com/bhuvi12a/expense-tracker/internal/finance/interfaces"
	"github.com/bhuvi12a/expense-tracker/internal/user"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Missing configuration, update to start server: %v", err)
	}
	location, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbService, err := database.NewDBService(ctx, cfg.DBConnectionString, logger)
	if err != nil {
		logger.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	if cfg.RunMigrations {
		if err := dbService.RunMigrations(); err != nil {
			logger.Fatalf("Could not migrate database: %v", err)
		}
	}

	newEmailService, err := emailService.NewEmailService(emailService.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	}, logger)
	if err != nil {
		logger.Fatalf("Could not initialize email service: %v", err)
	}
	defer newEmailService.Close()

	authRepo := auth.NewAuthRepository(dbService.DB)
	userRepo := user.NewUserRepository(dbService.DB)

	sessionManager := auth.NewSessionManager()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	authenticator := auth.Authenticator{}

	userService := user.NewUserService(userRepo, newEmailService, logger, cfg.AppURL, cfg.CheckEmailHost)
	userHandler := user.NewHandler(userService, logger)
	authService := auth.NewAuthService(authRepo, userService, sessionManager, jwtManager, newEmailService, authenticator,
		auth.Config{AppURL: cfg.AppURL, AdminKey: cfg.AdminKey}, logger)
	authHandler := auth.NewHandler(authService, logger, cfg.SecureCookies)

	expenseRepo := infrastructure.NewExpenseRepository(dbService.DB)
	settingsRepo := infrastructure.NewSettingsRepository(dbService.DB)

	expenseHandler := interfaces.NewExpenseHandler(application.NewExpenseService(expenseRepo, logger), logger,
		interfaces.RespondJSON, interfaces.RespondError)
	incomeHandler := interfaces.NewIncomeHandler(application.NewIncomeService(settingsRepo, logger), logger,
		interfaces.RespondJSON, interfaces.RespondError)
	statsHandler := interfaces.NewStatsHandler(application.NewStatsService(expenseRepo, settingsRepo, location, logger), logger,
		interfaces.RespondJSON, interfaces.RespondError)

	server := NewServer(authHandler, authService, userHandler, expenseHandler, incomeHandler, statsHandler, dbService, logger)
	server.RegisterRoutes()

	scheduler, err := StartCleanupScheduler(authService, logger)
	if err != nil {
		logger.Fatalf("Scheduler didn't start, stopping the app: %v", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s...", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.WithError(err).Error("Server failed")
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown did not complete")
	}
	<-scheduler.Stop().Done()
	logger.Info("Server stopped")
}
