package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bhuvi12a/expense-tracker/internal/auth"
	"github.com/bhuvi12a/expense-tracker/internal/finance/interfaces"
	"github.com/bhuvi12a/expense-tracker/internal/user"
	"github.com/sirupsen/logrus"
)

type Response struct {
	Message string `json:"message"`
}

type healthChecker interface {
	Health(ctx context.Context) map[string]string
}

type Server struct {
	router         *http.ServeMux
	authHandler    *auth.Handler
	userHandler    *user.Handler
	authService    auth.Service
	expenseHandler *interfaces.ExpenseHandler
	incomeHandler  *interfaces.IncomeHandler
	statsHandler   *interfaces.StatsHandler
	db             healthChecker
	logger         *logrus.Logger
}

func NewServer(
	authHandler *auth.Handler,
	authService auth.Service,
	userHandler *user.Handler,
	expenseHandler *interfaces.ExpenseHandler,
	incomeHandler *interfaces.IncomeHandler,
	statsHandler *interfaces.StatsHandler,
	db healthChecker,
	logger *logrus.Logger,
) *Server {
	return &Server{
		authHandler:    authHandler,
		authService:    authService,
		userHandler:    userHandler,
		expenseHandler: expenseHandler,
		incomeHandler:  incomeHandler,
		statsHandler:   statsHandler,
		db:             db,
		logger:         logger,
		router:         http.NewServeMux(),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(logger *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		entry := logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Error("Request failed")
			return
		}
		entry.Info("Request completed")
	})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	interfaces.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.db.Health(r.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		s.logger.WithField("error", stats["error"]).Warn("Health check failed")
		status = http.StatusServiceUnavailable
	}
	interfaces.RespondJSON(w, status, stats)
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.HandleFunc("POST /api/register", s.userHandler.HandleRegister)
	publicRoutes.HandleFunc("POST /api/auth/login", s.authHandler.HandleLogin)
	publicRoutes.HandleFunc("POST /api/auth/2fa/verify", s.authHandler.HandleVerifyTwoFactor)
	publicRoutes.HandleFunc("POST /api/auth/logout", s.authHandler.HandleLogout)
	publicRoutes.HandleFunc("POST /api/password-reset/request", s.authHandler.RequestPasswordResetHandler)
	publicRoutes.HandleFunc("POST /api/password-reset/confirm", s.authHandler.ResetPasswordHandler)
	publicRoutes.HandleFunc("GET /api/ready", s.handleReady)
	publicRoutes.HandleFunc("GET /api/health", s.handleHealth)
	publicRoutes.HandleFunc("/", notFoundHandler)

	// Protected routes (using JWT Access Token Middleware)
	protected := s.authService.JWTAccessTokenMiddleware()
	protectedRoutes := http.NewServeMux()

	protectedRoutes.Handle("GET /api/protected/profile", protected(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))
	protectedRoutes.Handle("PUT /api/protected/profile", protected(http.HandlerFunc(s.userHandler.HandleUpdateProfile)))
	protectedRoutes.Handle("POST /api/protected/change-password", protected(http.HandlerFunc(s.userHandler.HandleChangePassword)))

	protectedRoutes.Handle("POST /api/protected/2fa/register",
		protected(http.HandlerFunc(s.authHandler.HandleRegisterTwoFactor)))
	protectedRoutes.Handle("POST /api/protected/2fa/verify-registration",
		protected(http.HandlerFunc(s.authHandler.HandleVerifyTwoFactorRegistration)))
	protectedRoutes.Handle("DELETE /api/protected/2fa/disable",
		protected(http.HandlerFunc(s.authHandler.HandleDisableTwoFactor)))

	// EXPENSES API
	protectedRoutes.Handle("POST /api/protected/expenses", protected(http.HandlerFunc(s.expenseHandler.CreateExpense)))
	protectedRoutes.Handle("POST /api/protected/expenses/batch", protected(http.HandlerFunc(s.expenseHandler.ImportExpenses)))
	protectedRoutes.Handle("GET /api/protected/expenses", protected(http.HandlerFunc(s.expenseHandler.ListExpenses)))
	protectedRoutes.Handle("GET /api/protected/expenses/{expenseID}",
		protected(interfaces.ValidatePathParamsMiddleware(s.logger, http.HandlerFunc(s.expenseHandler.GetExpense), "expenseID")))
	protectedRoutes.Handle("PUT /api/protected/expenses/{expenseID}",
		protected(interfaces.ValidatePathParamsMiddleware(s.logger, http.HandlerFunc(s.expenseHandler.UpdateExpense), "expenseID")))
	protectedRoutes.Handle("DELETE /api/protected/expenses/{expenseID}",
		protected(interfaces.ValidatePathParamsMiddleware(s.logger, http.HandlerFunc(s.expenseHandler.DeleteExpense), "expenseID")))

	// INCOME API
	protectedRoutes.Handle("GET /api/protected/income", protected(http.HandlerFunc(s.incomeHandler.GetIncome)))
	protectedRoutes.Handle("PUT /api/protected/income", protected(http.HandlerFunc(s.incomeHandler.SetIncome)))
	protectedRoutes.Handle("PUT /api/protected/income/salary", protected(http.HandlerFunc(s.incomeHandler.SetSalary)))
	protectedRoutes.Handle("PUT /api/protected/income/other", protected(http.HandlerFunc(s.incomeHandler.SetOtherIncome)))
	protectedRoutes.Handle("GET /api/protected/debt", protected(http.HandlerFunc(s.incomeHandler.GetDebt)))
	protectedRoutes.Handle("PUT /api/protected/debt", protected(http.HandlerFunc(s.incomeHandler.SetDebt)))

	// STATS API
	protectedRoutes.Handle("GET /api/protected/stats", protected(http.HandlerFunc(s.statsHandler.GetStats)))
	protectedRoutes.HandleFunc("/", notFoundHandler)

	// Refresh token routes
	refreshTokenRoutes := http.NewServeMux()
	refreshTokenRoutes.Handle("PUT /api/refresh/token", s.authService.JWTRefreshTokenMiddleware()(http.HandlerFunc(s.authHandler.RefreshAccessToken)))
	refreshTokenRoutes.HandleFunc("/", notFoundHandler)

	// Admin routes, guarded by the Admin-Key header
	adminRoutes := http.NewServeMux()
	adminRoutes.Handle("POST /api/admin/reset-all-passwords", s.authService.AdminKeyMiddleware()(http.HandlerFunc(s.authHandler.HandleResetAllPasswords)))
	adminRoutes.HandleFunc("/", notFoundHandler)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/api/refresh/", refreshTokenRoutes)
	mainRouter.Handle("/api/admin/", adminRoutes)
	mainRouter.HandleFunc("/", notFoundHandler)

	s.router = mainRouter
}

func (s *Server) Handler() http.Handler {
	return loggingMiddleware(s.logger, s.router)
}
