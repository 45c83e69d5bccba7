// ATARES server entry point: loads configuration, connects the database,
// wires services and handlers, and runs the HTTP server with graceful
// shutdown.
//
// @title ATARES API
// @version 1.0
// @description Skin analysis web application: session authentication, AI-backed acne detection, and analysis history.
// @BasePath /
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/Wirandy/ATARES/analysis"
	"github.com/Wirandy/ATARES/apperror"
	"github.com/Wirandy/ATARES/auth"
	"github.com/Wirandy/ATARES/config"
	"github.com/Wirandy/ATARES/db"
	_ "github.com/Wirandy/ATARES/docs" // generated swagger spec
	"github.com/Wirandy/ATARES/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Auth.UsingFallbackSecret {
		// The fallback keeps local development friction-free but makes
		// every session forgeable. Loud warning, no silent fixup.
		logger.Warn("JWT_SECRET is not set; using the development fallback secret (do not run this in production)")
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		logger.Fatal("failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Session primitives: one issuer/validator pair shared by the
	// gatekeeper, the API middleware, and the auth endpoints.
	tokens := auth.NewTokenManager(cfg.Auth)
	cookies := auth.CookieSettings{Secure: cfg.Auth.CookieSecure, MaxAge: cfg.Auth.TokenTTL}

	gatekeeper, err := auth.NewGatekeeper(tokens, auth.DefaultProtectedPrefixes, auth.DefaultPublicPaths)
	if err != nil {
		logger.Fatal("invalid gatekeeper path configuration", zap.Error(err))
	}

	authService := auth.NewAuthService(pool, logger)
	authHandlers := auth.NewHandlers(authService, tokens, cookies, logger)

	userService := users.NewUserService(pool)
	userHandlers := users.NewUserHandlers(userService)

	analysisService := analysis.NewAnalysisService(pool, logger)
	detector := analysis.NewDetectorClient(cfg.Analysis, logger)
	analysisHandlers := analysis.NewHandlers(analysisService, detector, cfg.Analysis.UploadDir, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(panicRecovery(logger))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Auth endpoints. Logout needs no valid session.
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
		r.Post("/logout", authHandlers.HandleLogout())
	})

	// Protected API. RequireSession validates the cookie and injects the
	// caller identity; handlers re-check it before touching storage.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(tokens, logger))

		r.Get("/api/users/me", userHandlers.HandleMe())
		r.Post("/api/analysis/save", analysisHandlers.HandleSave())
		r.Post("/api/analysis/detect", analysisHandlers.HandleDetect())
		r.Get("/api/history", analysisHandlers.HandleHistory())
	})

	// Stored images.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.Analysis.UploadDir))))

	// Page routes go through the gatekeeper: unauthenticated requests for
	// /dashboard/* bounce to /login, authenticated requests for the
	// public-only pages bounce to /dashboard.
	r.Group(func(r chi.Router) {
		r.Use(gatekeeper.Middleware())

		r.Get("/", servePage("index.html"))
		r.Get("/login", servePage("login.html"))
		r.Get("/register", servePage("register.html"))
		r.Get("/dashboard", servePage("dashboard.html"))
		r.Get("/dashboard/*", servePage("dashboard.html"))
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}

// newLogger picks the zap preset matching the deployment environment.
func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	if cfg.Auth.CookieSecure {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// requestLogger logs one structured line per request.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// panicRecovery turns a handler panic into a well-formed 500 body instead of
// a dropped connection. Replaces chi's Recoverer so the error shape matches
// the rest of the API.
func panicRecovery(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic while handling request",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
					)
					auth.WriteError(w, r, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// servePage returns a handler serving one file from the web directory.
func servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join("web", name))
	}
}
