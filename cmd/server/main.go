package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tanakrit/postboard-backend/internal/auth"
	"github.com/tanakrit/postboard-backend/internal/config"
	"github.com/tanakrit/postboard-backend/internal/logging"
	"github.com/tanakrit/postboard-backend/internal/middleware"
	"github.com/tanakrit/postboard-backend/internal/posts"
	"github.com/tanakrit/postboard-backend/internal/store"
	"github.com/tanakrit/postboard-backend/internal/upload"
	"github.com/tanakrit/postboard-backend/internal/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}
	cfg := config.Load()
	if cfg.TokenSecret == "" {
		log.Fatal("ACCESS_TOKEN_SECRET must be set")
	}
	secret := []byte(cfg.TokenSecret)
	ctx := context.Background()

	logger, err := logging.New(cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("postgres connect", zap.Error(err))
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		logger.Fatal("postgres migrate", zap.Error(err))
	}

	// ── MinIO ────────────────────────────────────────────────
	minioStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Fatal("minio connect", zap.Error(err))
	}

	// ── Handlers ─────────────────────────────────────────────
	uploadHandler := upload.NewHandler(minioStore, logger)
	authHandler := auth.NewHandler(pgStore, secret, logger)
	postHandler := posts.NewHandler(pgStore, uploadHandler, logger)
	userHandler := users.NewHandler(pgStore, uploadHandler, logger)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public routes
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Get("/uploads/{file}", uploadHandler.Serve)

	// Post routes (protected)
	r.Route("/api/posts", func(r chi.Router) {
		r.Use(middleware.RequireAuth(secret))
		r.Post("/", postHandler.Create)
		r.Get("/", postHandler.List)
		r.Put("/{id}", postHandler.Update)
		r.Delete("/{id}", postHandler.Delete)
	})

	// Profile routes (protected)
	r.With(middleware.RequireAuth(secret)).Post("/updateProfile", userHandler.UpdateProfile)
	r.With(middleware.RequireAuth(secret)).Get("/account", userHandler.Account)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
