package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamgate/internal/cache"
	"streamgate/internal/config"
	"streamgate/internal/logging"
	"streamgate/internal/ratelimit"
	"streamgate/internal/repository"
	"streamgate/internal/service"
	"streamgate/internal/telemetry"
	"streamgate/internal/transport/rest"
	"streamgate/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	log := logging.NewLogger("streamgate-api", cfg.LogLevel)

	if err := telemetry.InitSentry(cfg.SentryDSN, cfg.Release); err != nil {
		log.WithError(err).Warn("error reporting disabled")
	}
	defer telemetry.Flush()

	if cfg.JWTSecretGenerated {
		log.Warn("JWT_SECRET not set; using a random per-process secret, admin tokens will not survive a restart")
	}
	if !cfg.AdminConfigured() {
		log.Warn("ADMIN_PASSWORD / ADMIN_PASSWORD_HASH not set; admin login is disabled")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.WithError(err).Fatal("failed to ping MongoDB")
	}
	log.WithField("db", cfg.MongoDB).Info("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)
	if err := repository.EnsureAccessCodeIndexes(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to create access code indexes")
	}

	// Redis is optional: without it limiter state and markers stay in memory
	// and are lost on restart.
	var (
		attempts ratelimit.Store    = ratelimit.NewMemoryStore()
		markers  cache.SessionCache = cache.NewMemorySessionCache()
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.WithError(err).Fatal("failed to ping Redis")
		}
		attempts = cache.NewAttemptCache(rdb)
		markers = cache.NewSessionCache(rdb)
		log.WithField("addr", cfg.RedisAddr).Info("connected to Redis")
	} else {
		log.Warn("REDIS_URI not set, using in-memory limiter and marker cache")
	}

	pinLimiter := ratelimit.New(attempts, policy("pin", cfg.PinLimit))
	adminLimiter := ratelimit.New(attempts, policy("admin", cfg.AdminLimit))

	wsHub := ws.NewHub(log.WithField("component", "ws"))

	// Repositories
	codeRepo := repository.NewAccessCodeRepo(db)

	// Services
	accessSvc := service.NewAccessService(codeRepo, markers, pinLimiter, log.WithField("component", "access"))
	accessSvc.SetBroadcaster(wsHub)
	authSvc := service.NewAuthService(cfg, adminLimiter, log.WithField("component", "admin-auth"))
	pinSvc := service.NewPinService(codeRepo, accessSvc, log.WithField("component", "pins"))
	catalogSvc := service.NewCatalogService(
		repository.NewMovieRepo(db),
		repository.NewShowRepo(db),
		repository.NewLiveChannelRepo(db),
		repository.NewBackgroundRepo(db),
		repository.NewSettingsRepo(db),
		codeRepo,
		log.WithField("component", "catalog"),
	)

	router := rest.NewRouter(&rest.Container{
		Config:         cfg,
		AccessService:  accessSvc,
		AuthService:    authSvc,
		PinService:     pinSvc,
		CatalogService: catalogSvc,
		WSHub:          wsHub,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("ListenAndServe")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("server exited")
}

func policy(name string, lc config.LimitConfig) ratelimit.Policy {
	return ratelimit.Policy{Name: name, MaxAttempts: lc.MaxAttempts, Window: lc.Window}
}
