package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/infinitystorm/server/internal/api/handler"
	"github.com/infinitystorm/server/internal/api/middleware"
	"github.com/infinitystorm/server/internal/config"
	"github.com/infinitystorm/server/internal/db"
	"github.com/infinitystorm/server/internal/engine"
	"github.com/infinitystorm/server/internal/gamesession"
	"github.com/infinitystorm/server/internal/infra/cache"
	"github.com/infinitystorm/server/internal/infra/repository"
	"github.com/infinitystorm/server/internal/pkg/logger"
	"github.com/infinitystorm/server/internal/rng"
	"github.com/infinitystorm/server/internal/server"
	syncengine "github.com/infinitystorm/server/internal/sync"
	"github.com/infinitystorm/server/internal/transport/cascadesync"
	"github.com/infinitystorm/server/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	gormDB, err := db.NewGormDB(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	redisClient, err := cache.NewRedisClient(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	walletRepo := repository.NewWalletGormRepository(gormDB)
	sessionRepo := repository.NewGameSessionGormRepository(gormDB)
	spinResultRepo := repository.NewSpinResultGormRepository(gormDB)

	walletService := wallet.NewService(walletRepo, log)
	hashChain := rng.NewHashChain()
	gridEngine := engine.NewGridEngine()
	gridEngine.GoldEnabled = cfg.Game.GoldVariantsEnabled
	gridEngine.WildEnabled = cfg.Game.WildVariantsEnabled
	spinCache := cache.NewSpinCache(redisClient, log)
	txManager := repository.NewTxManager(gormDB)

	sessionService := gamesession.NewService(sessionRepo, spinResultRepo, walletService, gridEngine, hashChain, spinCache, txManager, log, cfg.Game)

	synchronizer := syncengine.NewSynchronizer(cfg.Sync.MaxRetries, log)
	var redisBus *cache.RedisBus
	var desyncBus cascadesync.DesyncBus
	if redisClient != nil {
		redisBus = cache.NewRedisBus(redisClient.GetClient(), log)
		desyncBus = redisBus
	}
	cascadeHandler := cascadesync.NewHandler(synchronizer, spinCache, desyncBus, log)

	authHandler := handler.NewAuthHandler(cfg.JWT.Secret, cfg.JWT.ExpirationHours, log)
	spinHandler := handler.NewSpinHandler(sessionService, log)
	walletHandler := handler.NewWalletHandler(walletService, sessionService, log)
	fairnessHandler := handler.NewFairnessHandler(log)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		AuthRPS:   cfg.RateLimit.SpinLimit,
		PublicRPS: cfg.RateLimit.GeneralLimit,
	}, log)

	app := server.NewFiberApp(cfg, log)
	server.SetupRoutes(app, cfg, log, rateLimiter, authHandler, spinHandler, walletHandler, fairnessHandler, cascadeHandler)

	go func() {
		log.Info().Str("addr", cfg.App.Addr).Msg("server listening")
		if err := app.Listen(cfg.App.Addr); err != nil {
			log.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("fiber shutdown error")
	}
	if redisBus != nil {
		_ = redisBus.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := db.Close(gormDB, log); err != nil {
		log.Error().Err(err).Msg("database close error")
	}

	log.Info().Msg("server stopped")
}
