// @title                       DevConnector API
// @version                     1.0
// @description                 Developer profiles, posts and the session model behind them.
// @BasePath                    /
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        x-auth-token
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/devconnector/connector-api/docs"
	"github.com/devconnector/connector-api/internal/api"
	"github.com/devconnector/connector-api/internal/core/service"
	"github.com/devconnector/connector-api/internal/infrastructure/db/mongo"
	"github.com/devconnector/connector-api/internal/infrastructure/db/redis"
	"github.com/devconnector/connector-api/internal/infrastructure/github"
	"github.com/devconnector/connector-api/internal/infrastructure/http/handlers"
	"github.com/devconnector/connector-api/internal/infrastructure/queue"
	"github.com/devconnector/connector-api/internal/pkg/config"
	"github.com/devconnector/connector-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Pretty(),
		Service: "connector-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Activity log ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, mongo.NewActivityRepository(db), logger.Component("activity"))
	dispatcher.Start(workerCtx)

	// --- Core services ---
	users := mongo.NewUserRepository(db)
	profiles := mongo.NewProfileRepository(db)
	posts := mongo.NewPostRepository(db)

	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL, redis.NewRevocationStore(rdb))
	repos := github.NewClient(
		github.Config{BaseURL: cfg.GitHub.BaseURL, Token: cfg.GitHub.Token},
		redis.NewRepoCache(rdb, cfg.GitHub.CacheTTL),
		logger.Component("github"),
	)

	e := api.NewRouter(api.Dependencies{
		Auth:     service.NewAuthService(users, tokens, tokens, dispatcher, logger.Component("auth")),
		Profiles: service.NewProfileService(profiles, posts, users, tokens, repos, dispatcher, logger.Component("profile")),
		Posts:    service.NewPostService(posts, users, dispatcher, logger.Component("post")),
		Verifier: tokens,
		Readiness: map[string]handlers.Pinger{
			"mongodb": handlers.MongoPinger(db),
			"redis":   handlers.RedisPinger(rdb),
		},
		Log: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("shutdown complete")
}
