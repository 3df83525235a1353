package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/service"
	"github.com/campuscare/campuscare/internal/gateway"
	redisbus "github.com/campuscare/campuscare/internal/infrastructure/bus/redis"
	mongodb "github.com/campuscare/campuscare/internal/infrastructure/db/mongo"
	"github.com/campuscare/campuscare/internal/infrastructure/identity/clerk"
	"github.com/campuscare/campuscare/internal/pkg/config"
	"github.com/campuscare/campuscare/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
	defer connectCancel()

	client, db, err := mongodb.Connect(connectCtx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	rdb, err := redisbus.Connect(connectCtx, redisbus.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	provider := clerk.New(clerk.Config{
		SigningKey: cfg.Clerk.SigningKey,
		SecretKey:  cfg.Clerk.SecretKey,
		APIBase:    cfg.Clerk.APIBase,
		Timeout:    cfg.Clerk.Timeout,
	})
	identityRepo := mongodb.NewIdentityRepository(db)
	identityService := service.NewIdentityService(provider, identityRepo, cfg.Clerk.Timeout, log)
	presence := redisbus.NewPresenceStore(rdb)

	hub := gateway.NewHub(log)
	dispatcher := gateway.NewDispatcher(0, hub, log)
	dispatcher.Start(ctx)

	bus := redisbus.NewBus(rdb, log)
	go func() {
		err := bus.Subscribe(ctx, func(channel string, event *domain.Event) {
			dispatcher.Enqueue(channel, event)
		}, domain.PlatformChannel, domain.CampusChannelPattern)
		if err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("bus subscription failed")
		}
	}()

	srv := gateway.NewServer(identityService, presence, hub, cfg.CORSOrigin, log)
	e := gateway.NewRouter(srv, db, rdb)

	go func() {
		log.Info().Str("port", cfg.GatewayPort).Msg("starting socket gateway")
		if err := e.Start(":" + cfg.GatewayPort); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("gateway stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
	log.Info().Msg("stopped")
}
