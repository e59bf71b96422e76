// Command server runs the entity intake service: the step wizard, the
// approval workflow API, and the notification worker.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	authhandler "intake/internal/auth/handler"
	documenthandler "intake/internal/document/handler"
	documentservice "intake/internal/document/service"
	"intake/internal/document/storage"
	entitycache "intake/internal/entity/cache"
	entityhandler "intake/internal/entity/handler"
	entitymetrics "intake/internal/entity/metrics"
	entityservice "intake/internal/entity/service"
	entitypostgres "intake/internal/entity/store/postgres"
	"intake/internal/jwtauth"
	"intake/internal/notify"
	"intake/internal/platform/config"
	"intake/internal/platform/httpserver"
	"intake/internal/platform/logger"
	platformmetrics "intake/internal/platform/metrics"
	"intake/internal/platform/postgres"
	platformredis "intake/internal/platform/redis"
	transporthttp "intake/internal/transport/http"
	wizardhandler "intake/internal/wizard/handler"
	wizardservice "intake/internal/wizard/service"
	wizardstore "intake/internal/wizard/store"
)

func main() {
	log := logger.New()
	cfg := config.FromEnv()

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	blobs, err := storage.NewFS(cfg.DocumentDir)
	if err != nil {
		return err
	}

	metrics := platformmetrics.New()
	entityMetrics := entitymetrics.New()

	publisher := notify.NewPublisher(log)
	var emitter notify.Emitter = notify.NewLogEmitter(log)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaEmitter, err := notify.NewKafkaEmitter(cfg.KafkaBrokers, cfg.NotifyTopic)
		if err != nil {
			return err
		}
		defer kafkaEmitter.Close()
		emitter = kafkaEmitter
	}

	entityStore := entitypostgres.New(db)
	cache := entitycache.NewRedis(redisClient.Client, cfg.EntityCacheTTL)
	sessions := wizardstore.NewRedis(redisClient.Client)

	entitySvc := entityservice.NewService(entityStore, cache, publisher, blobs, log, entityMetrics)
	wizardSvc := wizardservice.NewService(sessions, entityStore, cache, cfg.SessionTTL, log, metrics, entityMetrics)
	documentSvc := documentservice.NewService(blobs, entitySvc, log)

	jwtSvc := jwtauth.NewService(cfg.JWTSigningKey, "intake", "intake-api")

	router := transporthttp.NewRouter(transporthttp.RouterConfig{
		Logger:  log,
		Metrics: metrics,
		HealthChecks: []transporthttp.HealthCheck{
			{Name: "postgres", Check: func(ctx context.Context) error { return postgres.Health(ctx, db) }},
			{Name: "redis", Check: redisClient.Health},
		},
		JSON: []transporthttp.Registrar{
			authhandler.New(jwtSvc, log, cfg.ApproverClient, cfg.ApproverSecretHash, cfg.TokenTTL),
			wizardhandler.New(wizardSvc, log),
			entityhandler.New(entitySvc, log, jwtSvc),
		},
		Multipart: []transporthttp.Registrar{
			documenthandler.New(documentSvc, log, jwtSvc),
		},
	})

	server := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker := notify.NewWorker(publisher.Queue(), emitter, log)
		return worker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
