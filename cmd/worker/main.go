package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/app"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/logging"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/otel"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/worker"
)

// The worker consumes the asynq queues (emails, tip refresh) and runs the periodic
// tip scheduler. It needs REDIS_ADDR.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.Log, cfg.Location())
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("configuration rejected")
	}
	if cfg.Redis.Addr == "" {
		log.Fatal("REDIS_ADDR is required by the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "zerofiltre-worker", log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.WithError(err).Warn("tracing shutdown")
		}
	}()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build application")
	}
	defer a.Close()

	redisOpt := a.RedisOpt()
	srv := worker.NewServer(redisOpt, cfg.WorkerConcurrency, log)
	scheduler, err := worker.NewScheduler(redisOpt, cfg.TipRefreshCron, cfg.Location(), log)
	if err != nil {
		log.WithError(err).Fatal("failed to create scheduler")
	}

	if err := srv.Start(a.Tasks.Mux()); err != nil {
		log.WithError(err).Fatal("failed to start worker")
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		log.WithError(err).Fatal("failed to start scheduler")
	}
	log.WithField("cron", cfg.TipRefreshCron).Info("worker running")

	<-ctx.Done()
	log.Info("shutting down")
	scheduler.Shutdown()
	srv.Shutdown()
}
