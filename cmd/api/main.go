package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/docs"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/app"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	handlers "github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/http/handler"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/http/middleware"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/logging"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/otel"
)

const shutdownTimeout = 15 * time.Second

// @title Zerofiltre Blog API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(cfg.Log, cfg.Location())
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("configuration rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "zerofiltre-api", log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracing")
	}

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build application")
	}
	defer a.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register metrics")
	}

	server := fiber.New(fiber.Config{
		AppName:               "zerofiltre-api",
		ErrorHandler:          handlers.ErrorHandler(log),
		BodyLimit:             int(cfg.MaxUploadBytes) + 1<<20,
		DisableStartupMessage: true,
	})

	server.Use(recover.New())
	server.Use(cors.New())
	server.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	server.Use(middleware.RequestID())
	server.Use(middleware.Logger(log))
	server.Use(metrics.Handler())

	handlers.RegisterRoutes(server, handlers.Deps{
		DB:       a.DB,
		Tokens:   a.Tokens,
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Files:    a.LocalFiles,
		Services: a.Services,
	})

	// Swagger UI with dynamic host and scheme
	server.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("api listening")
		errCh <- server.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server stopped")
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	flush(shutdownCtx, shutdownTracing, log)
}

func flush(ctx context.Context, shutdown otel.ShutdownFunc, log logrus.FieldLogger) {
	if err := shutdown(ctx); err != nil {
		log.WithError(err).Warn("tracing shutdown")
	}
}
