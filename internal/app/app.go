// Package app assembles the repositories, providers and services shared by the api,
// worker and blogctl binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/cache"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/database"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/database/migration"
	handlers "github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/http/handler"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider/certificate"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider/mail"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider/oauth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider/openai"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider/ovh"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider/payment"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider/vimeo"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository/postgres"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/storage"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/tasks"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/worker"
)

const providerTimeout = 15 * time.Second

// App is the wired application. Redis is nil when REDIS_ADDR is empty, in which case
// caches live in memory and tasks run inline.
type App struct {
	Config     *config.AppConfig
	Log        *logrus.Logger
	DB         *sql.DB
	Gorm       *gorm.DB
	Redis      *redis.Client
	Tokens     *auth.TokenManager
	Services   handlers.Services
	Tasks      *worker.Handlers
	// LocalFiles is the in-process object store, nil when MinIO is configured.
	LocalFiles storage.Storage

	asynqClient *asynq.Client
}

// Build connects to the database, runs pending migrations and wires every service.
func Build(ctx context.Context, cfg *config.AppConfig, log *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.DB = db
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		a.Close()
		return nil, err
	}
	if a.Gorm, err = database.NewGorm(db, log.WithField("component", "gorm"), cfg.Database.LogSQL); err != nil {
		a.Close()
		return nil, err
	}

	var objects storage.Storage
	if cfg.MinIO.Endpoint == "" {
		log.Warn("MINIO_ENDPOINT not set, media and certificates are kept in memory")
		objects = storage.NewMemory(strings.TrimRight(cfg.BaseURL, "/") + "/files")
		a.LocalFiles = objects
	} else if objects, err = storage.NewMinIO(cfg.MinIO); err != nil {
		a.Close()
		return nil, fmt.Errorf("object storage: %w", err)
	}

	var shared cache.Cache
	if cfg.Redis.Addr == "" {
		log.Warn("REDIS_ADDR not set, using in-process cache and inline tasks")
		shared = cache.NewMemoryCache()
	} else {
		if a.Redis, err = cache.NewRedisClient(ctx, cfg.Redis); err != nil {
			a.Close()
			return nil, err
		}
		shared = cache.NewRedisCache(a.Redis, "zerofiltre:")
	}

	a.wire(objects, shared)
	return a, nil
}

// RedisOpt returns the asynq connection for the configured Redis.
func (a *App) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: a.Config.Redis.Addr, Password: a.Config.Redis.Password, DB: a.Config.Redis.DB}
}

func (a *App) wire(objects storage.Storage, shared cache.Cache) {
	cfg, log := a.Config, a.Log
	httpClient := provider.NewHTTPClient(providerTimeout)

	users := postgres.NewUserPostgres(a.Gorm)
	verifications := postgres.NewVerificationTokenPostgres(a.Gorm)
	tags := postgres.NewTagPostgres(a.Gorm)
	articles := postgres.NewArticlePostgres(a.Gorm)
	courses := postgres.NewCoursePostgres(a.Gorm)
	reactions := postgres.NewReactionPostgres(a.Gorm)
	companies := postgres.NewCompanyPostgres(a.Gorm)
	purchases := postgres.NewPurchasePostgres(a.Gorm)
	payments := postgres.NewPaymentPostgres(a.Gorm)
	notificationRepo := postgres.NewNotificationPostgres(a.Gorm)
	media := postgres.NewMediaPostgres(a.DB)
	videos := postgres.NewVideoPostgres(a.Gorm)

	a.Tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	notifications := service.NewNotificationService(notificationRepo, log)
	companySvc := service.NewCompanyService(companies, users, courses, notifications)
	tips := service.NewTipService(openai.New(cfg.OpenAI, httpClient), shared, cfg.Location(), log)

	a.Tasks = worker.NewHandlers(mail.New(cfg.SMTP, log), tips, cfg.BaseURL, log)
	var enqueuer tasks.Enqueuer
	if a.Redis == nil {
		enqueuer = tasks.NewInlineEnqueuer(a.Tasks.Mux())
	} else {
		a.asynqClient = asynq.NewClient(a.RedisOpt())
		enqueuer = tasks.NewAsynqEnqueuer(a.asynqClient)
	}

	gateways := []provider.PaymentGateway{
		payment.NewStripe(cfg.Stripe, httpClient, ""),
		payment.NewNotchPay(cfg.NotchPay, httpClient),
	}
	socials := []provider.SocialProvider{
		oauth.NewGitHub(cfg.GitHub, httpClient),
		oauth.NewStackOverflow(cfg.StackOverflow, httpClient),
	}

	a.Services = handlers.Services{
		Auth:          service.NewAuthService(users, verifications, a.Tokens, enqueuer, cfg.Auth.VerificationTokenTTL, log),
		Users:         service.NewUserService(users, verifications, log),
		Social:        service.NewSocialLoginService(users, socials, a.Tokens, log),
		Tags:          service.NewTagService(tags),
		Articles:      service.NewArticleService(articles, tags, notifications, log),
		Courses:       service.NewCourseService(courses, tags, purchases, companySvc, notifications, strings.ToUpper(cfg.Stripe.Currency), log),
		Reactions:     service.NewReactionService(reactions, articles, courses, notifications),
		Certificates:  service.NewCertificateService(purchases, users, courses, objects, certificate.NewRenderer(), log),
		Companies:     companySvc,
		Payments:      service.NewPaymentService(payments, purchases, courses, gateways, notifications, log),
		Search:        service.NewSearchService(articles, courses, tags, shared, cfg.SearchCacheTTL, log),
		Tips:          tips,
		Videos:        service.NewVideoService(vimeo.New(cfg.Vimeo, httpClient), videos, log),
		OVH:           service.NewOVHService(ovh.New(cfg.OVH, httpClient)),
		Media:         service.NewMediaService(objects, media, cfg.MaxUploadBytes, log),
		Notifications: notifications,
	}
}

// Close releases the connections opened by Build.
func (a *App) Close() {
	if a.asynqClient != nil {
		_ = a.asynqClient.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
