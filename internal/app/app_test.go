package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/cache"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/logging"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/storage"
)

// newTestApp wires the application over in-memory SQLite, storage and cache.
func newTestApp(t *testing.T) *App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(model.All()...))

	cfg := config.Load()
	cfg.Auth.JWTSecret = strings.Repeat("k", 32)

	a := &App{Config: cfg, Log: logging.Discard(), DB: sqlDB, Gorm: db}
	a.wire(storage.NewMemory("http://files.test"), cache.NewMemoryCache())
	t.Cleanup(a.Close)
	return a
}

func TestWireWithoutRedis(t *testing.T) {
	a := newTestApp(t)

	assert.Nil(t, a.Redis)
	assert.Nil(t, a.asynqClient)
	assert.NotNil(t, a.Tokens)
	assert.NotNil(t, a.Tasks)

	s := a.Services
	for name, svc := range map[string]any{
		"auth": s.Auth, "users": s.Users, "social": s.Social, "tags": s.Tags,
		"articles": s.Articles, "courses": s.Courses, "reactions": s.Reactions,
		"certificates": s.Certificates, "companies": s.Companies, "payments": s.Payments,
		"search": s.Search, "tips": s.Tips, "videos": s.Videos, "ovh": s.OVH,
		"media": s.Media, "notifications": s.Notifications,
	} {
		assert.NotNil(t, svc, name)
	}
}

func TestWiredServicesShareStore(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	// Registration enqueues the verification email; without Redis it runs inline.
	u, err := a.Services.Auth.Register(ctx, service.RegisterInput{
		FullName: "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	admin, err := a.Services.Users.PromoteByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	actor := auth.Principal{UserID: admin.ID, Email: admin.Email, Role: admin.Role}
	tag, err := a.Services.Tags.Create(ctx, actor, service.TagInput{Name: "go"})
	require.NoError(t, err)

	tags, err := a.Services.Tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, tag.ID, tags[0].ID)
}

func TestRedisOpt(t *testing.T) {
	a := &App{Config: &config.AppConfig{Redis: config.RedisConfig{Addr: "redis:6379", Password: "pw", DB: 2}}}
	opt := a.RedisOpt()
	assert.Equal(t, "redis:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)
}
