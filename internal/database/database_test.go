package database

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/logging"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
)

func TestBuildPostgresDSN(t *testing.T) {
	base := func() config.DatabaseConfig {
		return config.DatabaseConfig{Host: "db", Port: "5432", User: "blog", Password: "s3cret", Name: "zerofiltre", SSLMode: "disable"}
	}
	tests := []struct {
		name   string
		mutate func(*config.DatabaseConfig)
		want   string
	}{
		{"full", func(*config.DatabaseConfig) {}, "postgres://blog:s3cret@db:5432/zerofiltre?sslmode=disable"},
		{"no password", func(c *config.DatabaseConfig) { c.Password = "" }, "postgres://blog@db:5432/zerofiltre?sslmode=disable"},
		{"no sslmode", func(c *config.DatabaseConfig) { c.SSLMode = "" }, "postgres://blog:s3cret@db:5432/zerofiltre"},
		{"password escaped", func(c *config.DatabaseConfig) { c.Password = "p@ss/word" }, "postgres://blog:p%40ss%2Fword@db:5432/zerofiltre?sslmode=disable"},
		{"missing host", func(c *config.DatabaseConfig) { c.Host = "" }, ""},
		{"missing port", func(c *config.DatabaseConfig) { c.Port = "" }, ""},
		{"missing user", func(c *config.DatabaseConfig) { c.User = "" }, ""},
		{"missing name", func(c *config.DatabaseConfig) { c.Name = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			got, err := BuildPostgresDSN(c)
			if tt.want == "" {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// stubOpen makes NewPostgres open db (or fail with err) instead of dialing.
func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, err }
	t.Cleanup(func() { sqlOpen = orig })
}

func TestNewPostgres(t *testing.T) {
	conf := config.DatabaseConfig{
		Host: "db", Port: "5432", User: "blog", Password: "s3cret", Name: "zerofiltre",
		MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetimeSec: 300,
	}

	t.Run("pings the pool", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)
		mock.ExpectPing()

		got, err := NewPostgres(conf)
		require.NoError(t, err)
		assert.Equal(t, 10, got.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open error", func(t *testing.T) {
		stubOpen(t, nil, errors.New("open error"))
		got, err := NewPostgres(conf)
		assert.ErrorContains(t, err, "sql open: open error")
		assert.Nil(t, got)
	})

	t.Run("ping error closes the pool", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		mock.ExpectPing().WillReturnError(errors.New("ping failed"))
		mock.ExpectClose()

		got, err := NewPostgres(conf)
		assert.ErrorContains(t, err, "db ping: ping failed")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid config", func(t *testing.T) {
		got, err := NewPostgres(config.DatabaseConfig{})
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestNewGorm(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gdb, err := NewGorm(db, logging.Discard(), false)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "tags" WHERE id = \$1`).
		WithArgs("tag-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("tag-1", "golang"))

	var tag model.Tag
	require.NoError(t, gdb.First(&tag, "id = ?", "tag-1").Error)
	assert.Equal(t, "golang", tag.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
