// Package migration creates the PostgreSQL schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the first step; its presence means the schema exists.
const sentinelTable = "public.users"

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id              VARCHAR(36) PRIMARY KEY,
  full_name       TEXT        NOT NULL,
  email           TEXT        NOT NULL DEFAULT '',
  password_hash   TEXT        NOT NULL DEFAULT '',
  role            VARCHAR(16) NOT NULL DEFAULT 'USER',
  active          BOOLEAN     NOT NULL DEFAULT FALSE,
  login_provider  VARCHAR(32) NOT NULL DEFAULT '',
  social_id       TEXT,
  social_link     TEXT        NOT NULL DEFAULT '',
  profile_picture TEXT        NOT NULL DEFAULT '',
  bio             TEXT        NOT NULL DEFAULT '',
  language        VARCHAR(8)  NOT NULL DEFAULT '',
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_users_email",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (LOWER(email)) WHERE email <> '';`,
	},
	{
		Name: "create_index_users_social",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_social ON users (login_provider, social_id);`,
	},
	{
		Name: "create_table_verification_tokens",
		SQL: `CREATE TABLE IF NOT EXISTS verification_tokens (
  id         VARCHAR(36) PRIMARY KEY,
  user_id    VARCHAR(36) NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  token      TEXT        NOT NULL UNIQUE,
  purpose    VARCHAR(32) NOT NULL,
  expires_at TIMESTAMPTZ NOT NULL,
  used_at    TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_tags",
		SQL: `CREATE TABLE IF NOT EXISTS tags (
  id         VARCHAR(36) PRIMARY KEY,
  name       TEXT        NOT NULL UNIQUE,
  color_code VARCHAR(16) NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_articles",
		SQL: `CREATE TABLE IF NOT EXISTS articles (
  id            VARCHAR(36) PRIMARY KEY,
  title         TEXT        NOT NULL,
  slug          TEXT        NOT NULL UNIQUE,
  summary       TEXT        NOT NULL DEFAULT '',
  content       TEXT        NOT NULL DEFAULT '',
  thumbnail_url TEXT        NOT NULL DEFAULT '',
  status        VARCHAR(16) NOT NULL,
  premium       BOOLEAN     NOT NULL DEFAULT FALSE,
  author_id     VARCHAR(36) NOT NULL,
  views_count   BIGINT      NOT NULL DEFAULT 0,
  published_at  TIMESTAMPTZ,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_articles_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_articles_status ON articles (status);`,
	},
	{
		Name: "create_index_articles_author",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_articles_author_id ON articles (author_id);`,
	},
	{
		Name: "create_table_article_tags",
		SQL: `CREATE TABLE IF NOT EXISTS article_tags (
  article_id VARCHAR(36) NOT NULL REFERENCES articles (id) ON DELETE CASCADE,
  tag_id     VARCHAR(36) NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
  PRIMARY KEY (article_id, tag_id)
);`,
	},
	{
		Name: "create_table_courses",
		SQL: `CREATE TABLE IF NOT EXISTS courses (
  id             VARCHAR(36) PRIMARY KEY,
  title          TEXT        NOT NULL,
  slug           TEXT        NOT NULL UNIQUE,
  subtitle       TEXT        NOT NULL DEFAULT '',
  summary        TEXT        NOT NULL DEFAULT '',
  thumbnail_url  TEXT        NOT NULL DEFAULT '',
  price          BIGINT      NOT NULL DEFAULT 0 CHECK (price >= 0),
  currency       VARCHAR(8)  NOT NULL DEFAULT '',
  status         VARCHAR(16) NOT NULL,
  author_id      VARCHAR(36) NOT NULL,
  enrolled_count BIGINT      NOT NULL DEFAULT 0,
  published_at   TIMESTAMPTZ,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_courses_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_courses_status ON courses (status);`,
	},
	{
		Name: "create_table_course_tags",
		SQL: `CREATE TABLE IF NOT EXISTS course_tags (
  course_id VARCHAR(36) NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
  tag_id    VARCHAR(36) NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
  PRIMARY KEY (course_id, tag_id)
);`,
	},
	{
		Name: "create_table_reactions",
		SQL: `CREATE TABLE IF NOT EXISTS reactions (
  id         VARCHAR(36) PRIMARY KEY,
  article_id VARCHAR(36),
  course_id  VARCHAR(36),
  author_id  VARCHAR(36) NOT NULL,
  action     VARCHAR(16) NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CHECK ((article_id IS NULL) <> (course_id IS NULL))
);`,
	},
	{
		Name: "create_index_reactions_article",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_reactions_article ON reactions (article_id, author_id, action);`,
	},
	{
		Name: "create_index_reactions_course",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_reactions_course ON reactions (course_id, author_id, action);`,
	},
	{
		Name: "create_table_companies",
		SQL: `CREATE TABLE IF NOT EXISTS companies (
  id           VARCHAR(36) PRIMARY KEY,
  company_name TEXT        NOT NULL,
  siren        VARCHAR(9)  NOT NULL UNIQUE,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_company_users",
		SQL: `CREATE TABLE IF NOT EXISTS company_users (
  company_id VARCHAR(36) NOT NULL REFERENCES companies (id) ON DELETE CASCADE,
  user_id    VARCHAR(36) NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  role       VARCHAR(16) NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (company_id, user_id)
);`,
	},
	{
		Name: "create_table_company_courses",
		SQL: `CREATE TABLE IF NOT EXISTS company_courses (
  company_id VARCHAR(36) NOT NULL REFERENCES companies (id) ON DELETE CASCADE,
  course_id  VARCHAR(36) NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
  active     BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (company_id, course_id)
);`,
	},
	{
		Name: "create_table_purchases",
		SQL: `CREATE TABLE IF NOT EXISTS purchases (
  id           VARCHAR(36) PRIMARY KEY,
  user_id      VARCHAR(36) NOT NULL,
  course_id    VARCHAR(36) NOT NULL,
  payment_id   VARCHAR(36),
  completed    BOOLEAN     NOT NULL DEFAULT FALSE,
  completed_at TIMESTAMPTZ,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT idx_purchases_user_course UNIQUE (user_id, course_id)
);`,
	},
	{
		Name: "create_table_payments",
		SQL: `CREATE TABLE IF NOT EXISTS payments (
  id                  VARCHAR(36) PRIMARY KEY,
  reference           TEXT        NOT NULL UNIQUE,
  provider            VARCHAR(16) NOT NULL,
  provider_payment_id TEXT        NOT NULL DEFAULT '',
  user_id             VARCHAR(36) NOT NULL,
  course_id           VARCHAR(36) NOT NULL,
  amount              BIGINT      NOT NULL CHECK (amount >= 0),
  currency            VARCHAR(8)  NOT NULL,
  status              VARCHAR(16) NOT NULL,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_payments_provider_payment_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_payments_provider_payment_id ON payments (provider, provider_payment_id);`,
	},
	{
		Name: "create_index_payments_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments (user_id);`,
	},
	{
		Name: "create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id         VARCHAR(36) PRIMARY KEY,
  user_id    VARCHAR(36) NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  type       VARCHAR(32) NOT NULL,
  title      TEXT        NOT NULL DEFAULT '',
  body       TEXT        NOT NULL DEFAULT '',
  link       TEXT        NOT NULL DEFAULT '',
  read       BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_notifications_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id, read);`,
	},
	{
		Name: "create_table_media",
		SQL: `CREATE TABLE IF NOT EXISTS media (
  id           VARCHAR(36) PRIMARY KEY,
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  owner_id     VARCHAR(36) NOT NULL DEFAULT '',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_media_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_media_created_at ON media (created_at);`,
	},
	{
		Name: "create_table_videos",
		SQL: `CREATE TABLE IF NOT EXISTS videos (
  id         VARCHAR(64) PRIMARY KEY,
  name       TEXT        NOT NULL,
  owner_id   VARCHAR(36) NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_videos_owner",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_videos_owner ON videos (owner_id);`,
	},
}

// EnsureMigrated checks whether the users table exists and runs every step if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log logrus.FieldLogger, dbHost string) error {
	start := time.Now()
	entry := log.WithFields(logrus.Fields{
		"component": "database",
		"db_host":   dbHost,
	})

	entry.WithFields(logrus.Fields{"event": "db_migration_check", "status": "starting"}).Info("checking schema")

	var exists bool
	query := fmt.Sprintf("SELECT to_regclass('%s') IS NOT NULL", sentinelTable)
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		entry.WithFields(logrus.Fields{
			"event":       "db_migration_failed",
			"status":      "error",
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Error("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		entry.WithFields(logrus.Fields{
			"event":       "db_migration_skip",
			"status":      "success",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already exists, skipping migration")
		return nil
	}

	entry.WithFields(logrus.Fields{"event": "db_migration_start", "status": "in_progress"}).Info("migrating schema")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			entry.WithFields(logrus.Fields{
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).WithError(err).Error("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		entry.WithFields(logrus.Fields{
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Debug("migration step applied")
	}

	entry.WithFields(logrus.Fields{
		"event":       "db_migration_success",
		"status":      "success",
		"steps":       len(steps),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("schema migrated")

	return nil
}
