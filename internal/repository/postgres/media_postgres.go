package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

const (
	mediaCols = `id, filename, storage_path, size, content_type, owner_id, created_at`

	insertMediaSQL = `INSERT INTO media (` + mediaCols + `) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING ` + mediaCols

	selectMediaSQL = `SELECT ` + mediaCols + ` FROM media WHERE id = $1`

	// total rides along each row so a page costs one round trip.
	pageMediaSQL = `SELECT ` + mediaCols + `, COUNT(*) OVER () AS total
FROM media ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	countMediaSQL = `SELECT COUNT(*) FROM media`

	deleteMediaSQL = `DELETE FROM media WHERE id = $1`

	uniqueViolation = "23505"
)

// MediaPostgres stores upload records through database/sql and the pgx driver.
type MediaPostgres struct {
	db *sql.DB
}

func NewMediaPostgres(db *sql.DB) *MediaPostgres {
	return &MediaPostgres{db: db}
}

var _ repository.MediaRepository = (*MediaPostgres)(nil)

func (r *MediaPostgres) Create(ctx context.Context, m *model.Media) (*model.Media, error) {
	var stored model.Media
	err := r.db.QueryRowContext(ctx, insertMediaSQL,
		m.ID, m.Filename, m.StoragePath, m.Size, m.ContentType, m.OwnerID, m.CreatedAt,
	).Scan(mediaDest(&stored)...)
	if err != nil {
		return nil, sqlErr(err)
	}
	return &stored, nil
}

func (r *MediaPostgres) FindByID(ctx context.Context, id string) (*model.Media, error) {
	var m model.Media
	if err := r.db.QueryRowContext(ctx, selectMediaSQL, id).Scan(mediaDest(&m)...); err != nil {
		return nil, sqlErr(err)
	}
	return &m, nil
}

// List pages newest first. An offset past the end falls back to a plain count.
func (r *MediaPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Media], error) {
	rows, err := r.db.QueryContext(ctx, pageMediaSQL, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := &repository.PageResult[model.Media]{Items: make([]model.Media, 0, pq.Limit)}
	for rows.Next() {
		var m model.Media
		if err := rows.Scan(append(mediaDest(&m), &res.Total)...); err != nil {
			return nil, err
		}
		res.Items = append(res.Items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(res.Items) == 0 && pq.Offset > 0 {
		if err := r.db.QueryRowContext(ctx, countMediaSQL).Scan(&res.Total); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Delete is idempotent.
func (r *MediaPostgres) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteMediaSQL, id)
	return err
}

// mediaDest lists scan targets in mediaCols order.
func mediaDest(m *model.Media) []any {
	return []any{&m.ID, &m.Filename, &m.StoragePath, &m.Size, &m.ContentType, &m.OwnerID, &m.CreatedAt}
}

func sqlErr(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return repository.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return repository.ErrDuplicate
	}
	return err
}
