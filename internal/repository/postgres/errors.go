package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

// mapErr translates gorm errors into repository sentinels. The gorm.DB must be opened
// with TranslateError so that unique violations surface as gorm.ErrDuplicatedKey.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	}
	return err
}

// affected turns a zero-row write into ErrNotFound.
func affected(tx *gorm.DB) error {
	if tx.Error != nil {
		return mapErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern wraps q for a substring match. Callers pair it with ESCAPE '\'
// so wildcards typed by users match literally.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
