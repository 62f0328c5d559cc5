package service

import "github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Page is a paginated result as returned to clients.
type Page[T any] struct {
	Items  []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func pageQuery(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

func toPage[T any](res *repository.PageResult[T], pq repository.PageQuery) *Page[T] {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}
}
