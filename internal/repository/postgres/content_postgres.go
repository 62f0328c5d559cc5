package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

// contentFilter builds the WHERE/ORDER scope shared by articles and courses.
// joinTable and fk name the tag join table and its column pointing at table.
func contentFilter(db *gorm.DB, table, joinTable, fk string, f repository.ContentFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Status != "" {
			q = q.Where(table+".status = ?", f.Status)
		}
		if f.AuthorID != "" {
			q = q.Where(table+".author_id = ?", f.AuthorID)
		}
		if f.TagID != "" {
			sub := db.Table(joinTable).Select(fk).Where("tag_id = ?", f.TagID)
			q = q.Where(table+".id IN (?)", sub)
		}
		return q
	}
}

func contentOrder(table string, s repository.SortOrder) string {
	if s == repository.SortPopular {
		return table + ".views_count DESC, " + table + ".created_at DESC"
	}
	return "COALESCE(" + table + ".published_at, " + table + ".created_at) DESC, " + table + ".id DESC"
}

// TagPostgres is the gorm implementation of repository.TagRepository.
type TagPostgres struct {
	db *gorm.DB
}

func NewTagPostgres(db *gorm.DB) *TagPostgres {
	return &TagPostgres{db: db}
}

var _ repository.TagRepository = (*TagPostgres)(nil)

func (r *TagPostgres) Create(ctx context.Context, t *model.Tag) error {
	return mapErr(r.db.WithContext(ctx).Create(t).Error)
}

func (r *TagPostgres) FindByID(ctx context.Context, id string) (*model.Tag, error) {
	var t model.Tag
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *TagPostgres) FindByIDs(ctx context.Context, ids []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *TagPostgres) List(ctx context.Context) ([]model.Tag, error) {
	tags := make([]model.Tag, 0)
	if err := r.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *TagPostgres) Search(ctx context.Context, query string, limit int) ([]model.Tag, error) {
	tags := make([]model.Tag, 0)
	err := r.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(strings.ToLower(query))).
		Order("name").Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// ArticlePostgres is the gorm implementation of repository.ArticleRepository.
type ArticlePostgres struct {
	db *gorm.DB
}

func NewArticlePostgres(db *gorm.DB) *ArticlePostgres {
	return &ArticlePostgres{db: db}
}

var _ repository.ArticleRepository = (*ArticlePostgres)(nil)

func (r *ArticlePostgres) Create(ctx context.Context, a *model.Article) error {
	return mapErr(r.db.WithContext(ctx).Create(a).Error)
}

func (r *ArticlePostgres) Update(ctx context.Context, a *model.Article) error {
	return mapErr(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(a).Error; err != nil {
			return err
		}
		tags := a.Tags
		if tags == nil {
			tags = []model.Tag{}
		}
		return tx.Model(a).Association("Tags").Replace(tags)
	}))
}

func (r *ArticlePostgres) FindByID(ctx context.Context, id string) (*model.Article, error) {
	var a model.Article
	if err := r.db.WithContext(ctx).Preload("Tags").First(&a, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *ArticlePostgres) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	var a model.Article
	if err := r.db.WithContext(ctx).Preload("Tags").First(&a, "slug = ?", slug).Error; err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *ArticlePostgres) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Article{}).Where("slug = ?", slug).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ArticlePostgres) List(ctx context.Context, f repository.ContentFilter, pq repository.PageQuery) (*repository.PageResult[model.Article], error) {
	scope := contentFilter(r.db, "articles", "article_tags", "article_id", f)

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Article{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]model.Article, 0)
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Preload("Tags").
		Order(contentOrder("articles", f.Sort)).
		Limit(pq.Limit).Offset(pq.Offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Article]{Items: items, Total: int(total)}, nil
}

func (r *ArticlePostgres) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM article_tags WHERE article_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Reaction{}, "article_id = ?", id).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&model.Article{}, "id = ?", id))
	})
}

func (r *ArticlePostgres) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Article{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error
}

func (r *ArticlePostgres) Search(ctx context.Context, query string, limit int) ([]model.Article, error) {
	p := likePattern(strings.ToLower(query))
	items := make([]model.Article, 0)
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusPublished).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(summary) LIKE ? ESCAPE '\')`, p, p).
		Order("views_count DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CoursePostgres is the gorm implementation of repository.CourseRepository.
type CoursePostgres struct {
	db *gorm.DB
}

func NewCoursePostgres(db *gorm.DB) *CoursePostgres {
	return &CoursePostgres{db: db}
}

var _ repository.CourseRepository = (*CoursePostgres)(nil)

func (r *CoursePostgres) Create(ctx context.Context, c *model.Course) error {
	return mapErr(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CoursePostgres) Update(ctx context.Context, c *model.Course) error {
	return mapErr(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(c).Error; err != nil {
			return err
		}
		tags := c.Tags
		if tags == nil {
			tags = []model.Tag{}
		}
		return tx.Model(c).Association("Tags").Replace(tags)
	}))
}

func (r *CoursePostgres) FindByID(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	if err := r.db.WithContext(ctx).Preload("Tags").First(&c, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *CoursePostgres) FindBySlug(ctx context.Context, slug string) (*model.Course, error) {
	var c model.Course
	if err := r.db.WithContext(ctx).Preload("Tags").First(&c, "slug = ?", slug).Error; err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *CoursePostgres) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Course{}).Where("slug = ?", slug).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CoursePostgres) List(ctx context.Context, f repository.ContentFilter, pq repository.PageQuery) (*repository.PageResult[model.Course], error) {
	scope := contentFilter(r.db, "courses", "course_tags", "course_id", f)

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Course{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]model.Course, 0)
	order := contentOrder("courses", f.Sort)
	if f.Sort == repository.SortPopular {
		order = "courses.enrolled_count DESC, courses.created_at DESC"
	}
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Preload("Tags").
		Order(order).
		Limit(pq.Limit).Offset(pq.Offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Course]{Items: items, Total: int(total)}, nil
}

func (r *CoursePostgres) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM course_tags WHERE course_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Reaction{}, "course_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.CompanyCourse{}, "course_id = ?", id).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&model.Course{}, "id = ?", id))
	})
}

func (r *CoursePostgres) IncrementEnrolled(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ?", id).
		UpdateColumn("enrolled_count", gorm.Expr("enrolled_count + ?", 1)).Error
}

func (r *CoursePostgres) Search(ctx context.Context, query string, limit int) ([]model.Course, error) {
	p := likePattern(strings.ToLower(query))
	items := make([]model.Course, 0)
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusPublished).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(summary) LIKE ? ESCAPE '\')`, p, p).
		Order("enrolled_count DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ReactionPostgres is the gorm implementation of repository.ReactionRepository.
type ReactionPostgres struct {
	db *gorm.DB
}

func NewReactionPostgres(db *gorm.DB) *ReactionPostgres {
	return &ReactionPostgres{db: db}
}

var _ repository.ReactionRepository = (*ReactionPostgres)(nil)

func targetColumn(t model.ReactionTarget) string {
	if t.Kind == model.TargetCourse {
		return "course_id"
	}
	return "article_id"
}

func (r *ReactionPostgres) Create(ctx context.Context, re *model.Reaction) error {
	return mapErr(r.db.WithContext(ctx).Create(re).Error)
}

func (r *ReactionPostgres) Delete(ctx context.Context, t model.ReactionTarget, authorID string, action model.ReactionAction) error {
	return affected(r.db.WithContext(ctx).
		Where(targetColumn(t)+" = ? AND author_id = ? AND action = ?", t.ID, authorID, action).
		Delete(&model.Reaction{}))
}

func (r *ReactionPostgres) Find(ctx context.Context, t model.ReactionTarget, authorID string, action model.ReactionAction) (*model.Reaction, error) {
	var re model.Reaction
	err := r.db.WithContext(ctx).
		Where(targetColumn(t)+" = ? AND author_id = ? AND action = ?", t.ID, authorID, action).
		First(&re).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &re, nil
}

func (r *ReactionPostgres) ListByTarget(ctx context.Context, t model.ReactionTarget) ([]model.Reaction, error) {
	items := make([]model.Reaction, 0)
	err := r.db.WithContext(ctx).
		Where(targetColumn(t)+" = ?", t.ID).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReactionPostgres) CountByTarget(ctx context.Context, t model.ReactionTarget) ([]repository.ReactionCount, error) {
	counts := make([]repository.ReactionCount, 0)
	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Select("action, COUNT(*) AS count").
		Where(targetColumn(t)+" = ?", t.ID).
		Group("action").
		Order("action").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
