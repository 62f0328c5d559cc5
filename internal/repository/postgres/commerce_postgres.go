package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
)

// PurchasePostgres is the gorm implementation of repository.PurchaseRepository.
type PurchasePostgres struct {
	db *gorm.DB
}

func NewPurchasePostgres(db *gorm.DB) *PurchasePostgres {
	return &PurchasePostgres{db: db}
}

var _ repository.PurchaseRepository = (*PurchasePostgres)(nil)

func (r *PurchasePostgres) Create(ctx context.Context, p *model.Purchase) error {
	return mapErr(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PurchasePostgres) Update(ctx context.Context, p *model.Purchase) error {
	return mapErr(r.db.WithContext(ctx).Save(p).Error)
}

func (r *PurchasePostgres) Find(ctx context.Context, userID, courseID string) (*model.Purchase, error) {
	var p model.Purchase
	err := r.db.WithContext(ctx).
		First(&p, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *PurchasePostgres) ListByUser(ctx context.Context, userID string) ([]model.Purchase, error) {
	items := make([]model.Purchase, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// PaymentPostgres is the gorm implementation of repository.PaymentRepository.
type PaymentPostgres struct {
	db *gorm.DB
}

func NewPaymentPostgres(db *gorm.DB) *PaymentPostgres {
	return &PaymentPostgres{db: db}
}

var _ repository.PaymentRepository = (*PaymentPostgres)(nil)

func (r *PaymentPostgres) Create(ctx context.Context, p *model.Payment) error {
	return mapErr(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PaymentPostgres) Update(ctx context.Context, p *model.Payment) error {
	return mapErr(r.db.WithContext(ctx).Save(p).Error)
}

func (r *PaymentPostgres) FindByReference(ctx context.Context, reference string) (*model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).First(&p, "reference = ?", reference).Error; err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *PaymentPostgres) FindByProviderPaymentID(ctx context.Context, provider model.PaymentProvider, id string) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		First(&p, "provider = ? AND provider_payment_id = ?", provider, id).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// NotificationPostgres is the gorm implementation of repository.NotificationRepository.
type NotificationPostgres struct {
	db *gorm.DB
}

func NewNotificationPostgres(db *gorm.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) error {
	return mapErr(r.db.WithContext(ctx).Create(n).Error)
}

func (r *NotificationPostgres) ListByUser(ctx context.Context, userID string, unreadOnly bool, pq repository.PageQuery) (*repository.PageResult[model.Notification], error) {
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_id = ?", userID)
		if unreadOnly {
			q = q.Where("read = ?", false)
		}
		return q
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Notification{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, err
	}
	items := make([]model.Notification, 0)
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("created_at DESC, id DESC").
		Limit(pq.Limit).Offset(pq.Offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Notification]{Items: items, Total: int(total)}, nil
}

func (r *NotificationPostgres) MarkRead(ctx context.Context, userID, id string) error {
	var n model.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return mapErr(err)
	}
	return r.db.WithContext(ctx).Model(&n).Update("read", true).Error
}

func (r *NotificationPostgres) MarkAllRead(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

func (r *NotificationPostgres) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// VideoPostgres is the gorm implementation of repository.VideoRepository.
type VideoPostgres struct {
	db *gorm.DB
}

func NewVideoPostgres(db *gorm.DB) *VideoPostgres {
	return &VideoPostgres{db: db}
}

var _ repository.VideoRepository = (*VideoPostgres)(nil)

func (r *VideoPostgres) Create(ctx context.Context, v *model.Video) error {
	return mapErr(r.db.WithContext(ctx).Create(v).Error)
}

func (r *VideoPostgres) FindByID(ctx context.Context, id string) (*model.Video, error) {
	var v model.Video
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

// Delete is idempotent.
func (r *VideoPostgres) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Video{}, "id = ?", id).Error
}
