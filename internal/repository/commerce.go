package repository

import (
	"context"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
)

type PurchaseRepository interface {
	Create(ctx context.Context, p *model.Purchase) error
	Update(ctx context.Context, p *model.Purchase) error
	Find(ctx context.Context, userID, courseID string) (*model.Purchase, error)
	ListByUser(ctx context.Context, userID string) ([]model.Purchase, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	Update(ctx context.Context, p *model.Payment) error
	FindByReference(ctx context.Context, reference string) (*model.Payment, error)
	FindByProviderPaymentID(ctx context.Context, provider model.PaymentProvider, id string) (*model.Payment, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, pq PageQuery) (*PageResult[model.Notification], error)
	// MarkRead returns ErrNotFound when the notification does not belong to userID.
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// MediaRepository defines data access for stored files.
// Persistence only.
type MediaRepository interface {
	// Create inserts a new media record.
	Create(ctx context.Context, m *model.Media) (*model.Media, error)

	// FindByID returns a media record by its ID.
	FindByID(ctx context.Context, id string) (*model.Media, error)

	// List returns a paginated list of media and total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Media], error)

	// Delete removes a media record by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

type VideoRepository interface {
	Create(ctx context.Context, v *model.Video) error
	FindByID(ctx context.Context, id string) (*model.Video, error)
	Delete(ctx context.Context, id string) error
}
