package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
)

type MockPaymentService struct {
	mock.Mock
}

var _ service.PaymentService = (*MockPaymentService)(nil)

func (m *MockPaymentService) Checkout(ctx context.Context, actor auth.Principal, in service.CheckoutInput) (*service.CheckoutResult, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckoutResult), args.Error(1)
}

func (m *MockPaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

func (m *MockPaymentService) HandleNotchPayWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

func (m *MockPaymentService) Complete(ctx context.Context, reference string) error {
	return m.Called(ctx, reference).Error(0)
}

func (m *MockPaymentService) Get(ctx context.Context, actor auth.Principal, reference string) (*model.Payment, error) {
	args := m.Called(ctx, actor, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

type MockTipService struct {
	mock.Mock
}

var _ service.TipService = (*MockTipService)(nil)

func (m *MockTipService) Today(ctx context.Context) (*service.Tip, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Tip), args.Error(1)
}

func (m *MockTipService) Refresh(ctx context.Context) (*service.Tip, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Tip), args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

var _ service.SearchService = (*MockSearchService)(nil)

func (m *MockSearchService) Search(ctx context.Context, query string) (*service.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchResult), args.Error(1)
}

type MockTagService struct {
	mock.Mock
}

var _ service.TagService = (*MockTagService)(nil)

func (m *MockTagService) List(ctx context.Context) ([]model.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockTagService) Get(ctx context.Context, id string) (*model.Tag, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagService) Create(ctx context.Context, actor auth.Principal, in service.TagInput) (*model.Tag, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}
