package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
	repoMocks "github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository/mocks"
)

type membershipFunc func(ctx context.Context, userID, courseID string) (bool, error)

func (f membershipFunc) IsMemberOfCourseCompany(ctx context.Context, userID, courseID string) (bool, error) {
	return f(ctx, userID, courseID)
}

func member(ok bool) MembershipChecker {
	return membershipFunc(func(context.Context, string, string) (bool, error) { return ok, nil })
}

type courseMocks struct {
	courses   *repoMocks.MockCourseRepository
	tags      *repoMocks.MockTagRepository
	purchases *repoMocks.MockPurchaseRepository
	notifier  *notifierMock
}

func newCourseFixture(members MembershipChecker) (CourseService, courseMocks) {
	m := courseMocks{
		courses:   new(repoMocks.MockCourseRepository),
		tags:      new(repoMocks.MockTagRepository),
		purchases: new(repoMocks.MockPurchaseRepository),
		notifier:  new(notifierMock),
	}
	return NewCourseService(m.courses, m.tags, m.purchases, members, m.notifier, "eur", quietLogger()), m
}

func publishedCourse(price int64) *model.Course {
	return &model.Course{ID: "c-1", Title: "Go", Slug: "go", AuthorID: bob.UserID, Status: model.StatusPublished, Price: price, Currency: "EUR"}
}

func TestCourseService_Init(t *testing.T) {
	ctx := context.Background()
	svc, m := newCourseFixture(member(false))
	m.courses.On("SlugExists", ctx, "go-basics").Return(false, nil)
	m.courses.On("Create", ctx, mock.MatchedBy(func(c *model.Course) bool {
		return c.Currency == "EUR" && c.Status == model.StatusDraft && c.AuthorID == alice.UserID
	})).Return(nil)

	c, err := svc.Init(ctx, alice, "Go Basics")
	require.NoError(t, err)
	assert.Equal(t, "go-basics", c.Slug)
	m.courses.AssertExpectations(t)
}

func TestCourseService_Save(t *testing.T) {
	ctx := context.Background()
	svc, m := newCourseFixture(member(false))
	m.courses.On("FindByID", ctx, "c-1").Return(&model.Course{ID: "c-1", AuthorID: alice.UserID, Currency: "EUR"}, nil)
	m.courses.On("Update", ctx, mock.MatchedBy(func(c *model.Course) bool {
		return c.Price == 4900 && c.Currency == "XAF" && c.Subtitle == "From zero"
	})).Return(nil)

	price := int64(4900)
	_, err := svc.Save(ctx, alice, "c-1", CoursePatch{Price: &price, Currency: strPtr("xaf"), Subtitle: strPtr("From zero")})
	require.NoError(t, err)

	negative := int64(-1)
	_, err = svc.Save(ctx, alice, "c-1", CoursePatch{Price: &negative})
	assert.ErrorIs(t, err, ErrInvalidInput)
	m.courses.AssertExpectations(t)
}

func TestCourseService_Enroll(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		actor      auth.Principal
		members    MembershipChecker
		setupMocks func(m courseMocks)
		wantErr    error
	}{
		{
			name:    "free course",
			actor:   alice,
			members: member(false),
			setupMocks: func(m courseMocks) {
				m.courses.On("FindByID", ctx, "c-1").Return(publishedCourse(0), nil)
				m.purchases.On("Find", ctx, alice.UserID, "c-1").Return(nil, repository.ErrNotFound)
				m.purchases.On("Create", ctx, mock.MatchedBy(func(p *model.Purchase) bool {
					return p.UserID == alice.UserID && p.CourseID == "c-1" && p.PaymentID == nil
				})).Return(nil)
				m.courses.On("IncrementEnrolled", ctx, "c-1").Return(nil)
			},
		},
		{
			name:    "paid course through company",
			actor:   alice,
			members: member(true),
			setupMocks: func(m courseMocks) {
				m.courses.On("FindByID", ctx, "c-1").Return(publishedCourse(4900), nil)
				m.purchases.On("Find", ctx, alice.UserID, "c-1").Return(nil, repository.ErrNotFound)
				m.purchases.On("Create", ctx, mock.Anything).Return(nil)
				m.courses.On("IncrementEnrolled", ctx, "c-1").Return(errors.New("ignored"))
			},
		},
		{
			name:    "paid course requires payment",
			actor:   alice,
			members: member(false),
			setupMocks: func(m courseMocks) {
				m.courses.On("FindByID", ctx, "c-1").Return(publishedCourse(4900), nil)
				m.purchases.On("Find", ctx, alice.UserID, "c-1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrPaymentRequired,
		},
		{
			name:    "existing purchase returned",
			actor:   alice,
			members: member(false),
			setupMocks: func(m courseMocks) {
				m.courses.On("FindByID", ctx, "c-1").Return(publishedCourse(4900), nil)
				m.purchases.On("Find", ctx, alice.UserID, "c-1").Return(&model.Purchase{ID: "p-1"}, nil)
			},
		},
		{
			name:    "draft course",
			actor:   alice,
			members: member(true),
			setupMocks: func(m courseMocks) {
				c := publishedCourse(0)
				c.Status = model.StatusDraft
				m.courses.On("FindByID", ctx, "c-1").Return(c, nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name:    "concurrent enrolment",
			actor:   alice,
			members: member(false),
			setupMocks: func(m courseMocks) {
				m.courses.On("FindByID", ctx, "c-1").Return(publishedCourse(0), nil)
				m.purchases.On("Find", ctx, alice.UserID, "c-1").Return(nil, repository.ErrNotFound).Once()
				m.purchases.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)
				m.purchases.On("Find", ctx, alice.UserID, "c-1").Return(&model.Purchase{ID: "p-1"}, nil).Once()
			},
		},
		{name: "anonymous", actor: anonymous, members: member(false), wantErr: ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newCourseFixture(tt.members)
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}
			p, err := svc.Enroll(ctx, tt.actor, "c-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, p)
			}
			m.courses.AssertExpectations(t)
			m.purchases.AssertExpectations(t)
		})
	}
}

func TestCourseService_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("no purchase", func(t *testing.T) {
		svc, m := newCourseFixture(member(false))
		m.purchases.On("Find", ctx, alice.UserID, "c-1").Return(nil, repository.ErrNotFound)
		_, err := svc.Complete(ctx, alice, "c-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("marks completed", func(t *testing.T) {
		svc, m := newCourseFixture(member(false))
		m.purchases.On("Find", ctx, alice.UserID, "c-1").Return(&model.Purchase{ID: "p-1"}, nil)
		m.purchases.On("Update", ctx, mock.MatchedBy(func(p *model.Purchase) bool {
			return p.Completed && p.CompletedAt != nil
		})).Return(nil)

		p, err := svc.Complete(ctx, alice, "c-1")
		require.NoError(t, err)
		assert.True(t, p.Completed)
		m.purchases.AssertExpectations(t)
	})
}

func TestCourseService_ListPurchases(t *testing.T) {
	ctx := context.Background()
	svc, m := newCourseFixture(member(false))
	m.purchases.On("ListByUser", ctx, alice.UserID).Return(nil, nil)

	ps, err := svc.ListPurchases(ctx, alice)
	require.NoError(t, err)
	assert.NotNil(t, ps)

	_, err = svc.ListPurchases(ctx, anonymous)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
