package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/http/middleware"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
	serviceMocks "github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service/mocks"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/storage"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/validation"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler(quietLogger())})
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := newApp()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := newApp()
	app.Get("/healthz", LivenessProbe())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFail(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("%w: title is required", service.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{service.ErrIDRequired, http.StatusBadRequest, "INVALID_ID"},
		{service.ErrTokenExpired, http.StatusBadRequest, "TOKEN_EXPIRED"},
		{service.ErrNotCompleted, http.StatusBadRequest, "COURSE_NOT_COMPLETED"},
		{fmt.Errorf("%w: bad signature", service.ErrPayment), http.StatusBadRequest, "PAYMENT_ERROR"},
		{service.ErrPaymentRequired, http.StatusPaymentRequired, "PAYMENT_REQUIRED"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{service.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{service.ErrInactiveAccount, http.StatusForbidden, "ACCOUNT_INACTIVE"},
		{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{service.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{fmt.Errorf("get article: %w", service.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{service.ErrConflict, http.StatusConflict, "CONFLICT"},
		{fmt.Errorf("%w: openai: 503", service.ErrProvider), http.StatusBadGateway, "PROVIDER_ERROR"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			app := newApp()
			app.Use(middleware.RequestID())
			app.Get("/", func(c *fiber.Ctx) error { return fail(c, tt.err) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(middleware.RequestIDHeader, "rid-1")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, "rid-1", body.RequestID)
			assert.NotContains(t, body.Error.Message, "pq:")
		})
	}
}

func TestFail_ValidationError(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error {
		verr := &validation.Error{Fields: []validation.FieldError{{Field: "email", Rule: "email"}}}
		return fail(c, fmt.Errorf("%w: %w", service.ErrInvalidInput, verr))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeError(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, []validation.FieldError{{Field: "email", Rule: "email"}}, body.Error.Fields)
}

func TestListArticles(t *testing.T) {
	mockSvc := new(serviceMocks.MockArticleService)
	app := newApp()
	app.Get("/articles", ListArticles(mockSvc))

	t.Run("success", func(t *testing.T) {
		want := service.ContentQuery{Status: model.StatusDraft, TagID: "go", AuthorID: "u-1", Sort: "popular", Limit: 5, Offset: 10}
		page := &service.Page[model.Article]{Items: []model.Article{{ID: "a-1", Title: "Hello"}}, Total: 11, Limit: 5, Offset: 10}
		mockSvc.On("List", mock.Anything, auth.Principal{}, want).Return(page, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/articles?status=draft&tag=go&author=u-1&sort=popular&limit=5&offset=10", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Len(t, got["data"], 1)
		assert.Equal(t, float64(11), got["total"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/articles?limit=abc", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/articles?offset=-x", nil))
		require.NoError(t, err)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db error")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/articles", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp).Error.Code)
	})
}

func TestGetArticle(t *testing.T) {
	mockSvc := new(serviceMocks.MockArticleService)
	app := newApp()
	app.Get("/articles/:ref", GetArticle(mockSvc))

	mockSvc.On("Get", mock.Anything, auth.Principal{}, "hello-go").Return(&model.Article{ID: "a-1", Slug: "hello-go"}, nil).Once()
	mockSvc.On("Get", mock.Anything, auth.Principal{}, "draft").Return(nil, service.ErrNotFound).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/articles/hello-go", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/articles/draft", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestRegister(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := newApp()
	app.Post("/auth/register", Register(mockSvc))

	t.Run("created", func(t *testing.T) {
		in := service.RegisterInput{FullName: "Ada", Email: "ada@example.com", Password: "s3cretpass"}
		mockSvc.On("Register", mock.Anything, in).Return(&model.User{ID: "u-1", Email: in.Email}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"full_name":"Ada","email":"ada@example.com","password":"s3cretpass"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"email":`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrConflict).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"full_name":"Ada","email":"ada@example.com","password":"s3cretpass"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestUploadMedia(t *testing.T) {
	mockSvc := new(serviceMocks.MockMediaService)
	app := newApp()
	app.Post("/media", UploadMedia(mockSvc))

	multipartBody := func(content string) (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		part, _ := w.CreateFormFile("file", "cover.png")
		part.Write([]byte(content))
		w.Close()
		return body, w.FormDataContentType()
	}

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody("png bytes")
		want := &model.Media{ID: uuid.NewString(), Filename: "cover.png"}
		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything, "cover.png", mock.Anything, int64(9)).Return(want, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/media", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var got model.Media
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, want.ID, got.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/media", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("rejected type", func(t *testing.T) {
		body, ct := multipartBody("MZ")
		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything, "cover.png", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: unsupported content type", service.ErrInvalidInput)).Once()

		req := httptest.NewRequest(http.MethodPost, "/media", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", decodeError(t, resp).Error.Code)
	})
}

func TestGetMedia(t *testing.T) {
	mockSvc := new(serviceMocks.MockMediaService)
	app := newApp()
	app.Get("/media/:id", GetMedia(mockSvc))

	id := uuid.NewString()
	mockSvc.On("Get", mock.Anything, id).Return(&model.Media{ID: id, URL: "http://minio/x"}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/media/"+id, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/media/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	mockSvc.AssertExpectations(t)
}

func TestNotchPayWebhook(t *testing.T) {
	mockSvc := new(serviceMocks.MockPaymentService)
	app := newApp()
	app.Post("/payments/webhooks/notchpay", NotchPayWebhook(mockSvc))

	payload := `{"event":"payment.complete","data":{"merchant_reference":"ref-1"}}`
	mockSvc.On("HandleNotchPayWebhook", mock.Anything, []byte(payload), "abc").Return(nil).Once()
	mockSvc.On("HandleNotchPayWebhook", mock.Anything, []byte(payload), "forged").
		Return(fmt.Errorf("%w: invalid webhook signature", service.ErrPayment)).Once()

	req := httptest.NewRequest(http.MethodPost, "/payments/webhooks/notchpay", strings.NewReader(payload))
	req.Header.Set("x-notch-signature", "abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/payments/webhooks/notchpay", strings.NewReader(payload))
	req.Header.Set("x-notch-signature", "forged")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "PAYMENT_ERROR", decodeError(t, resp).Error.Code)
	mockSvc.AssertExpectations(t)
}

func TestDownloadCertificate(t *testing.T) {
	mockSvc := new(mockCertificateService)
	app := newApp()
	app.Get("/courses/:id/certificate", DownloadCertificate(mockSvc))

	mockSvc.On("Get", mock.Anything, mock.Anything, "c-1").
		Return(&service.Certificate{Filename: "certificate-c-1.pdf", Content: []byte("%PDF-1.3")}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/courses/c-1/certificate", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "certificate-c-1.pdf")
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.3", string(b))
}

type mockCertificateService struct {
	mock.Mock
}

func (m *mockCertificateService) Get(ctx context.Context, actor auth.Principal, courseID string) (*service.Certificate, error) {
	args := m.Called(ctx, actor, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Certificate), args.Error(1)
}

const testSecret = "0123456789abcdef0123456789abcdef"

func TestRouting(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	articles := new(serviceMocks.MockArticleService)
	tips := new(serviceMocks.MockTipService)
	users := new(serviceMocks.MockUserService)

	app := newApp()
	app.Use(middleware.RequestID())
	RegisterRoutes(app, Deps{
		Tokens: tm,
		Services: Services{
			Articles: articles,
			Tips:     tips,
			Users:    users,
		},
	})

	token := func(role model.Role) string {
		tok, _, err := tm.Issue(&model.User{ID: "u-1", Email: "ada@example.com", Role: role})
		require.NoError(t, err)
		return "Bearer " + tok
	}

	t.Run("not found route", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/healthz", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("public tip", func(t *testing.T) {
		tips.On("Today", mock.Anything).Return(&service.Tip{Tip: "Use errors.Is", Date: "2026-10-19"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tips", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("writing requires a token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader(`{"title":"Go"}`)))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("writing with a token", func(t *testing.T) {
		actor := auth.Principal{UserID: "u-1", Email: "ada@example.com", Role: model.RoleUser}
		articles.On("Init", mock.Anything, actor, "Go").Return(&model.Article{ID: "a-1", Title: "Go"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader(`{"title":"Go"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", token(model.RoleUser))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		articles.AssertExpectations(t)
	})

	t.Run("forged token reads public routes anonymously", func(t *testing.T) {
		articles.On("List", mock.Anything, auth.Principal{}, mock.Anything).
			Return(&service.Page[model.Article]{Items: []model.Article{}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/articles", nil)
		req.Header.Set("Authorization", "Bearer forged.token.value")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		articles.AssertExpectations(t)
	})

	t.Run("forged token on protected route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader(`{"title":"Go"}`))
		req.Header.Set("Authorization", "Bearer forged.token.value")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid or expired token", decodeError(t, resp).Error.Message)
	})

	t.Run("admin routes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req.Header.Set("Authorization", token(model.RoleUser))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		users.On("List", mock.Anything, mock.Anything, 10, 0).Return(&service.Page[model.User]{Items: []model.User{}}, nil).Once()
		req = httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req.Header.Set("Authorization", token(model.RoleAdmin))
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		users.AssertExpectations(t)
	})

	t.Run("me before public profile", func(t *testing.T) {
		users.On("GetMe", mock.Anything, mock.Anything).Return(&model.User{ID: "u-1"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", token(model.RoleUser))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		users.AssertExpectations(t)
	})
}

func TestServeFile(t *testing.T) {
	store := storage.NewMemory("http://localhost:8080/files")
	ctx := context.Background()
	_, err := store.Put(ctx, "media/m1-cover.png", strings.NewReader("png-bytes"), storage.PutObjectOptions{Size: 9, ContentType: "image/png"})
	require.NoError(t, err)
	_, err = store.Put(ctx, "certificates/c1/u1.pdf", strings.NewReader("%PDF"), storage.PutObjectOptions{Size: 4})
	require.NoError(t, err)

	app := newApp()
	RegisterRoutes(app, Deps{Tokens: auth.NewTokenManager(testSecret, time.Hour), Files: store})

	link, err := store.PresignGet(ctx, "media/m1-cover.png", time.Minute)
	require.NoError(t, err)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, link, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))

	for _, path := range []string{"/files/media/missing.png", "/files/certificates/c1/u1.pdf", "/files/media/../certificates/c1/u1.pdf"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestFilesRouteOnlyForLocalStore(t *testing.T) {
	app := newApp()
	RegisterRoutes(app, Deps{Tokens: auth.NewTokenManager(testSecret, time.Hour)})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/files/media/m1-cover.png", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
