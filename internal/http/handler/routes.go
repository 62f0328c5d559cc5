package handler

import (
	"database/sql"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/http/middleware"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/storage"
)

// Services groups the use cases the REST surface exposes.
type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Social        service.SocialLoginService
	Tags          service.TagService
	Articles      service.ArticleService
	Courses       service.CourseService
	Reactions     service.ReactionService
	Certificates  service.CertificateService
	Companies     service.CompanyService
	Payments      service.PaymentService
	Search        service.SearchService
	Tips          service.TipService
	Videos        service.VideoService
	OVH           service.OVHService
	Media         service.MediaService
	Notifications service.NotificationService
}

// Deps is everything RegisterRoutes needs. Metrics is optional; Files is set when media
// live in the in-process store and must be served by the API itself.
type Deps struct {
	DB      *sql.DB
	Tokens  *auth.TokenManager
	Metrics http.Handler
	Files   storage.Storage
	Services
}

// RegisterRoutes attaches every endpoint to app. Handlers stay thin; rules live in the
// services.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics))
	}

	app.Use(middleware.Authenticate(d.Tokens))
	authed := middleware.RequireAuth()
	admin := middleware.RequireAdmin()

	a := app.Group("/auth")
	a.Post("/register", Register(d.Auth))
	a.Post("/login", Login(d.Auth))
	a.Get("/verify", VerifyAccount(d.Auth))
	a.Post("/verification/resend", ResendVerification(d.Auth))
	a.Post("/password/forgot", ForgotPassword(d.Auth))
	a.Post("/password/reset", ResetPassword(d.Auth))
	a.Post("/github", SocialLogin(d.Social, model.ProviderGitHub))
	a.Post("/stackoverflow", SocialLogin(d.Social, model.ProviderStackOverflow))

	u := app.Group("/users")
	u.Get("/me", authed, GetMe(d.Users))
	u.Patch("/me", authed, UpdateMe(d.Users))
	u.Delete("/me", authed, DeleteMe(d.Users))
	u.Put("/me/password", authed, ChangePassword(d.Users))
	u.Get("/me/purchases", authed, ListPurchases(d.Courses))
	u.Get("/:id", GetUser(d.Users))

	t := app.Group("/tags")
	t.Get("/", ListTags(d.Tags))
	t.Get("/:id", GetTag(d.Tags))
	t.Post("/", admin, CreateTag(d.Tags))

	ar := app.Group("/articles")
	ar.Get("/", ListArticles(d.Articles))
	ar.Post("/", authed, InitArticle(d.Articles))
	ar.Get("/:id/reactions", ListReactions(d.Reactions, model.TargetArticle))
	ar.Post("/:id/reactions/:action", authed, AddReaction(d.Reactions, model.TargetArticle))
	ar.Delete("/:id/reactions/:action", authed, RemoveReaction(d.Reactions, model.TargetArticle))
	ar.Post("/:id/publish", authed, PublishArticle(d.Articles))
	ar.Get("/:ref", GetArticle(d.Articles))
	ar.Patch("/:id", authed, SaveArticle(d.Articles))
	ar.Delete("/:id", authed, DeleteArticle(d.Articles))

	co := app.Group("/courses")
	co.Get("/", ListCourses(d.Courses))
	co.Post("/", authed, InitCourse(d.Courses))
	co.Get("/:id/reactions", ListReactions(d.Reactions, model.TargetCourse))
	co.Post("/:id/reactions/:action", authed, AddReaction(d.Reactions, model.TargetCourse))
	co.Delete("/:id/reactions/:action", authed, RemoveReaction(d.Reactions, model.TargetCourse))
	co.Post("/:id/publish", authed, PublishCourse(d.Courses))
	co.Post("/:id/enroll", authed, EnrollCourse(d.Courses))
	co.Post("/:id/complete", authed, CompleteCourse(d.Courses))
	co.Get("/:id/certificate", authed, DownloadCertificate(d.Certificates))
	co.Get("/:ref", GetCourse(d.Courses))
	co.Patch("/:id", authed, SaveCourse(d.Courses))
	co.Delete("/:id", authed, DeleteCourse(d.Courses))

	cp := app.Group("/companies", authed)
	cp.Post("/", CreateCompany(d.Companies))
	cp.Get("/", ListCompanies(d.Companies))
	cp.Get("/:id", GetCompany(d.Companies))
	cp.Delete("/:id", DeleteCompany(d.Companies))
	cp.Get("/:id/users", ListCompanyUsers(d.Companies))
	cp.Post("/:id/users", AddCompanyUser(d.Companies))
	cp.Delete("/:id/users/:userId", RemoveCompanyUser(d.Companies))
	cp.Get("/:id/courses", ListCompanyCourses(d.Companies))
	cp.Post("/:id/courses/:courseId", LinkCompanyCourse(d.Companies))
	cp.Delete("/:id/courses/:courseId", UnlinkCompanyCourse(d.Companies))

	p := app.Group("/payments")
	p.Post("/webhooks/stripe", StripeWebhook(d.Payments))
	p.Post("/webhooks/notchpay", NotchPayWebhook(d.Payments))
	p.Post("/checkout", authed, Checkout(d.Payments))
	p.Get("/:reference", authed, GetPayment(d.Payments))

	app.Get("/search", Search(d.Search))
	app.Get("/tips", GetTip(d.Tips))
	app.Post("/tips/refresh", admin, RefreshTip(d.Tips))

	n := app.Group("/notifications", authed)
	n.Get("/", ListNotifications(d.Notifications))
	n.Get("/unread-count", UnreadCount(d.Notifications))
	n.Post("/read-all", MarkAllNotificationsRead(d.Notifications))
	n.Post("/:id/read", MarkNotificationRead(d.Notifications))

	app.Post("/videos", authed, CreateVideoUpload(d.Videos))
	app.Delete("/videos/:id", authed, DeleteVideo(d.Videos))
	app.Get("/ovh/token", authed, OVHToken(d.OVH))

	m := app.Group("/media", authed)
	m.Get("/", ListMedia(d.Media))
	m.Post("/", UploadMedia(d.Media))
	m.Get("/:id", GetMedia(d.Media))
	m.Delete("/:id", DeleteMedia(d.Media))
	if d.Files != nil {
		app.Get("/files/*", ServeFile(d.Files))
	}

	ad := app.Group("/admin", admin)
	ad.Get("/users", ListUsers(d.Users))
	ad.Patch("/users/:id/role", ChangeRole(d.Users))
}
