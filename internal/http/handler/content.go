package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/http/middleware"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
)

type initRequest struct {
	Title string `json:"title"`
}

func ListTags(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tags, err := svc.List(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(tags)
	}
}

func GetTag(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	}
}

func CreateTag(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.TagInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		t, err := svc.Create(c.UserContext(), middleware.GetPrincipal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// ListArticles returns published articles by default. Filters: status, tag, author,
// sort (recent|popular), limit, offset.
// @Summary List articles
// @Tags articles
// @Produce json
// @Param status query string false "DRAFT, IN_REVIEW or PUBLISHED"
// @Param tag query string false "tag id"
// @Param author query string false "author id"
// @Param sort query string false "recent or popular"
// @Param limit query int false "page size" default(10)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} service.Page[model.Article]
// @Router /articles [get]
func ListArticles(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := contentQuery(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), middleware.GetPrincipal(c), q)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

// GetArticle resolves :ref as an id or a slug.
func GetArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := svc.Get(c.UserContext(), middleware.GetPrincipal(c), c.Params("ref"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(a)
	}
}

func InitArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in initRequest
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		a, err := svc.Init(c.UserContext(), middleware.GetPrincipal(c), in.Title)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

func SaveArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch service.ArticlePatch
		if err := bind(c, &patch); err != nil {
			return fail(c, err)
		}
		a, err := svc.Save(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"), patch)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(a)
	}
}

func PublishArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := svc.Publish(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(a)
	}
}

func DeleteArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.GetPrincipal(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ListCourses(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := contentQuery(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), middleware.GetPrincipal(c), q)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func GetCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		course, err := svc.Get(c.UserContext(), middleware.GetPrincipal(c), c.Params("ref"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(course)
	}
}

func InitCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in initRequest
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		course, err := svc.Init(c.UserContext(), middleware.GetPrincipal(c), in.Title)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(course)
	}
}

func SaveCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch service.CoursePatch
		if err := bind(c, &patch); err != nil {
			return fail(c, err)
		}
		course, err := svc.Save(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"), patch)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(course)
	}
}

func PublishCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		course, err := svc.Publish(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(course)
	}
}

func DeleteCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.GetPrincipal(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func reactionTarget(c *fiber.Ctx, kind model.TargetKind) model.ReactionTarget {
	return model.ReactionTarget{Kind: kind, ID: c.Params("id")}
}

func ListReactions(svc service.ReactionService, kind model.TargetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext(), reactionTarget(c, kind))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

// AddReaction reacts with :action (CLAP, FIRE, LOVE or LIKE, case-insensitive).
func AddReaction(svc service.ReactionService, kind model.TargetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		action := model.ReactionAction(strings.ToUpper(c.Params("action")))
		r, err := svc.Add(c.UserContext(), middleware.GetPrincipal(c), reactionTarget(c, kind), action)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

func RemoveReaction(svc service.ReactionService, kind model.TargetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		action := model.ReactionAction(strings.ToUpper(c.Params("action")))
		if err := svc.Remove(c.UserContext(), middleware.GetPrincipal(c), reactionTarget(c, kind), action); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
