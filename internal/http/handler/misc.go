package handler

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/http/middleware"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/storage"
)

// Search aggregates published articles, courses and tags matching q.
// @Summary Search
// @Tags search
// @Produce json
// @Param q query string true "at least 3 characters"
// @Success 200 {object} service.SearchResult
// @Failure 400 {object} errorPayload
// @Router /search [get]
func Search(svc service.SearchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Search(c.UserContext(), c.Query("q"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

// GetTip returns the developer tip of the day.
// @Summary Daily tip
// @Tags tips
// @Produce json
// @Success 200 {object} service.Tip
// @Failure 502 {object} errorPayload
// @Router /tips [get]
func GetTip(svc service.TipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tip, err := svc.Today(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(tip)
	}
}

func RefreshTip(svc service.TipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tip, err := svc.Refresh(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(tip)
	}
}

// ListNotifications returns the caller's notifications, newest first. unread=true
// restricts to unread ones.
func ListNotifications(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := parsePage(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), middleware.GetPrincipal(c), c.QueryBool("unread", false), limit, offset)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func UnreadCount(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.UnreadCount(c.UserContext(), middleware.GetPrincipal(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"count": n})
	}
}

func MarkNotificationRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.MarkRead(c.UserContext(), middleware.GetPrincipal(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func MarkAllNotificationsRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.MarkAllRead(c.UserContext(), middleware.GetPrincipal(c)); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CreateVideoUpload opens a tus upload on Vimeo.
// @Summary Create video upload
// @Tags videos
// @Accept json
// @Produce json
// @Param body body service.VideoUploadInput true "video"
// @Success 201 {object} provider.VideoUpload
// @Failure 502 {object} errorPayload
// @Router /videos [post]
func CreateVideoUpload(svc service.VideoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.VideoUploadInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		up, err := svc.CreateUpload(c.UserContext(), middleware.GetPrincipal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(up)
	}
}

func DeleteVideo(svc service.VideoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.GetPrincipal(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func OVHToken(svc service.OVHService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok, err := svc.Token(c.UserContext(), middleware.GetPrincipal(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(tok)
	}
}

// ListMedia lists uploaded files with limit & offset.
// @Summary List media
// @Tags media
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} service.Page[model.Media]
// @Failure 400 {object} errorPayload
// @Router /media [get]
func ListMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := parsePage(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

// UploadMedia stores a multipart file (field "file").
// @Summary Upload media
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "file"
// @Success 201 {object} model.Media
// @Failure 400 {object} errorPayload
// @Router /media [post]
func UploadMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get(fiber.HeaderContentType)
		if ct == "" {
			ct = "application/octet-stream"
		}
		m, err := svc.Upload(c.UserContext(), middleware.GetPrincipal(c), f, fh.Filename, ct, fh.Size)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

func GetMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuidParam(c, "id")
		if err != nil {
			return fail(c, err)
		}
		m, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(m)
	}
}

func DeleteMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuidParam(c, "id")
		if err != nil {
			return fail(c, err)
		}
		if err := svc.Delete(c.UserContext(), middleware.GetPrincipal(c), id); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ServeFile streams media objects from the in-process store, which hands out
// /files/<key> links in place of presigned URLs. Other keys answer 404.
func ServeFile(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := url.PathUnescape(c.Params("*"))
		if err != nil || !storage.IsMediaKey(key) {
			return fiber.ErrNotFound
		}
		rc, info, err := store.Get(c.UserContext(), key)
		if errors.Is(err, storage.ErrObjectNotFound) {
			return fiber.ErrNotFound
		}
		if err != nil {
			return err
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		return c.SendStream(rc, int(info.Size))
	}
}
