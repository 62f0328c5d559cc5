package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/repository"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
)

// requestError is a malformed request detected before reaching a service.
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

var errInvalidBody = &requestError{code: "INVALID_BODY", message: "invalid request body"}

// parsePage reads limit and offset. Range clamping is left to the services.
func parsePage(c *fiber.Ctx) (limit, offset int, err error) {
	limit, err = strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, &requestError{code: "INVALID_LIMIT", message: "invalid limit"}
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, &requestError{code: "INVALID_OFFSET", message: "invalid offset"}
	}
	return limit, offset, nil
}

func contentQuery(c *fiber.Ctx) (service.ContentQuery, error) {
	limit, offset, err := parsePage(c)
	if err != nil {
		return service.ContentQuery{}, err
	}
	return service.ContentQuery{
		Status:   model.Status(strings.ToUpper(c.Query("status"))),
		TagID:    c.Query("tag"),
		AuthorID: c.Query("author"),
		Sort:     repository.SortOrder(c.Query("sort")),
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// bind decodes the JSON body into out.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return nil
}

// uuidParam returns the named path parameter when it is a UUID.
func uuidParam(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", &requestError{code: "INVALID_ID", message: "invalid id format"}
	}
	return id, nil
}
