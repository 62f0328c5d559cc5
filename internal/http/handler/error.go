package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/http/middleware"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/validation"
)

// errorPayload is the error response body shared by every endpoint.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// writeError writes the standard envelope. message must be safe to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorTable is checked in order, so more specific sentinels come first. An empty
// message means the error text is client-safe and is passed through.
var errorTable = []errorMapping{
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID", "id is required"},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required"},
	{service.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT", ""},
	{service.ErrTokenExpired, fiber.StatusBadRequest, "TOKEN_EXPIRED", "token is expired or already used"},
	{service.ErrNotCompleted, fiber.StatusBadRequest, "COURSE_NOT_COMPLETED", "course is not completed"},
	{service.ErrPaymentRequired, fiber.StatusPaymentRequired, "PAYMENT_REQUIRED", "this course must be purchased"},
	{service.ErrPayment, fiber.StatusBadRequest, "PAYMENT_ERROR", "payment could not be processed"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password"},
	{service.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
	{service.ErrInactiveAccount, fiber.StatusForbidden, "ACCOUNT_INACTIVE", "account is not verified"},
	{service.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "you are not allowed to perform this action"},
	{service.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND", "user not found"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "resource not found"},
	{service.ErrConflict, fiber.StatusConflict, "CONFLICT", "resource already exists"},
	{service.ErrProvider, fiber.StatusBadGateway, "PROVIDER_ERROR", "upstream provider unavailable"},
}

// fail translates a service error into the envelope. Unknown errors are handed to the
// global ErrorHandler, which logs them and answers 500.
func fail(c *fiber.Ctx, err error) error {
	var rerr *requestError
	if errors.As(err, &rerr) {
		return writeError(c, fiber.StatusBadRequest, rerr.code, rerr.message)
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(errorPayload{
			RequestID: middleware.GetRequestID(c),
			Error: errorEnvelope{
				Code:    "VALIDATION_ERROR",
				Message: verr.Error(),
				Fields:  verr.Fields,
			},
		})
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return writeError(c, m.status, m.code, msg)
		}
	}
	return err
}

// ErrorHandler standardizes router errors and logs unexpected failures without leaking them.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", fe.Message)
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", fe.Message)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		}
		if fe != nil && status < fiber.StatusInternalServerError {
			return writeError(c, status, "REQUEST_ERROR", fe.Message)
		}
		log.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"method":     c.Method(),
			"path":       c.Path(),
		}).WithError(err).Error("unhandled error")
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
