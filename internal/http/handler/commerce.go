package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/http/middleware"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
)

const (
	stripeSignatureHeader   = "Stripe-Signature"
	notchPaySignatureHeader = "X-Notch-Signature"
)

func EnrollCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Enroll(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

func CompleteCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Complete(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}

func ListPurchases(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ps, err := svc.ListPurchases(c.UserContext(), middleware.GetPrincipal(c))
		if err != nil {
			return fail(c, err)
		}
		if ps == nil {
			ps = []model.Purchase{}
		}
		return c.JSON(ps)
	}
}

// DownloadCertificate streams the completion certificate PDF.
// @Summary Course certificate
// @Tags courses
// @Produce application/pdf
// @Param id path string true "course id"
// @Success 200 {file} binary
// @Failure 400 {object} errorPayload
// @Router /courses/{id}/certificate [get]
func DownloadCertificate(svc service.CertificateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cert, err := svc.Get(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Attachment(cert.Filename)
		return c.Send(cert.Content)
	}
}

// Checkout starts a Stripe or NotchPay payment for a course.
// @Summary Checkout
// @Tags payments
// @Accept json
// @Produce json
// @Param body body service.CheckoutInput true "checkout"
// @Success 201 {object} service.CheckoutResult
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /payments/checkout [post]
func Checkout(svc service.PaymentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CheckoutInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		res, err := svc.Checkout(c.UserContext(), middleware.GetPrincipal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

func GetPayment(svc service.PaymentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Get(c.UserContext(), middleware.GetPrincipal(c), c.Params("reference"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}

// StripeWebhook verifies and applies a Stripe event. The raw body is needed for the
// signature check, so it is copied out of Fiber's reusable buffer.
func StripeWebhook(svc service.PaymentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := append([]byte(nil), c.Body()...)
		if err := svc.HandleStripeWebhook(c.UserContext(), payload, c.Get(stripeSignatureHeader)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"received": true})
	}
}

// NotchPayWebhook verifies the x-notch-signature HMAC and applies the event.
// @Summary NotchPay webhook
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /payments/webhooks/notchpay [post]
func NotchPayWebhook(svc service.PaymentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := append([]byte(nil), c.Body()...)
		if err := svc.HandleNotchPayWebhook(c.UserContext(), payload, c.Get(notchPaySignatureHeader)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"received": true})
	}
}
