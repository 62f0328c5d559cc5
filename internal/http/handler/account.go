package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/http/middleware"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type roleRequest struct {
	Role model.Role `json:"role"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates an inactive account and mails a verification link.
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RegisterInput true "account"
// @Success 201 {object} model.User
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		u, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// Login exchanges credentials for a bearer token.
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} service.TokenResult
// @Failure 401 {object} errorPayload
// @Router /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in loginRequest
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		res, err := svc.Login(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func VerifyAccount(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.VerifyAccount(c.UserContext(), c.Query("token")); err != nil {
			return fail(c, err)
		}
		return c.JSON(messageResponse{Message: "account verified"})
	}
}

func ResendVerification(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in emailRequest
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		if err := svc.ResendVerification(c.UserContext(), in.Email); err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(messageResponse{Message: "verification email sent"})
	}
}

// ForgotPassword always answers 202 so that registered emails cannot be probed.
func ForgotPassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in emailRequest
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		if err := svc.ForgotPassword(c.UserContext(), in.Email); err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(messageResponse{Message: "if the account exists, a reset link was sent"})
	}
}

func ResetPassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in resetPasswordRequest
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		if err := svc.ResetPassword(c.UserContext(), in.Token, in.Password); err != nil {
			return fail(c, err)
		}
		return c.JSON(messageResponse{Message: "password updated"})
	}
}

// SocialLogin completes an OAuth redirect for the given provider. The code is read from
// the JSON body, or from the query string.
// @Summary Social login
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} service.TokenResult
// @Failure 502 {object} errorPayload
// @Router /auth/github [post]
// @Router /auth/stackoverflow [post]
func SocialLogin(svc service.SocialLoginService, name model.LoginProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := codeRequest{Code: c.Query("code")}
		if len(c.Body()) > 0 {
			if err := bind(c, &in); err != nil {
				return fail(c, err)
			}
		}
		res, err := svc.Login(c.UserContext(), name, in.Code)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func GetMe(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.GetMe(c.UserContext(), middleware.GetPrincipal(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

func UpdateMe(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ProfileUpdate
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		u, err := svc.UpdateProfile(c.UserContext(), middleware.GetPrincipal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

func ChangePassword(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ChangePasswordInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		if err := svc.ChangePassword(c.UserContext(), middleware.GetPrincipal(c), in); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func DeleteMe(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteAccount(c.UserContext(), middleware.GetPrincipal(c)); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetUser returns a public profile, without email.
func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.GetPublicProfile(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := parsePage(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), middleware.GetPrincipal(c), limit, offset)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func ChangeRole(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in roleRequest
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		u, err := svc.ChangeRole(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"), in.Role)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}
