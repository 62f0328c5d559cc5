package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/http/middleware"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
)

type companyUserRequest struct {
	UserID string            `json:"user_id"`
	Role   model.CompanyRole `json:"role"`
}

func CreateCompany(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CompanyInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		co, err := svc.Create(c.UserContext(), middleware.GetPrincipal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(co)
	}
}

func ListCompanies(svc service.CompanyService) fiber.Handler {
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

func GetCompany(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		co, err := svc.Get(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(co)
	}
}

func DeleteCompany(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.GetPrincipal(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func AddCompanyUser(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in companyUserRequest
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		cu, err := svc.AddUser(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"), in.UserID, in.Role)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cu)
	}
}

func RemoveCompanyUser(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.RemoveUser(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"), c.Params("userId")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ListCompanyUsers(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.ListUsers(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		if users == nil {
			users = []model.CompanyUser{}
		}
		return c.JSON(users)
	}
}

func LinkCompanyCourse(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cc, err := svc.LinkCourse(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"), c.Params("courseId"))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cc)
	}
}

func UnlinkCompanyCourse(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.UnlinkCourse(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"), c.Params("courseId")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ListCompanyCourses(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courses, err := svc.ListCourses(c.UserContext(), middleware.GetPrincipal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		if courses == nil {
			courses = []model.CompanyCourse{}
		}
		return c.JSON(courses)
	}
}
