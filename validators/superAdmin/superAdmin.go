package superAdminValidator

import (
	"strings"

	"school/validators"

	"github.com/gofiber/fiber/v2"
)

type UserListQuery struct {
	Page   int    `query:"page" validate:"gte=0"`
	Limit  int    `query:"limit" validate:"gte=0,max=100"`
	Role   string `query:"role" validate:"omitempty,oneof=STUDENT ADMIN"`
	Search string `query:"search"`
}

type RegisterAdminRequest struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=STUDENT ADMIN"`
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UserListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  false,
				"message": "Invalid query parameters!",
				"data":    nil,
			})
		}
		reqData.Role = strings.ToUpper(strings.TrimSpace(reqData.Role))
		reqData.Search = strings.ToLower(strings.TrimSpace(reqData.Search))
		if ok, err := validators.Check(c, reqData); !ok {
			return err
		}
		if reqData.Page == 0 {
			reqData.Page = 1
		}
		if reqData.Limit == 0 {
			reqData.Limit = 20
		}
		c.Locals("validateUserList", reqData)
		return c.Next()
	}
}

// RegisterAdmin validates the creation of another administrator
func RegisterAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RegisterAdminRequest)
		if err := c.BodyParser(reqData); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  false,
				"message": "Invalid request body!",
				"data":    nil,
			})
		}
		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		if ok, err := validators.Check(c, reqData); !ok {
			return err
		}
		c.Locals("validateAdmin", reqData)
		return c.Next()
	}
}

func Role() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RoleRequest)
		if err := c.BodyParser(reqData); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  false,
				"message": "Invalid request body!",
				"data":    nil,
			})
		}
		reqData.Role = strings.ToUpper(strings.TrimSpace(reqData.Role))
		if ok, err := validators.Check(c, reqData); !ok {
			return err
		}
		c.Locals("validateRole", reqData)
		return c.Next()
	}
}

