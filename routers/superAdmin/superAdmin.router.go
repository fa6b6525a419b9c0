package superAdminRoutes

import (
	superAdminController "school/controllers/superAdmin"
	"school/middleware"
	"school/models"
	"school/validators"
	superAdminValidator "school/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
)

// SetupSuperAdminRoutes sets up user administration
func SetupSuperAdminRoutes(app *fiber.App) {
	usersGroup := app.Group("/admin/users", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	usersGroup.Get("/", superAdminValidator.List(), superAdminController.UserList)
	usersGroup.Post("/admins", superAdminValidator.RegisterAdmin(), superAdminController.RegisterAdmin)
	usersGroup.Put("/:id/role", validators.IDParam("id"), superAdminValidator.Role(), superAdminController.UpdateUserRole)
}
