package userProfileRoutes

import (
	userProfileController "school/controllers/userControllers"
	"school/middleware"
	userProfileValidator "school/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware)

	userGroup.Get("/profile", userProfileController.GetProfile)
	userGroup.Put("/profile", userProfileValidator.UpdateProfile(), userProfileController.UpdateProfile)
	userGroup.Put("/password", userProfileValidator.ChangePassword(), userProfileController.ChangePassword)
}
