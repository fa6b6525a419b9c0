package courseRoutes

import (
	controllers "school/controllers/course"
	orderController "school/controllers/order"
	"school/middleware"
	"school/models"
	"school/validators"
	courseValidator "school/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up the admin CMS, order listing and outbox tools
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	// Course CRUD
	adminGroup.Post("/courses", courseValidator.Course(), controllers.AdminCreateCourse)
	adminGroup.Put("/courses/:id", validators.IDParam("id"), courseValidator.Course(), controllers.AdminUpdateCourse)
	adminGroup.Get("/courses", controllers.AdminGetAllCourses)

	// Content
	adminGroup.Post("/courses/:id/modules", validators.IDParam("id"), courseValidator.Module(), controllers.AdminCreateModule)
	adminGroup.Post("/modules/:id/lessons", validators.IDParam("id"), courseValidator.Lesson(), controllers.AdminCreateLesson)
	adminGroup.Put("/modules/:id/exam", validators.IDParam("id"), courseValidator.Exam(), controllers.AdminSetModuleExam)

	// Sales
	adminGroup.Get("/orders",
		courseValidator.List(string(models.OrderPending), string(models.OrderProcessing), string(models.OrderCompleted), string(models.OrderCancelled)),
		orderController.AdminListOrders)
	adminGroup.Get("/dashboard/stats", controllers.AdminDashboardStats)

	// Enrollment outbox
	adminGroup.Get("/enrollment-intents",
		courseValidator.List(string(models.IntentQueued), string(models.IntentFailed), string(models.IntentDone), string(models.IntentDead)),
		controllers.AdminListEnrollmentIntents)
	adminGroup.Post("/enrollment-intents/:id/requeue", validators.IDParam("id"), controllers.AdminRequeueEnrollmentIntent)
}
