package courseRoutes

import (
	"time"

	"school/config"
	controllers "school/controllers/course"
	"school/middleware"
	"school/validators"
	courseValidator "school/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the public catalog and the student area
func SetupCourseRoutes(app *fiber.App) {
	catalogGroup := app.Group("/courses")
	catalogGroup.Get("/", controllers.GetAllCourses)
	catalogGroup.Get("/:slug", controllers.GetCourseBySlug)

	app.Get("/api/certificates/:certificateNumber",
		middleware.RateLimit("certificates", config.AppConfig.CertificateRateLimit, time.Minute),
		controllers.VerifyCertificate)

	studentGroup := app.Group("/student", middleware.JWTMiddleware)
	studentGroup.Get("/enrollments", controllers.GetMyEnrollments)
	studentGroup.Get("/courses/:courseId", validators.IDParam("courseId"), controllers.GetCourseContent)
	studentGroup.Post("/lessons/:lessonId/progress", validators.IDParam("lessonId"), courseValidator.Progress(), controllers.RecordLessonProgress)
	studentGroup.Get("/exams/:examId", validators.IDParam("examId"), controllers.GetExam)
	studentGroup.Post("/exams/:examId/submit", validators.IDParam("examId"), courseValidator.SubmitExam(), controllers.SubmitExam)
	studentGroup.Get("/certificates", controllers.GetMyCertificates)
}
