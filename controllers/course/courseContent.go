package controllers

import (
	"school/database"
	"school/middleware"
	"school/services/progress"
	courseValidator "school/validators/course"

	"github.com/gofiber/fiber/v2"
)

// RecordLessonProgress stores watch time and the watched flag of a lesson
func RecordLessonProgress(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedProgress").(*courseValidator.ProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	p, err := progress.Record(c.UserContext(), database.Database.Db, progress.RecordInput{
		LessonID:     c.Locals("lessonId").(uint),
		StudentEmail: middleware.CurrentEmail(c),
		WatchTime:    reqData.WatchTime,
		Watched:      reqData.Watched,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress saved.", p)
}
