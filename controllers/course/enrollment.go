package controllers

import (
	"school/database"
	"school/middleware"
	"school/models"
	"school/services/catalog"
	"school/services/enrollments"
	"school/services/progress"
	courseValidator "school/validators/course"

	"github.com/gofiber/fiber/v2"
)

// GetMyEnrollments lists the courses the student has access to
func GetMyEnrollments(c *fiber.Ctx) error {
	list, err := enrollments.ListForStudent(c.UserContext(), database.Database.Db, middleware.CurrentEmail(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully.", list)
}

// GetCourseContent serves the full course tree to an enrolled student
// together with their lesson progress.
func GetCourseContent(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := database.Database.Db
	email := middleware.CurrentEmail(c)
	courseID := c.Locals("courseId").(uint)

	enrollment, err := enrollments.Active(ctx, db, email, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	course, err := catalog.WithContent(ctx, db, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	prog, err := progress.ForCourse(ctx, db, email, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", fiber.Map{
		"enrollment": enrollment,
		"course":     course,
		"progress":   prog,
	})
}

// AdminListEnrollmentIntents shows the enrollment outbox, filtered by status
func AdminListEnrollmentIntents(c *fiber.Ctx) error {
	reqData, _ := c.Locals("validatedList").(*courseValidator.ListQuery)
	status, limit := "", 0
	if reqData != nil {
		status, limit = reqData.Status, reqData.Limit
	}
	list, err := enrollments.ListIntents(c.UserContext(), database.Database.Db, status, limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment intents fetched successfully.", list)
}

// AdminRequeueEnrollmentIntent puts a failed or dead intent back in the queue
// and processes its order right away.
func AdminRequeueEnrollmentIntent(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := database.Database.Db
	intent, err := enrollments.Requeue(ctx, db, c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if _, err := enrollments.DispatchOrder(ctx, db, intent.OrderID, OutboxPolicy); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	var fresh models.EnrollmentIntent
	if err := db.WithContext(ctx).First(&fresh, intent.ID).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment intent requeued.", fresh)
}

// OutboxPolicy is set from config at startup.
var OutboxPolicy enrollments.Policy
