package controllers

import (
	"school/database"
	"school/middleware"
	"school/services/catalog"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists active courses; ?featured=true keeps featured ones only.
func GetAllCourses(c *fiber.Ctx) error {
	courses, err := catalog.List(c.UserContext(), database.Database.Db, catalog.Filter{
		FeaturedOnly: c.QueryBool("featured"),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}

// GetCourseBySlug returns a published course with its module outline.
func GetCourseBySlug(c *fiber.Ctx) error {
	course, err := catalog.GetBySlug(c.UserContext(), database.Database.Db, c.Params("slug"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	for i := range course.Modules {
		for j := range course.Modules[i].Lessons {
			// video links are only served to enrolled students
			course.Modules[i].Lessons[j].VideoURL = ""
		}
		if course.Modules[i].Exam != nil {
			course.Modules[i].Exam.Questions = nil
		}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", course)
}
