package controllers

import (
	"school/database"
	"school/middleware"
	"school/services/catalog"
	courseValidator "school/validators/course"

	"github.com/gofiber/fiber/v2"
)

func courseInput(r *courseValidator.CourseRequest) catalog.CourseInput {
	return catalog.CourseInput{
		Slug:          r.Slug,
		Title:         r.Title,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		ValidityDays:  r.ValidityDays,
		IsActive:      r.IsActive,
		IsFeatured:    r.IsFeatured,
	}
}

// AdminCreateCourse creates a course
func AdminCreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	course, err := catalog.Create(c.UserContext(), database.Database.Db, courseInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully.", course)
}

// AdminUpdateCourse replaces the editable fields of a course
func AdminUpdateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	course, err := catalog.Update(c.UserContext(), database.Database.Db, c.Locals("id").(uint), courseInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully.", course)
}

// AdminGetAllCourses lists every course, inactive ones included
func AdminGetAllCourses(c *fiber.Ctx) error {
	courses, err := catalog.List(c.UserContext(), database.Database.Db, catalog.Filter{IncludeInactive: true})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}
