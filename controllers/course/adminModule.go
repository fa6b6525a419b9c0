package controllers

import (
	"school/database"
	"school/middleware"
	"school/models/course"
	"school/services/catalog"
	courseValidator "school/validators/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateModule adds a module to a course
func AdminCreateModule(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedModule").(*courseValidator.ModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	module, err := catalog.AddModule(c.UserContext(), database.Database.Db, c.Locals("id").(uint), reqData.Title, reqData.OrderIndex)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully.", module)
}

// AdminCreateLesson adds a video lesson to a module
func AdminCreateLesson(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLesson").(*courseValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	lesson, err := catalog.AddLesson(c.UserContext(), database.Database.Db, c.Locals("id").(uint), course.Lesson{
		Title:           reqData.Title,
		VideoURL:        reqData.VideoURL,
		DurationSeconds: reqData.DurationSeconds,
		OrderIndex:      reqData.OrderIndex,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully.", lesson)
}

// AdminSetModuleExam creates or replaces the exam of a module
func AdminSetModuleExam(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedExam").(*courseValidator.ExamRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	in := catalog.ExamInput{
		Title:        reqData.Title,
		PassingScore: reqData.PassingScore,
		Required:     reqData.Required,
	}
	for _, q := range reqData.Questions {
		qi := catalog.QuestionInput{Prompt: q.Prompt}
		for _, o := range q.Options {
			qi.Options = append(qi.Options, catalog.OptionInput{Text: o.Text, Correct: o.Correct})
		}
		in.Questions = append(in.Questions, qi)
	}
	exam, err := catalog.SetModuleExam(c.UserContext(), database.Database.Db, c.Locals("id").(uint), in)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam saved successfully.", exam)
}
