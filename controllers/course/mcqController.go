package controllers

import (
	"school/database"
	"school/middleware"
	"school/services/exams"
	courseValidator "school/validators/course"

	"github.com/gofiber/fiber/v2"
)

// GetExam returns an exam without its answers, plus the student's attempts
func GetExam(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := database.Database.Db
	email := middleware.CurrentEmail(c)
	examID := c.Locals("examId").(uint)

	exam, err := exams.StudentView(ctx, db, examID, email)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	attempts, err := exams.Attempts(ctx, db, examID, email)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam fetched successfully.", fiber.Map{
		"exam":     exam,
		"attempts": attempts,
	})
}

// SubmitExam grades a submission; a passing one may issue the certificate
func SubmitExam(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSubmission").(*courseValidator.ExamSubmitRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	res, err := exams.Submit(c.UserContext(), database.Database.Db, exams.SubmitInput{
		ExamID:       c.Locals("examId").(uint),
		StudentEmail: middleware.CurrentEmail(c),
		Answers:      reqData.Answers,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	msg := "Exam not passed."
	if res.Attempt.Passed {
		msg = "Exam passed."
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, msg, res)
}
