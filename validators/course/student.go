package courseValidator

import (
	"school/middleware"
	"school/validators"

	"github.com/gofiber/fiber/v2"
)

type ProgressRequest struct {
	WatchTime *int  `json:"watch_time" validate:"omitempty,gte=0"`
	Watched   *bool `json:"watched"`
}

type ExamSubmitRequest struct {
	Answers map[uint]uint `json:"answers" validate:"required"`
}

// Progress validates a lesson progress report
func Progress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProgressRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		if reqData.WatchTime == nil && reqData.Watched == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"watch_time": "Either watch_time or watched is required!",
			})
		}
		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

// SubmitExam validates an exam submission
func SubmitExam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ExamSubmitRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}
