package courseValidator

import (
	"strconv"
	"strings"

	"school/middleware"
	"school/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ============ Course Validators ============

type CourseRequest struct {
	Slug          string           `json:"slug" validate:"omitempty,max=191"`
	Title         string           `json:"title" validate:"required,min=3"`
	Description   string           `json:"description"`
	ImageURL      string           `json:"image_url" validate:"omitempty,url"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	ValidityDays  int              `json:"validity_days" validate:"gte=0"`
	IsActive      *bool            `json:"is_active"`
	IsFeatured    bool             `json:"is_featured"`
}

type ModuleRequest struct {
	Title      string `json:"title" validate:"required"`
	OrderIndex int    `json:"order_index" validate:"gte=0"`
}

type LessonRequest struct {
	Title           string `json:"title" validate:"required"`
	VideoURL        string `json:"video_url" validate:"omitempty,url"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
	OrderIndex      int    `json:"order_index" validate:"gte=0"`
}

type OptionRequest struct {
	Text    string `json:"text" validate:"required"`
	Correct bool   `json:"correct"`
}

type QuestionRequest struct {
	Prompt  string          `json:"prompt" validate:"required"`
	Options []OptionRequest `json:"options" validate:"required,min=2,dive"`
}

type ExamRequest struct {
	Title        string            `json:"title"`
	PassingScore int               `json:"passing_score" validate:"gte=0,max=100"`
	Required     bool              `json:"required"`
	Questions    []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type ListQuery struct {
	Status string `query:"status"`
	Page   int    `query:"page" validate:"gte=0"`
	Limit  int    `query:"limit" validate:"gte=0,max=100"`
}

// Course validates admin course creation and update
func Course() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Slug = strings.ToLower(strings.TrimSpace(reqData.Slug))
		reqData.Description = strings.TrimSpace(reqData.Description)
		if ok, err := validators.Check(c, reqData); !ok {
			return err
		}

		errors := make(map[string]string)
		if reqData.Price.IsNegative() {
			errors["price"] = "Price must not be negative!"
		}
		if reqData.DiscountPrice != nil && (reqData.DiscountPrice.IsNegative() || reqData.DiscountPrice.GreaterThan(reqData.Price)) {
			errors["discount_price"] = "Discount price must be between 0 and price!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// Module validates module creation
func Module() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ModuleRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// Lesson validates lesson creation
func Lesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LessonRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// Exam validates a full module exam definition
func Exam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ExamRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		errors := make(map[string]string)
		for i, q := range reqData.Questions {
			correct := 0
			for _, o := range q.Options {
				if o.Correct {
					correct++
				}
			}
			if correct != 1 {
				errors["questions["+strconv.Itoa(i)+"].options"] = "Exactly one option must be correct!"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedExam", reqData)
		return c.Next()
	}
}

// List validates admin listing queries
func List(statuses ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query!", nil)
		}
		if ok, err := validators.Check(c, reqData); !ok {
			return err
		}
		if reqData.Status != "" && len(statuses) > 0 && !contains(statuses, reqData.Status) {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"status": "Must be one of: " + strings.Join(statuses, " ") + "!",
			})
		}
		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
