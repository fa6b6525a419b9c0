package middleware

import (
	"errors"

	"school/apperr"
	"school/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse maps err to its HTTP status and writes {status:false, error}.
func ErrorResponse(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	if status >= fiber.StatusInternalServerError {
		logger.Log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err, zap.StackSkip("stack", 1))
	}
	return c.Status(status).JSON(fiber.Map{
		"status": false,
		"error":  apperr.PublicMessage(err),
	})
}

// ErrorHandler is the app-level handler for errors that escape a route.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"status": false,
			"error":  fe.Message,
		})
	}
	return ErrorResponse(c, err)
}
