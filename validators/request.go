package validators

import (
	"strconv"

	"school/middleware"

	"github.com/gofiber/fiber/v2"
)

// Body parses the request body into dst and validates it. When ok is false a
// response has already been written and err must be returned by the
// handler: 400 for an unparsable body or missing required fields, 422 for
// any other rule.
func Body(c *fiber.Ctx, dst interface{}) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	return Check(c, dst)
}

// Check validates an already parsed request.
func Check(c *fiber.Ctx, req interface{}) (bool, error) {
	errs := Struct(req)
	if len(errs) == 0 {
		return true, nil
	}
	for _, msg := range errs {
		if msg == requiredMessage {
			return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing required fields!", errs)
		}
	}
	return false, middleware.ValidationErrorResponse(c, errs)
}

// ParamID reads a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, bool, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false, middleware.ValidationErrorResponse(c, map[string]string{name: "Invalid " + name + "!"})
	}
	return uint(id), true, nil
}

// IDParam is a route validator storing the parsed parameter under the same
// name in c.Locals.
func IDParam(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := ParamID(c, name)
		if !ok {
			return err
		}
		c.Locals(name, id)
		return c.Next()
	}
}
