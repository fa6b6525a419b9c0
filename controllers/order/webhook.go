package orderController

import (
	"school/database"
	"school/middleware"
	"school/services/payments"

	"github.com/gofiber/fiber/v2"
)

// MercadoPagoWebhook applies a provider notification. The body is
// {success, paymentId, newStatus} on success.
func MercadoPagoWebhook(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)
	res, err := payments.HandleNotification(c.UserContext(), database.Database.Db, Gateway, payments.Notification{
		Body:      body,
		Signature: c.Get("x-signature"),
		RequestID: c.Get("x-request-id"),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"paymentId": res.PaymentID,
		"newStatus": res.NewStatus,
	})
}
