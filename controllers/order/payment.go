package orderController

import (
	"school/database"
	"school/middleware"
	"school/models"
	"school/services/payments"
	orderValidator "school/validators/order"

	"github.com/gofiber/fiber/v2"
)

// Gateway is the payment provider, set at startup.
var Gateway payments.Gateway

// ProcessPayment charges an order with the chosen method
func ProcessPayment(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPayment").(*orderValidator.ProcessPaymentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	in := payments.ProcessInput{
		OrderID:     reqData.OrderID,
		OrderNumber: reqData.OrderNumber,
		Method:      models.PaymentMethod(reqData.PaymentMethod),
	}
	if cd := reqData.CustomerData; cd != nil {
		in.Payer = payments.Payer{Name: cd.Name, Email: cd.Email, CPF: cd.CPF}
	}
	if cd := reqData.CardData; cd != nil {
		in.Card = &payments.CardData{
			Number:      cd.Number,
			HolderName:  cd.HolderName,
			ExpiryMonth: cd.ExpiryMonth,
			ExpiryYear:  cd.ExpiryYear,
			CVV:         cd.CVV,
		}
	}
	payment, err := payments.Process(c.UserContext(), database.Database.Db, Gateway, in)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment created successfully.", payment)
}
