package orderValidator

import (
	"strings"

	"school/middleware"
	"school/models"
	"school/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	CourseID uint `json:"course_id" validate:"required"`
	Quantity int  `json:"quantity" validate:"omitempty,gte=1"`
}

type CreateOrderRequest struct {
	CustomerName  string          `json:"customer_name" validate:"required,min=3"`
	CustomerEmail string          `json:"customer_email" validate:"required,email"`
	CustomerPhone string          `json:"customer_phone" validate:"omitempty,min=8,max=20"`
	CustomerCPF   string          `json:"customer_cpf" validate:"omitempty,cpf"`
	Discount      decimal.Decimal `json:"discount"`
	Items         []OrderItem     `json:"items" validate:"required,min=1,dive"`
}

type CustomerData struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	CPF   string `json:"cpf" validate:"omitempty,cpf"`
}

type CardData struct {
	Number      string `json:"number" validate:"required,numeric,min=13,max=19,luhn_checksum"`
	HolderName  string `json:"holder_name" validate:"required"`
	ExpiryMonth int    `json:"expiry_month" validate:"required,gte=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"required,gte=2000"`
	CVV         string `json:"cvv" validate:"required,min=3,max=4"`
}

type ProcessPaymentRequest struct {
	OrderID       uint          `json:"order_id" validate:"required_without=OrderNumber"`
	OrderNumber   string        `json:"order_number"`
	PaymentMethod string        `json:"payment_method" validate:"required,oneof=pix boleto credit_card debit_card"`
	CustomerData  *CustomerData `json:"customer_data"`
	CardData      *CardData     `json:"card_data"`
}

var cardDigits = strings.NewReplacer(" ", "", "-", "", ".", "")

// CreateOrder validator middleware
func CreateOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateOrderRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.CustomerName = strings.TrimSpace(reqData.CustomerName)
		reqData.CustomerEmail = strings.ToLower(strings.TrimSpace(reqData.CustomerEmail))
		reqData.CustomerPhone = strings.TrimSpace(reqData.CustomerPhone)
		if ok, err := validators.Check(c, reqData); !ok {
			return err
		}

		errors := make(map[string]string)
		if reqData.Discount.IsNegative() {
			errors["discount"] = "Discount must not be negative!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		for i := range reqData.Items {
			if reqData.Items[i].Quantity == 0 {
				reqData.Items[i].Quantity = 1
			}
		}
		c.Locals("validatedOrder", reqData)
		return c.Next()
	}
}

// ProcessPayment validator middleware
func ProcessPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProcessPaymentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.OrderNumber = strings.TrimSpace(reqData.OrderNumber)
		reqData.PaymentMethod = strings.ToLower(strings.TrimSpace(reqData.PaymentMethod))
		if reqData.CardData != nil {
			reqData.CardData.Number = cardDigits.Replace(strings.TrimSpace(reqData.CardData.Number))
		}
		if ok, err := validators.Check(c, reqData); !ok {
			return err
		}

		if models.PaymentMethod(reqData.PaymentMethod).IsCard() && reqData.CardData == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing required fields!",
				map[string]string{"card_data": "Card data is required for card payments!"})
		}
		c.Locals("validatedPayment", reqData)
		return c.Next()
	}
}
