package orderRoutes

import (
	"time"

	"school/config"
	orderController "school/controllers/order"
	"school/middleware"
	orderValidator "school/validators/order"

	"github.com/gofiber/fiber/v2"
)

func SetupOrderRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/orders", orderValidator.CreateOrder(), orderController.CreateOrder)
	api.Get("/orders/:orderNumber", orderController.GetOrder)
	api.Post("/payments/process", orderValidator.ProcessPayment(), orderController.ProcessPayment)
	api.Post("/webhooks/mercadopago",
		middleware.RateLimit("webhooks", config.AppConfig.WebhookRateLimit, time.Minute),
		orderController.MercadoPagoWebhook)
}
