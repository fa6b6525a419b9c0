package orderController

import (
	"school/database"
	"school/middleware"
	"school/services/orders"
	courseValidator "school/validators/course"
	orderValidator "school/validators/order"

	"github.com/gofiber/fiber/v2"
)

// CreateOrder prices the cart and stores a pending order
func CreateOrder(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedOrder").(*orderValidator.CreateOrderRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	in := orders.Input{
		Customer: orders.Customer{
			Name:  reqData.CustomerName,
			Email: reqData.CustomerEmail,
			Phone: reqData.CustomerPhone,
			CPF:   reqData.CustomerCPF,
		},
		Discount: reqData.Discount,
	}
	for _, it := range reqData.Items {
		in.Items = append(in.Items, orders.Item{CourseID: it.CourseID, Quantity: it.Quantity})
	}
	order, err := orders.Create(c.UserContext(), database.Database.Db, in)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Order created successfully.", order)
}

// GetOrder returns an order by its public number
func GetOrder(c *fiber.Ctx) error {
	order, err := orders.GetByNumber(c.UserContext(), database.Database.Db, c.Params("orderNumber"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order fetched successfully.", order)
}

// AdminListOrders pages through orders, newest first
func AdminListOrders(c *fiber.Ctx) error {
	reqData, _ := c.Locals("validatedList").(*courseValidator.ListQuery)
	q := courseValidator.ListQuery{}
	if reqData != nil {
		q = *reqData
	}
	page, err := orders.List(c.UserContext(), database.Database.Db, q.Status, q.Page, q.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Orders fetched successfully.", page)
}
