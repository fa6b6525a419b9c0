package controllers

import (
	"time"

	"school/database"
	"school/middleware"
	"school/services/dashboard"

	"github.com/gofiber/fiber/v2"
)

// AdminDashboardStats returns the sales, enrollment and outbox overview
func AdminDashboardStats(c *fiber.Ctx) error {
	stats, err := dashboard.Compute(c.UserContext(), database.Database.Db, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully.", stats)
}
