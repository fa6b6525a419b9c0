package controllers

import (
	"school/database"
	"school/middleware"
	"school/services/certificates"

	"github.com/gofiber/fiber/v2"
)

// VerifyCertificate is the public verification lookup
func VerifyCertificate(c *fiber.Ctx) error {
	view, err := certificates.Lookup(c.UserContext(), database.Database.Db, c.Params("certificateNumber"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid.", view)
}

// GetMyCertificates lists the student's certificates
func GetMyCertificates(c *fiber.Ctx) error {
	list, err := certificates.ListForStudent(c.UserContext(), database.Database.Db, middleware.CurrentEmail(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully.", list)
}
