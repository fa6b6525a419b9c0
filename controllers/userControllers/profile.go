package userController

import (
	"errors"

	"school/config"
	"school/database"
	"school/logger"
	"school/middleware"
	"school/models"
	userValidator "school/validators/userValidator"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// currentUser loads the authenticated user; ok is false once a response
// has been written.
func currentUser(c *fiber.Ctx) (*models.User, bool, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, false, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	var user models.User
	err := database.Database.Db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	if err != nil {
		logger.Log.Error("load user", "user_id", userID, "error", err)
		return nil, false, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}
	return &user, true, nil
}

func GetProfile(c *fiber.Ctx) error {
	user, ok, err := currentUser(c)
	if !ok {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", user)
}

func UpdateProfile(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	user, ok, err := currentUser(c)
	if !ok {
		return err
	}
	if err := database.Database.Db.Model(user).Update("name", reqData.Name).Error; err != nil {
		logger.Log.Error("update profile", "user_id", user.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}
	user.Name = reqData.Name
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", user)
}

func ChangePassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPassword").(*userValidator.ChangePasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	user, ok, err := currentUser(c)
	if !ok {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.CurrentPassword)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Current password is incorrect!", nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		logger.Log.Error("hash password", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}
	if err := database.Database.Db.Model(user).Update("password", string(hashed)).Error; err != nil {
		logger.Log.Error("update password", "user_id", user.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update password!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password updated successfully.", nil)
}
