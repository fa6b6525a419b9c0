package superAdminController

import (
	"errors"

	"school/config"
	"school/database"
	"school/logger"
	"school/middleware"
	"school/models"
	superAdminValidator "school/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func UserList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validateUserList").(*superAdminValidator.UserListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	offset := (reqData.Page - 1) * reqData.Limit

	query := database.Database.Db.Model(&models.User{})
	if reqData.Role != "" {
		query = query.Where("role = ?", reqData.Role)
	}
	if reqData.Search != "" {
		like := "%" + reqData.Search + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Log.Error("count users", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	var users []models.User
	if err := query.Order("id desc").Offset(offset).Limit(reqData.Limit).Find(&users).Error; err != nil {
		logger.Log.Error("list users", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	response := map[string]interface{}{
		"users": users,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User List.", response)
}

// RegisterAdmin creates another administrator account
func RegisterAdmin(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validateAdmin").(*superAdminValidator.RegisterAdminRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		logger.Log.Error("hash password", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&newUser).Error; err != nil {
		logger.Log.Error("save admin", "email", reqData.Email, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register admin!", nil)
	}

	logger.Log.Info("admin registered", "email", newUser.Email, "by", middleware.CurrentEmail(c))
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Admin registered successfully.", newUser)
}

// UpdateUserRole promotes or demotes a user. Admins cannot change their own role.
func UpdateUserRole(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validateRole").(*superAdminValidator.RoleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	userID := c.Locals("id").(uint)
	if current, _ := c.Locals("userId").(uint); current == userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You cannot change your own role!", nil)
	}

	db := database.Database.Db

	var user models.User
	err := db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	if err != nil {
		logger.Log.Error("load user", "user_id", userID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	if err := db.Model(&user).Update("role", reqData.Role).Error; err != nil {
		logger.Log.Error("update role", "user_id", userID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update role!", nil)
	}
	user.Role = reqData.Role

	logger.Log.Info("user role changed", "user_id", userID, "role", user.Role, "by", middleware.CurrentEmail(c))
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role updated successfully.", user)
}
