package admin

import (
	"studyclub/database"
	"studyclub/models"
	"studyclub/services"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// GetUsers returns all users with pagination
func GetUsers(c *fiber.Ctx) error {
	db := database.GetDB()

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	search := c.Query("search", "")

	offset := (page - 1) * limit

	var users []models.User
	var total int64

	query := db.Model(&models.User{})

	if search != "" {
		query = query.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	query.Count(&total)

	if err := query.Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUser returns a single user by ID
func GetUser(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(user)
}

// UpdateUser updates a user's information
func UpdateUser(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var updateData struct {
		Username       string `json:"username"`
		Email          string `json:"email"`
		Score          *int   `json:"score"`
		OwnedBadgeTier string `json:"owned_badge_tier"`
		EquippedBadge  string `json:"equipped_badge"`
		IsAdmin        *bool  `json:"is_admin"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if updateData.Username != "" {
		user.Username = updateData.Username
	}
	if updateData.Email != "" {
		email := updateData.Email
		user.Email = &email
	}
	if updateData.Score != nil {
		if *updateData.Score < 0 {
			return c.Status(400).JSON(fiber.Map{
				"error": "Score cannot be negative",
			})
		}
		user.Score = *updateData.Score
	}
	if updateData.OwnedBadgeTier != "" {
		if services.BadgePrice(updateData.OwnedBadgeTier) == 0 {
			return c.Status(400).JSON(fiber.Map{
				"error": "Unknown badge tier",
			})
		}
		user.OwnedBadgeTier = updateData.OwnedBadgeTier
	}
	if updateData.EquippedBadge != "" {
		user.EquippedBadge = updateData.EquippedBadge
	}
	// A body that omits is_admin leaves the flag alone.
	if updateData.IsAdmin != nil {
		user.IsAdmin = *updateData.IsAdmin
	}

	if err := db.Save(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to update user",
		})
	}

	return c.JSON(user)
}

// DeleteUser deletes a user and their owned records
func DeleteUser(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	// Prevent deleting admin users
	if user.IsAdmin {
		return c.Status(403).JSON(fiber.Map{
			"error": "Cannot delete admin users",
		})
	}

	db.Where("user_id = ?", user.ID).Delete(&models.DailyReward{})
	db.Where("user_id = ?", user.ID).Delete(&models.Mission{})
	db.Where("user_id = ?", user.ID).Delete(&models.Note{})

	// The user's board activity goes with them: their replies everywhere,
	// then every reply under their questions, then the questions.
	db.Where("author_id = ?", user.ID).Delete(&models.Reply{})
	db.Where("question_id IN (?)",
		db.Model(&models.Question{}).Select("id").Where("author_id = ?", user.ID),
	).Delete(&models.Reply{})
	db.Where("author_id = ?", user.ID).Delete(&models.Question{})

	if err := db.Delete(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to delete user",
		})
	}

	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}

// ResetUserPassword resets a user's password (admin function)
func ResetUserPassword(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var passwordData struct {
		NewPassword string `json:"new_password"`
	}

	if err := c.BodyParser(&passwordData); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(passwordData.NewPassword) < 6 {
		return c.Status(400).JSON(fiber.Map{
			"error": "Password must be at least 6 characters",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(passwordData.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	user.Password = string(hashedPassword)

	if err := db.Save(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to reset password",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Password reset successfully",
	})
}
