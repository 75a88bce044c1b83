// handlers/users.go
package handlers

import (
	"fmt"
	"strings"
	"time"

	"studyclub/database"
	"studyclub/middleware"
	"studyclub/models"
	"studyclub/services"

	"github.com/gofiber/fiber/v2"
)

type UpdateUserRequest struct {
	Username string `json:"username"`
}

// GetCurrentUser returns the authenticated user's profile
func GetCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
		"badge":   badgeDisplay(&user),
	})
}

// UpdateCurrentUser changes the user's display name. Names are unique
// across users, so the change is rejected if another account holds it.
func UpdateCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	name := strings.TrimSpace(req.Username)
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Username is required"})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	if name == user.Username {
		return c.Status(400).JSON(fiber.Map{"error": "Username unchanged"})
	}

	var existing models.User
	if err := db.Where("username = ?", name).First(&existing).Error; err == nil && existing.ID != userID {
		return c.Status(400).JSON(fiber.Map{"error": "Username already taken"})
	}

	if err := db.Model(&models.User{}).Where("id = ?", userID).
		Update("username", name).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update username"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"username": name,
	})
}

// GetUserStats returns the user's study statistics
func GetUserStats(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"score":               user.Score,
		"total_study_seconds": user.TotalStudySeconds,
		"best_study_seconds":  user.BestStudySeconds,
		"total_study_display": formatDuration(user.TotalStudySeconds),
		"best_study_display":  formatDuration(user.BestStudySeconds),
		"equipped_badge":      user.EquippedBadge,
		"owned_badge_tier":    user.OwnedBadgeTier,
		"diamond_badge_count": user.DiamondBadgeCount,
		"badge_display":       badgeDisplay(&user),
		"member_since":        user.CreatedAt.Format(time.RFC3339),
	})
}

// badgeDisplay renders the equipped badge the way the profile shows it:
// the diamond badge always carries its owned count.
func badgeDisplay(user *models.User) string {
	if user.EquippedBadge == "" {
		return "none"
	}
	if user.EquippedBadge == services.BadgeDiamond && user.DiamondBadgeCount > 0 {
		return fmt.Sprintf("%s (x%d)", user.EquippedBadge, user.DiamondBadgeCount)
	}
	return user.EquippedBadge
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
