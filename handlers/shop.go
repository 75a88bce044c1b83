// handlers/shop.go
package handlers

import (
	"errors"

	"studyclub/database"
	"studyclub/middleware"
	"studyclub/models"
	"studyclub/services"

	"github.com/gofiber/fiber/v2"
)

type ShopActionRequest struct {
	Tier string `json:"tier"`
}

// GetShop returns the badge catalog with per-tier state for the user.
func GetShop(c *fiber.Ctx) error {
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
		"score":   user.Score,
		"items":   services.ShopCatalog(&user),
	})
}

// PurchaseBadge buys the next badge on the ladder (or another diamond).
func PurchaseBadge(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req ShopActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := services.PurchaseBadge(userID, req.Tier)
	if err != nil {
		return shopError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"purchase": result,
	})
}

// EquipBadge puts on an owned badge.
func EquipBadge(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req ShopActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := services.EquipBadge(userID, req.Tier)
	if err != nil {
		return shopError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"badge":   result,
	})
}

// shopError maps shop service errors onto HTTP statuses.
func shopError(c *fiber.Ctx, err error) error {
	var locked *services.TierLockedError
	switch {
	case errors.As(err, &locked):
		return c.Status(400).JSON(fiber.Map{
			"error":         "Badge is locked",
			"tier":          locked.Tier,
			"required_tier": locked.Required,
		})
	case errors.Is(err, services.ErrInsufficientPoints):
		return c.Status(400).JSON(fiber.Map{"error": "Insufficient points"})
	case errors.Is(err, services.ErrUnknownTier):
		return c.Status(400).JSON(fiber.Map{"error": "Unknown badge tier"})
	case errors.Is(err, services.ErrTierNotOwned):
		return c.Status(400).JSON(fiber.Map{"error": "Badge not owned"})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Shop operation failed"})
	}
}
