// handlers/mission.go
package handlers

import (
	"errors"
	"time"

	"studyclub/middleware"
	"studyclub/services"

	"github.com/gofiber/fiber/v2"
)

type SaveMissionRequest struct {
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
}

// SaveMission defines or replaces the user's daily mission. Redefining
// discards prior progress and re-arms the one-time completion reward.
func SaveMission(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req SaveMissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 30
	}

	mission, err := services.DefineMission(userID, req.Description, req.DurationMinutes)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save mission"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"mission": mission,
	})
}

// GetMission evaluates mission progress at request time. The completion
// reward, if due, is granted here.
func GetMission(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	progress, err := services.EvaluateMission(userID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrNoMission) {
			return c.JSON(fiber.Map{
				"success": true,
				"mission": nil,
			})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to evaluate mission"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"mission": progress,
	})
}
