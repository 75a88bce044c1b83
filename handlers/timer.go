// handlers/timer.go
package handlers

import (
	"errors"

	"studyclub/middleware"
	"studyclub/services"

	"github.com/gofiber/fiber/v2"
)

// StartTimer starts (or resumes) the study timer. Starting an already
// running timer is a no-op that returns the live state.
func StartTimer(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	state, err := services.GetTimerService().Start(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to start timer"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"timer":   state,
	})
}

// StopTimer stops the study timer and finalizes session statistics.
func StopTimer(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	state, err := services.GetTimerService().Stop(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to stop timer"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"timer":   state,
	})
}

// GetTimer returns the current timer snapshot.
func GetTimer(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	state, err := services.GetTimerService().State(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to read timer"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"timer":   state,
	})
}
