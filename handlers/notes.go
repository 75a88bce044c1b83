// handlers/notes.go - Dated notebook
package handlers

import (
	"time"

	"studyclub/database"
	"studyclub/middleware"
	"studyclub/models"

	"github.com/gofiber/fiber/v2"
)

// Note types match the notebook tabs.
var noteTypes = map[string]bool{
	"goal":    true,
	"study":   true,
	"reading": true,
	"diary":   true,
}

type NoteRequest struct {
	Date    string `json:"date"` // "2006-01-02"
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GetNotes lists the user's notes for a date, optionally filtered by type.
func GetNotes(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	db := database.GetDB()
	query := db.Where("user_id = ? AND date = ?", userID, date).Order("created_at ASC")
	if noteType := c.Query("type"); noteType != "" {
		query = query.Where("type = ?", noteType)
	}

	var notes []models.Note
	if err := query.Find(&notes).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch notes"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"date":    date,
		"notes":   notes,
	})
}

// CreateNote adds a notebook entry.
func CreateNote(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if msg := validateNote(&req); msg != "" {
		return c.Status(400).JSON(fiber.Map{"error": msg})
	}

	db := database.GetDB()
	note := models.Note{
		UserID:  userID,
		Date:    req.Date,
		Type:    req.Type,
		Title:   req.Title,
		Content: req.Content,
	}

	if err := db.Create(&note).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create note"})
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"note":    note,
	})
}

// UpdateNote edits an existing notebook entry. Owner only.
func UpdateNote(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if msg := validateNote(&req); msg != "" {
		return c.Status(400).JSON(fiber.Map{"error": msg})
	}

	db := database.GetDB()
	var note models.Note
	if err := db.Where("id = ? AND user_id = ?", c.Params("id"), userID).First(&note).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Note not found"})
	}

	if err := db.Model(&note).Updates(map[string]interface{}{
		"date":    req.Date,
		"type":    req.Type,
		"title":   req.Title,
		"content": req.Content,
	}).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update note"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"note":    note,
	})
}

// DeleteNote removes a notebook entry. Owner only.
func DeleteNote(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	result := db.Where("id = ? AND user_id = ?", c.Params("id"), userID).Delete(&models.Note{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete note"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Note not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}

func validateNote(req *NoteRequest) string {
	if req.Date == "" {
		return "Date is required"
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return "Invalid date, expected YYYY-MM-DD"
	}
	if !noteTypes[req.Type] {
		return "Invalid note type"
	}
	if req.Title == "" || req.Content == "" {
		return "Title and content required"
	}
	return ""
}
