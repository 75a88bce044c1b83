// handlers/questions.go - Q&A board
package handlers

import (
	"time"

	"studyclub/database"
	"studyclub/middleware"
	"studyclub/models"
	"studyclub/services"

	"github.com/gofiber/fiber/v2"
)

type CreateQuestionRequest struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

type CreateReplyRequest struct {
	Body string `json:"body"`
}

// GetQuestions lists questions, newest first, optionally filtered by
// category.
func GetQuestions(c *fiber.Ctx) error {
	db := database.GetDB()

	query := db.Model(&models.Question{}).Preload("Replies").Order("created_at DESC")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var questions []models.Question
	if err := query.Find(&questions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch questions"})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"questions": questions,
		"total":     len(questions),
	})
}

// GetQuestion returns one question with its replies.
func GetQuestion(c *fiber.Ctx) error {
	db := database.GetDB()

	var question models.Question
	if err := db.Preload("Replies").First(&question, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Question not found"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"question": question,
	})
}

// CreateQuestion posts a question and grants the daily-capped question
// reward. Hitting the cap does not block the post; it is reported in the
// response.
func CreateQuestion(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title == "" || req.Content == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Title and content required"})
	}

	db := database.GetDB()
	question := models.Question{
		AuthorID:  userID,
		Category:  req.Category,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	if err := db.Create(&question).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create question"})
	}

	reward, err := services.GrantDailyCappedReward(userID, services.RewardQuestion, services.QuestionReward)
	if err != nil {
		// The post stands; the reward grant is terminal for this attempt.
		return c.Status(201).JSON(fiber.Map{
			"success":  true,
			"question": question,
			"reward":   nil,
		})
	}

	return c.Status(201).JSON(fiber.Map{
		"success":  true,
		"question": question,
		"reward":   reward,
	})
}

// DeleteQuestion removes a question. Author or admin only.
func DeleteQuestion(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var question models.Question
	if err := db.First(&question, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Question not found"})
	}

	if question.AuthorID != userID && !middleware.IsAdmin(c) {
		return c.Status(403).JSON(fiber.Map{"error": "Only the author or an admin can delete this question"})
	}

	if err := db.Where("question_id = ?", question.ID).Delete(&models.Reply{}).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete question"})
	}
	if err := db.Delete(&question).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete question"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// CreateReply posts a reply and grants the daily-capped reply reward.
func CreateReply(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	username, err := middleware.GetUsername(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Body == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Reply body required"})
	}

	db := database.GetDB()
	var question models.Question
	if err := db.First(&question, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Question not found"})
	}

	reply := models.Reply{
		QuestionID: question.ID,
		AuthorID:   userID,
		AuthorName: username,
		Body:       req.Body,
		CreatedAt:  time.Now(),
	}

	if err := db.Create(&reply).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create reply"})
	}

	reward, err := services.GrantDailyCappedReward(userID, services.RewardReply, services.ReplyReward)
	if err != nil {
		return c.Status(201).JSON(fiber.Map{
			"success": true,
			"reply":   reply,
			"reward":  nil,
		})
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"reply":   reply,
		"reward":  reward,
	})
}

// DeleteReply removes a reply. Author or admin only.
func DeleteReply(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var reply models.Reply
	if err := db.Where("id = ? AND question_id = ?", c.Params("replyId"), c.Params("id")).
		First(&reply).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Reply not found"})
	}

	if reply.AuthorID != userID && !middleware.IsAdmin(c) {
		return c.Status(403).JSON(fiber.Map{"error": "Only the author or an admin can delete this reply"})
	}

	if err := db.Delete(&reply).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete reply"})
	}

	return c.JSON(fiber.Map{"success": true})
}
