package handler

import (
	"strconv"
	"strings"

	"exam-grader/internal/domain"
	"exam-grader/internal/dto"
	"exam-grader/internal/logger"
	"exam-grader/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ExamHandler handles test listing, extraction and scoring HTTP requests
type ExamHandler struct {
	service service.ExamService
}

// NewExamHandler creates a new ExamHandler instance
func NewExamHandler(service service.ExamService) *ExamHandler {
	return &ExamHandler{service: service}
}

// RegisterRoutes mounts the exam routes on the given router group
func (h *ExamHandler) RegisterRoutes(api fiber.Router) {
	api.Get("/tests", h.ListTests)
	api.Get("/tests/:name", h.GetTest)
	api.Post("/tests/:name/answers", h.SubmitAnswers)
}

// ListTests handles GET /api/tests
func (h *ExamHandler) ListTests(c *fiber.Ctx) error {
	resp, err := h.service.ListTests(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetTest handles GET /api/tests/:name and returns the extracted questions
func (h *ExamHandler) GetTest(c *fiber.Ctx) error {
	name := c.Params("name")
	resp, err := h.service.GetTest(c.Context(), name)
	if err != nil {
		logger.Get().Error("Failed to extract test",
			zap.Error(err),
			zap.String("test", name),
		)
		return err
	}
	return c.JSON(resp)
}

// SubmitAnswers handles POST /api/tests/:name/answers, scoring the
// submitted labels against the matched answer key
func (h *ExamHandler) SubmitAnswers(c *fiber.Ctx) error {
	name := c.Params("name")

	var req dto.SubmitAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	submission, err := toSubmission(req.Answers)
	if err != nil {
		return err
	}

	resp, err := h.service.Submit(c.Context(), name, submission)
	if err != nil {
		logger.Get().Error("Failed to score submission",
			zap.Error(err),
			zap.String("test", name),
		)
		return err
	}
	return c.JSON(resp)
}

// toSubmission converts the request's string-keyed answers into a
// Submission. Blank labels mean unanswered; anything else must be a single
// A-E letter.
func toSubmission(answers map[string]string) (domain.Submission, error) {
	submission := make(domain.Submission, len(answers))
	for numStr, label := range answers {
		number, err := strconv.Atoi(strings.TrimSpace(numStr))
		if err != nil || number < 1 {
			return nil, domain.NewInvalidInputError("Invalid question number: " + numStr)
		}
		label = strings.ToUpper(strings.TrimSpace(label))
		if label == "" {
			continue
		}
		if !domain.IsChoiceLabel(label) {
			return nil, domain.NewInvalidInputError("Invalid answer label for question " + numStr + ": " + label)
		}
		submission[number] = label
	}
	return submission, nil
}
