package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/repomind-ai/repomind/internal/service"
)

// AskHandler handles question-answering endpoints.
type AskHandler struct {
	ask *service.AskService
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(ask *service.AskService) *AskHandler {
	return &AskHandler{ask: ask}
}

// Register sets up ask routes.
func (h *AskHandler) Register(router fiber.Router) {
	router.Post("/projects/:id/ask", h.Ask)
}

// Ask answers a question about a project's codebase.
func (h *AskHandler) Ask(c fiber.Ctx) error {
	var body struct {
		Question string `json:"question"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question is required"})
	}

	answer, matches, err := h.ask.Ask(c.Context(), c.Params("id"), body.Question)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	sources := make([]fiber.Map, len(matches))
	for i, m := range matches {
		sources[i] = fiber.Map{
			"file_path":  m.FilePath,
			"summary":    m.Summary,
			"similarity": m.Similarity,
		}
	}

	return c.JSON(fiber.Map{
		"answer":  answer,
		"sources": sources,
	})
}
