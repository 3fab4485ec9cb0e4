package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/repomind-ai/repomind/internal/port"
	"github.com/repomind-ai/repomind/internal/service"
)

// ProjectHandler handles project and commit endpoints.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Register sets up project routes.
func (h *ProjectHandler) Register(router fiber.Router) {
	projects := router.Group("/projects")
	projects.Post("/", h.Create)
	projects.Get("/", h.List)
	projects.Get("/:id", h.Get)
	projects.Get("/:id/commits", h.ListCommits)
	projects.Delete("/:id", h.Delete)
}

// Create registers a repository and starts its first ingestion.
func (h *ProjectHandler) Create(c fiber.Ctx) error {
	var body struct {
		Name    string `json:"name"`
		RepoURL string `json:"repo_url"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Name == "" || body.RepoURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and repo_url are required"})
	}

	project, err := h.projects.CreateProject(c.Context(), body.Name, body.RepoURL)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// List returns all active projects.
func (h *ProjectHandler) List(c fiber.Ctx) error {
	projects, err := h.projects.ListProjects(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"projects": projects})
}

// Get returns one project.
func (h *ProjectHandler) Get(c fiber.Ctx) error {
	project, err := h.projects.GetProject(c.Context(), c.Params("id"))
	if errors.Is(err, port.ErrProjectNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(project)
}

// ListCommits returns a project's commits with their summary state. Reading
// this endpoint also triggers an opportunistic background re-sync, so
// clients can poll it until summaries converge.
func (h *ProjectHandler) ListCommits(c fiber.Ctx) error {
	commits, err := h.projects.ListCommits(c.Context(), c.Params("id"))
	if errors.Is(err, port.ErrProjectNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"commits": commits})
}

// Delete soft-deletes a project.
func (h *ProjectHandler) Delete(c fiber.Ctx) error {
	err := h.projects.DeleteProject(c.Context(), c.Params("id"))
	if errors.Is(err, port.ErrProjectNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}
