package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/artursniegowski/Recipe-APP-API/internal/middleware"
	"github.com/artursniegowski/Recipe-APP-API/internal/models"
	"github.com/artursniegowski/Recipe-APP-API/internal/repositories"
	"github.com/artursniegowski/Recipe-APP-API/internal/services"
)

// LabelHandler handles HTTP requests for one label kind. It is wired
// twice, once for tags and once for ingredients; the enabled operations
// are exactly list, update and destroy.
type LabelHandler struct {
	service  *services.LabelService
	resource string // label for error messages, e.g. "Tag"
	path     string // route segment, e.g. "tags"
	validate *validator.Validate
}

// NewLabelHandler creates a handler serving the given label kind under
// /<path>.
func NewLabelHandler(service *services.LabelService, resource, path string) *LabelHandler {
	return &LabelHandler{
		service:  service,
		resource: resource,
		path:     path,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the label routes with the Fiber app. There is
// deliberately no POST and no GET detail route.
func (h *LabelHandler) RegisterRoutes(router fiber.Router) {
	labels := router.Group("/" + h.path)
	labels.Get("/", h.HandleList)
	labels.Patch("/:id", h.HandleUpdate)
	labels.Delete("/:id", h.HandleDelete)
}

// HandleList retrieves the caller's labels, name descending. With
// ?assigned_only=1 only labels attached to at least one recipe appear.
func (h *LabelHandler) HandleList(c *fiber.Ctx) error {
	assignedOnly := false
	if raw := c.Query("assigned_only"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid assigned_only value",
				"error":   err.Error(),
			})
		}
		assignedOnly = n != 0
	}

	labels, err := h.service.List(middleware.CurrentUserID(c), assignedOnly)
	if err != nil {
		log.Printf("Error listing %s: %v", h.path, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve " + h.path,
		})
	}
	if labels == nil {
		labels = []models.Label{}
	}
	return c.JSON(labels)
}

// RenameLabelRequest is the label update payload.
type RenameLabelRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// HandleUpdate renames one of the caller's labels.
func (h *LabelHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return notFoundResponse(c, h.resource)
	}

	var req RenameLabelRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing %s update body: %v", h.resource, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	label, err := h.service.Rename(middleware.CurrentUserID(c), id, req.Name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundResponse(c, h.resource)
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Update failed",
				"errors":  fiber.Map{"name": "You already have a label with this name."},
			})
		}
		log.Printf("Error renaming %s %d: %v", h.resource, id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update " + h.resource,
		})
	}
	return c.JSON(label)
}

// HandleDelete removes one of the caller's labels.
func (h *LabelHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return notFoundResponse(c, h.resource)
	}

	if err := h.service.Delete(middleware.CurrentUserID(c), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundResponse(c, h.resource)
		}
		log.Printf("Error deleting %s %d: %v", h.resource, id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete " + h.resource,
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
