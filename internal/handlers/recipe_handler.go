package handlers

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/artursniegowski/Recipe-APP-API/internal/middleware"
	"github.com/artursniegowski/Recipe-APP-API/internal/models"
	"github.com/artursniegowski/Recipe-APP-API/internal/repositories"
	"github.com/artursniegowski/Recipe-APP-API/internal/services"
)

// RecipeHandler handles HTTP requests for recipes.
type RecipeHandler struct {
	service   *services.RecipeService
	uploadDir string
	validate  *validator.Validate
}

// NewRecipeHandler creates a new RecipeHandler. Uploaded recipe images
// are written under uploadDir.
func NewRecipeHandler(service *services.RecipeService, uploadDir string) *RecipeHandler {
	return &RecipeHandler{
		service:   service,
		uploadDir: uploadDir,
		validate:  validator.New(),
	}
}

// RegisterRoutes registers the recipe routes with the Fiber app.
func (h *RecipeHandler) RegisterRoutes(router fiber.Router) {
	recipes := router.Group("/recipes")
	recipes.Get("/", h.HandleList)
	recipes.Post("/", h.HandleCreate)
	recipes.Get("/:id", h.HandleGet)
	recipes.Put("/:id", h.HandleUpdate)
	recipes.Patch("/:id", h.HandleUpdate)
	recipes.Delete("/:id", h.HandleDelete)
	recipes.Post("/:id/upload-image", h.HandleUploadImage)
}

// recipeSummary is the list output shape.
type recipeSummary struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"`
}

// recipeDetail extends the summary with description and labels. The two
// shapes mirror the list/detail split of the API: the listing stays
// lean, the detail view carries everything.
type recipeDetail struct {
	recipeSummary
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Tags        []models.Label `json:"tags"`
	Ingredients []models.Label `json:"ingredients"`
}

func newRecipeSummary(r models.Recipe) recipeSummary {
	return recipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
	}
}

func newRecipeDetail(r models.Recipe) recipeDetail {
	tags := make([]models.Label, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, t.AsLabel())
	}
	ingredients := make([]models.Label, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ingredients = append(ingredients, i.AsLabel())
	}
	return recipeDetail{
		recipeSummary: newRecipeSummary(r),
		Description:   r.Description,
		Image:         r.Image,
		Tags:          tags,
		Ingredients:   ingredients,
	}
}

// LabelPayload is a nested tag or ingredient descriptor.
type LabelPayload struct {
	Name string `json:"name" validate:"required,max=255"`
}

func labelInputs(payloads []LabelPayload) []services.LabelInput {
	inputs := make([]services.LabelInput, 0, len(payloads))
	for _, p := range payloads {
		inputs = append(inputs, services.LabelInput{Name: p.Name})
	}
	return inputs
}

// CreateRecipeRequest is the recipe creation payload. Omitted label
// lists simply start the recipe without labels.
type CreateRecipeRequest struct {
	Title       string           `json:"title" validate:"required,max=255"`
	TimeMinutes *int             `json:"time_minutes" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Link        string           `json:"link" validate:"omitempty,url,max=255"`
	Description string           `json:"description"`
	Tags        []LabelPayload   `json:"tags" validate:"omitempty,dive"`
	Ingredients []LabelPayload   `json:"ingredients" validate:"omitempty,dive"`
}

// UpdateRecipeRequest is the recipe update payload. Every field is
// optional; for tags and ingredients a present-but-empty list clears
// the associations while an absent key leaves them alone.
type UpdateRecipeRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=255"`
	TimeMinutes *int             `json:"time_minutes"`
	Price       *decimal.Decimal `json:"price"`
	Link        *string          `json:"link" validate:"omitempty,url,max=255"`
	Description *string          `json:"description"`
	Tags        *[]LabelPayload  `json:"tags" validate:"omitempty,dive"`
	Ingredients *[]LabelPayload  `json:"ingredients" validate:"omitempty,dive"`
}

// HandleList retrieves the caller's recipes, newest first, optionally
// filtered with ?tags=1,2 and ?ingredients=3,4.
func (h *RecipeHandler) HandleList(c *fiber.Ctx) error {
	tagIDs, err := parseIDList(c.Query("tags"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid tags filter",
			"error":   err.Error(),
		})
	}
	ingredientIDs, err := parseIDList(c.Query("ingredients"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid ingredients filter",
			"error":   err.Error(),
		})
	}

	recipes, err := h.service.ListRecipes(middleware.CurrentUserID(c), repositories.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		log.Printf("Error listing recipes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve recipes",
		})
	}

	views := make([]recipeSummary, 0, len(recipes))
	for _, r := range recipes {
		views = append(views, newRecipeSummary(r))
	}
	return c.JSON(views)
}

// HandleCreate creates a new recipe for the caller.
func (h *RecipeHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing recipe create body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	recipe, err := h.service.CreateRecipe(middleware.CurrentUserID(c), services.RecipeInput{
		Title:       req.Title,
		TimeMinutes: *req.TimeMinutes,
		Price:       *req.Price,
		Link:        req.Link,
		Description: req.Description,
		Tags:        labelInputs(req.Tags),
		Ingredients: labelInputs(req.Ingredients),
	})
	if err != nil {
		log.Printf("Error creating recipe: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create recipe",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(newRecipeDetail(*recipe))
}

// HandleGet retrieves one of the caller's recipes.
func (h *RecipeHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return notFoundResponse(c, "Recipe")
	}

	recipe, err := h.service.GetRecipe(middleware.CurrentUserID(c), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundResponse(c, "Recipe")
		}
		log.Printf("Error getting recipe %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve recipe",
		})
	}
	return c.JSON(newRecipeDetail(*recipe))
}

// HandleUpdate applies a full (PUT) or partial (PATCH) update to one of
// the caller's recipes.
func (h *RecipeHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return notFoundResponse(c, "Recipe")
	}

	var req UpdateRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing recipe update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}
	if c.Method() == fiber.MethodPut {
		if req.Title == nil || req.TimeMinutes == nil || req.Price == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  fiber.Map{"title": "title, time_minutes and price are required."},
			})
		}
	}

	update := services.RecipeUpdate{
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Link:        req.Link,
		Description: req.Description,
	}
	if req.Tags != nil {
		inputs := labelInputs(*req.Tags)
		update.Tags = &inputs
	}
	if req.Ingredients != nil {
		inputs := labelInputs(*req.Ingredients)
		update.Ingredients = &inputs
	}

	recipe, err := h.service.UpdateRecipe(middleware.CurrentUserID(c), id, update)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundResponse(c, "Recipe")
		}
		log.Printf("Error updating recipe %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update recipe",
		})
	}
	return c.JSON(newRecipeDetail(*recipe))
}

// HandleDelete removes one of the caller's recipes.
func (h *RecipeHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return notFoundResponse(c, "Recipe")
	}

	if err := h.service.DeleteRecipe(middleware.CurrentUserID(c), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundResponse(c, "Recipe")
		}
		log.Printf("Error deleting recipe %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete recipe",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// HandleUploadImage attaches an image file to one of the caller's
// recipes. The file is stored under the upload directory with a random
// name; re-uploading replaces the stored path and removes the old file.
func (h *RecipeHandler) HandleUploadImage(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return notFoundResponse(c, "Recipe")
	}
	userID := middleware.CurrentUserID(c)

	if _, err := h.service.GetRecipe(userID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundResponse(c, "Recipe")
		}
		log.Printf("Error getting recipe %d for image upload: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve recipe",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"image": "No image file provided."},
		})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExtensions[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"image": "Unsupported image type."},
		})
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		log.Printf("Error creating upload directory %q: %v", h.uploadDir, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not store image",
		})
	}
	dest := filepath.Join(h.uploadDir, uuid.New().String()+ext)
	if err := c.SaveFile(file, dest); err != nil {
		log.Printf("Error saving image for recipe %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not store image",
		})
	}

	recipe, previous, err := h.service.SetRecipeImage(userID, id, dest)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundResponse(c, "Recipe")
		}
		log.Printf("Error storing image path for recipe %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not store image",
		})
	}
	if previous != "" && previous != dest {
		if err := os.Remove(previous); err != nil && !os.IsNotExist(err) {
			log.Printf("Error removing old image %q: %v", previous, err)
		}
	}

	return c.JSON(fiber.Map{
		"id":    recipe.ID,
		"image": recipe.Image,
	})
}
