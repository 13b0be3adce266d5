package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/artursniegowski/Recipe-APP-API/internal/models"
	"github.com/artursniegowski/Recipe-APP-API/internal/repositories"
	"github.com/artursniegowski/Recipe-APP-API/pkg/rabbitmq"
)

// EventPublisher publishes recipe lifecycle events. A nil publisher
// disables publishing.
type EventPublisher interface {
	PublishRecipeEvent(event rabbitmq.RecipeEvent) error
}

// LabelInput is a tag or ingredient descriptor in a recipe payload.
type LabelInput struct {
	Name string
}

// RecipeInput carries the fields for creating a recipe. Omitted label
// lists arrive as empty slices; there is no prior state to preserve.
type RecipeInput struct {
	Title       string
	TimeMinutes int
	Price       decimal.Decimal
	Link        string
	Description string
	Tags        []LabelInput
	Ingredients []LabelInput
}

// RecipeUpdate carries a partial update. Nil means the field was not
// sent. For Tags and Ingredients that distinction is load-bearing: nil
// leaves the associations untouched, a pointer to an empty slice clears
// them.
type RecipeUpdate struct {
	Title       *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Link        *string
	Description *string
	Tags        *[]LabelInput
	Ingredients *[]LabelInput
}

// RecipeService handles business logic for recipes, including the
// reconciliation of nested tag and ingredient lists.
type RecipeService struct {
	recipeRepo     repositories.RecipeRepository
	tagRepo        repositories.LabelRepository
	ingredientRepo repositories.LabelRepository
	events         EventPublisher
}

// NewRecipeService creates a new RecipeService. events may be nil.
func NewRecipeService(
	recipeRepo repositories.RecipeRepository,
	tagRepo repositories.LabelRepository,
	ingredientRepo repositories.LabelRepository,
	events EventPublisher,
) *RecipeService {
	return &RecipeService{
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		events:         events,
	}
}

// ListRecipes retrieves the user's recipes, newest first, optionally
// filtered by tag/ingredient IDs.
func (s *RecipeService) ListRecipes(userID uint, filter repositories.RecipeFilter) ([]models.Recipe, error) {
	return s.recipeRepo.ListByUser(userID, filter)
}

// GetRecipe retrieves one of the user's recipes with its labels.
func (s *RecipeService) GetRecipe(userID, id uint) (*models.Recipe, error) {
	return s.recipeRepo.GetByID(userID, id)
}

// CreateRecipe creates a recipe and attaches its labels, reusing any
// same-named label the user already owns.
func (s *RecipeService) CreateRecipe(userID uint, input RecipeInput) (*models.Recipe, error) {
	recipe := &models.Recipe{
		UserID:      userID,
		Title:       input.Title,
		TimeMinutes: input.TimeMinutes,
		Price:       input.Price,
		Link:        input.Link,
		Description: input.Description,
	}
	if err := s.recipeRepo.Create(recipe); err != nil {
		return nil, err
	}

	if len(input.Tags) > 0 {
		labels, err := s.resolveLabels(s.tagRepo, userID, input.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.recipeRepo.ReplaceTags(recipe, labels); err != nil {
			return nil, err
		}
	}
	if len(input.Ingredients) > 0 {
		labels, err := s.resolveLabels(s.ingredientRepo, userID, input.Ingredients)
		if err != nil {
			return nil, err
		}
		if err := s.recipeRepo.ReplaceIngredients(recipe, labels); err != nil {
			return nil, err
		}
	}

	created, err := s.recipeRepo.GetByID(userID, recipe.ID)
	if err != nil {
		return nil, err
	}
	s.publish("recipe.created", created)
	return created, nil
}

// UpdateRecipe applies a partial update to one of the user's recipes.
// Label lists absent from the payload are left alone; present lists
// replace the current associations entirely, empty list included.
func (s *RecipeService) UpdateRecipe(userID, id uint, update RecipeUpdate) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		recipe.Title = *update.Title
	}
	if update.TimeMinutes != nil {
		recipe.TimeMinutes = *update.TimeMinutes
	}
	if update.Price != nil {
		recipe.Price = *update.Price
	}
	if update.Link != nil {
		recipe.Link = *update.Link
	}
	if update.Description != nil {
		recipe.Description = *update.Description
	}
	if err := s.recipeRepo.Update(recipe); err != nil {
		return nil, err
	}

	if update.Tags != nil {
		labels, err := s.resolveLabels(s.tagRepo, userID, *update.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.recipeRepo.ReplaceTags(recipe, labels); err != nil {
			return nil, err
		}
	}
	if update.Ingredients != nil {
		labels, err := s.resolveLabels(s.ingredientRepo, userID, *update.Ingredients)
		if err != nil {
			return nil, err
		}
		if err := s.recipeRepo.ReplaceIngredients(recipe, labels); err != nil {
			return nil, err
		}
	}

	return s.recipeRepo.GetByID(userID, id)
}

// SetRecipeImage records the stored image path for one of the user's
// recipes and returns the previously stored path so the caller can
// remove the stale file.
func (s *RecipeService) SetRecipeImage(userID, id uint, path string) (*models.Recipe, string, error) {
	recipe, err := s.recipeRepo.GetByID(userID, id)
	if err != nil {
		return nil, "", err
	}
	previous := recipe.Image
	recipe.Image = path
	if err := s.recipeRepo.Update(recipe); err != nil {
		return nil, "", err
	}
	return recipe, previous, nil
}

// DeleteRecipe removes one of the user's recipes.
func (s *RecipeService) DeleteRecipe(userID, id uint) error {
	recipe, err := s.recipeRepo.GetByID(userID, id)
	if err != nil {
		return err
	}
	if err := s.recipeRepo.Delete(userID, id); err != nil {
		return err
	}
	s.publish("recipe.deleted", recipe)
	return nil
}

// resolveLabels turns label descriptors into persisted labels owned by
// the user: existing names are reused, missing ones created. When a
// concurrent request creates the same (user, name) pair first, the
// insert fails on the unique constraint and the loser re-reads and
// reuses the winner's row. Repeated names in one payload collapse to a
// single label.
func (s *RecipeService) resolveLabels(repo repositories.LabelRepository, userID uint, inputs []LabelInput) ([]models.Label, error) {
	labels := make([]models.Label, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if _, ok := seen[in.Name]; ok {
			continue
		}
		seen[in.Name] = struct{}{}

		label, err := repo.GetByName(userID, in.Name)
		if errors.Is(err, repositories.ErrNotFound) {
			label, err = repo.Create(userID, in.Name)
			if errors.Is(err, repositories.ErrDuplicate) {
				label, err = repo.GetByName(userID, in.Name)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve label %q: %w", in.Name, err)
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// publish sends a lifecycle event when a publisher is configured.
// Publishing failures are logged and never surfaced to the caller.
func (s *RecipeService) publish(eventType string, recipe *models.Recipe) {
	if s.events == nil {
		return
	}
	event := rabbitmq.RecipeEvent{
		ID:       uuid.New().String(),
		Type:     eventType,
		UserID:   recipe.UserID,
		RecipeID: recipe.ID,
		Title:    recipe.Title,
		At:       time.Now(),
	}
	if err := s.events.PublishRecipeEvent(event); err != nil {
		log.Printf("Failed to publish %s event for recipe %d: %v", eventType, recipe.ID, err)
	}
}
