package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/artursniegowski/Recipe-APP-API/internal/models"
)

// GORMRecipeRepository is a GORM implementation of RecipeRepository.
type GORMRecipeRepository struct {
	db *gorm.DB
}

// NewGORMRecipeRepository creates a new instance of GORMRecipeRepository.
func NewGORMRecipeRepository(db *gorm.DB) *GORMRecipeRepository {
	return &GORMRecipeRepository{
		db: db,
	}
}

// ListByUser retrieves the user's recipes, newest first. Tag/ingredient
// filters join through the association tables; a recipe matching several
// requested IDs still appears once.
func (r *GORMRecipeRepository) ListByUser(userID uint, filter RecipeFilter) ([]models.Recipe, error) {
	q := r.db.Model(&models.Recipe{}).Where("recipes.user_id = ?", userID)
	if len(filter.TagIDs) > 0 {
		q = q.Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Where("recipe_tags.tag_id IN ?", filter.TagIDs)
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = recipes.id").
			Where("recipe_ingredients.ingredient_id IN ?", filter.IngredientIDs)
	}

	var recipes []models.Recipe
	if err := q.Distinct("recipes.*").Order("recipes.id DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes for user %d: %w", userID, err)
	}
	return recipes, nil
}

// GetByID retrieves one of the user's recipes with its labels preloaded.
func (r *GORMRecipeRepository) GetByID(userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.Preload("Tags").Preload("Ingredients").
		First(&recipe, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get recipe by ID %d: %w", id, err)
	}
	return &recipe, nil
}

// Create inserts a new recipe. Label associations are managed separately
// through ReplaceTags/ReplaceIngredients.
func (r *GORMRecipeRepository) Create(recipe *models.Recipe) error {
	if err := r.db.Omit(clause.Associations).Create(recipe).Error; err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// Update saves the recipe's scalar fields.
func (r *GORMRecipeRepository) Update(recipe *models.Recipe) error {
	res := r.db.Omit(clause.Associations).Save(recipe)
	if res.Error != nil {
		return fmt.Errorf("failed to update recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipe with ID %d: %w", recipe.ID, ErrNotFound)
	}
	return nil
}

// Delete removes one of the user's recipes along with its association
// rows. Deleting someone else's recipe reports ErrNotFound and mutates
// nothing.
func (r *GORMRecipeRepository) Delete(userID, id uint) error {
	var recipe models.Recipe
	if err := r.db.First(&recipe, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("recipe with ID %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to get recipe for deletion: %w", err)
	}
	if err := r.db.Select(clause.Associations).Delete(&recipe).Error; err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	return nil
}

// ReplaceTags makes the recipe's tag set exactly the given labels.
func (r *GORMRecipeRepository) ReplaceTags(recipe *models.Recipe, labels []models.Label) error {
	assoc := r.db.Model(recipe).Association("Tags")
	if len(labels) == 0 {
		if err := assoc.Clear(); err != nil {
			return fmt.Errorf("failed to clear tags for recipe %d: %w", recipe.ID, err)
		}
		return nil
	}
	tags := make([]models.Tag, 0, len(labels))
	for _, l := range labels {
		tags = append(tags, models.Tag{ID: l.ID, UserID: recipe.UserID, Name: l.Name})
	}
	if err := assoc.Replace(tags); err != nil {
		return fmt.Errorf("failed to replace tags for recipe %d: %w", recipe.ID, err)
	}
	return nil
}

// ReplaceIngredients makes the recipe's ingredient set exactly the given labels.
func (r *GORMRecipeRepository) ReplaceIngredients(recipe *models.Recipe, labels []models.Label) error {
	assoc := r.db.Model(recipe).Association("Ingredients")
	if len(labels) == 0 {
		if err := assoc.Clear(); err != nil {
			return fmt.Errorf("failed to clear ingredients for recipe %d: %w", recipe.ID, err)
		}
		return nil
	}
	ingredients := make([]models.Ingredient, 0, len(labels))
	for _, l := range labels {
		ingredients = append(ingredients, models.Ingredient{ID: l.ID, UserID: recipe.UserID, Name: l.Name})
	}
	if err := assoc.Replace(ingredients); err != nil {
		return fmt.Errorf("failed to replace ingredients for recipe %d: %w", recipe.ID, err)
	}
	return nil
}
