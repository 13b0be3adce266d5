package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/artursniegowski/Recipe-APP-API/internal/models"
)

// GORMIngredientRepository is a GORM implementation of LabelRepository
// backed by the ingredients table. Mirrors GORMTagRepository.
type GORMIngredientRepository struct {
	db *gorm.DB
}

// NewGORMIngredientRepository creates a new instance of GORMIngredientRepository.
func NewGORMIngredientRepository(db *gorm.DB) *GORMIngredientRepository {
	return &GORMIngredientRepository{
		db: db,
	}
}

// ListByUser retrieves the user's ingredients ordered by name descending,
// optionally restricted to ingredients linked to at least one recipe.
func (r *GORMIngredientRepository) ListByUser(userID uint, assignedOnly bool) ([]models.Label, error) {
	q := r.db.Model(&models.Ingredient{}).Scopes(ownedBy(userID))
	if assignedOnly {
		q = q.Scopes(assignedVia("recipe_ingredients", "ingredient_id", "ingredients"))
	}

	var ingredients []models.Ingredient
	if err := q.Distinct("ingredients.*").Order("ingredients.name DESC").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients for user %d: %w", userID, err)
	}
	labels := make([]models.Label, 0, len(ingredients))
	for _, i := range ingredients {
		labels = append(labels, i.AsLabel())
	}
	return labels, nil
}

// GetByID retrieves one of the user's ingredients.
func (r *GORMIngredientRepository) GetByID(userID, id uint) (models.Label, error) {
	var ingredient models.Ingredient
	if err := r.db.Scopes(ownedBy(userID)).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Label{}, fmt.Errorf("ingredient with ID %d: %w", id, ErrNotFound)
		}
		return models.Label{}, fmt.Errorf("failed to get ingredient by ID %d: %w", id, err)
	}
	return ingredient.AsLabel(), nil
}

// GetByName retrieves the user's ingredient with that exact name.
func (r *GORMIngredientRepository) GetByName(userID uint, name string) (models.Label, error) {
	var ingredient models.Ingredient
	if err := r.db.Scopes(ownedBy(userID)).First(&ingredient, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Label{}, fmt.Errorf("ingredient named %q: %w", name, ErrNotFound)
		}
		return models.Label{}, fmt.Errorf("failed to get ingredient by name %q: %w", name, err)
	}
	return ingredient.AsLabel(), nil
}

// Create inserts a new ingredient for the user.
func (r *GORMIngredientRepository) Create(userID uint, name string) (models.Label, error) {
	ingredient := models.Ingredient{UserID: userID, Name: name}
	if err := r.db.Omit(clause.Associations).Create(&ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Label{}, fmt.Errorf("ingredient named %q: %w", name, ErrDuplicate)
		}
		return models.Label{}, fmt.Errorf("failed to create ingredient %q: %w", name, err)
	}
	return ingredient.AsLabel(), nil
}

// Rename changes the name of one of the user's ingredients.
func (r *GORMIngredientRepository) Rename(userID, id uint, name string) (models.Label, error) {
	var ingredient models.Ingredient
	if err := r.db.Scopes(ownedBy(userID)).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Label{}, fmt.Errorf("ingredient with ID %d: %w", id, ErrNotFound)
		}
		return models.Label{}, fmt.Errorf("failed to get ingredient for rename: %w", err)
	}
	ingredient.Name = name
	if err := r.db.Omit(clause.Associations).Save(&ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Label{}, fmt.Errorf("ingredient named %q: %w", name, ErrDuplicate)
		}
		return models.Label{}, fmt.Errorf("failed to rename ingredient %d: %w", id, err)
	}
	return ingredient.AsLabel(), nil
}

// Delete removes one of the user's ingredients and its association rows.
func (r *GORMIngredientRepository) Delete(userID, id uint) error {
	res := r.db.Scopes(ownedBy(userID)).Delete(&models.Ingredient{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete ingredient %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("ingredient with ID %d: %w", id, ErrNotFound)
	}
	if err := r.db.Exec("DELETE FROM recipe_ingredients WHERE ingredient_id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete ingredient associations for %d: %w", id, err)
	}
	return nil
}
