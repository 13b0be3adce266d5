package repositories

import "github.com/artursniegowski/Recipe-APP-API/internal/models"

// RecipeFilter narrows a recipe listing to recipes linked to at least one
// of the given tag or ingredient IDs. Empty slices mean no filtering.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeRepository defines the interface for recipe data access. Every
// method takes the owner's user ID and scopes the query to it; a row
// owned by someone else behaves exactly like a missing row.
type RecipeRepository interface {
	ListByUser(userID uint, filter RecipeFilter) ([]models.Recipe, error)
	GetByID(userID, id uint) (*models.Recipe, error)
	Create(recipe *models.Recipe) error
	Update(recipe *models.Recipe) error
	Delete(userID, id uint) error
	ReplaceTags(recipe *models.Recipe, labels []models.Label) error
	ReplaceIngredients(recipe *models.Recipe, labels []models.Label) error
}
