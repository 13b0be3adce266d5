package services

import (
	"github.com/artursniegowski/Recipe-APP-API/internal/models"
	"github.com/artursniegowski/Recipe-APP-API/internal/repositories"
)

// LabelService handles the list/rename/delete operations shared by tags
// and ingredients. One instance is wired per label kind; the behavior is
// identical, only the backing repository differs.
type LabelService struct {
	repo repositories.LabelRepository
}

// NewLabelService creates a new LabelService over the given repository.
func NewLabelService(repo repositories.LabelRepository) *LabelService {
	return &LabelService{
		repo: repo,
	}
}

// List retrieves the user's labels, name descending. With assignedOnly,
// labels without any recipe are excluded.
func (s *LabelService) List(userID uint, assignedOnly bool) ([]models.Label, error) {
	return s.repo.ListByUser(userID, assignedOnly)
}

// Rename changes the name of one of the user's labels.
func (s *LabelService) Rename(userID, id uint, name string) (models.Label, error) {
	return s.repo.Rename(userID, id, name)
}

// Delete removes one of the user's labels.
func (s *LabelService) Delete(userID, id uint) error {
	return s.repo.Delete(userID, id)
}
