package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/artursniegowski/Recipe-APP-API/internal/models"
)

// GORMTagRepository is a GORM implementation of LabelRepository backed by
// the tags table.
type GORMTagRepository struct {
	db *gorm.DB
}

// NewGORMTagRepository creates a new instance of GORMTagRepository.
func NewGORMTagRepository(db *gorm.DB) *GORMTagRepository {
	return &GORMTagRepository{
		db: db,
	}
}

// ListByUser retrieves the user's tags ordered by name descending. With
// assignedOnly, tags without any recipe are skipped; a tag linked to
// several recipes still appears once.
func (r *GORMTagRepository) ListByUser(userID uint, assignedOnly bool) ([]models.Label, error) {
	q := r.db.Model(&models.Tag{}).Scopes(ownedBy(userID))
	if assignedOnly {
		q = q.Scopes(assignedVia("recipe_tags", "tag_id", "tags"))
	}

	var tags []models.Tag
	if err := q.Distinct("tags.*").Order("tags.name DESC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags for user %d: %w", userID, err)
	}
	labels := make([]models.Label, 0, len(tags))
	for _, t := range tags {
		labels = append(labels, t.AsLabel())
	}
	return labels, nil
}

// GetByID retrieves one of the user's tags.
func (r *GORMTagRepository) GetByID(userID, id uint) (models.Label, error) {
	var tag models.Tag
	if err := r.db.Scopes(ownedBy(userID)).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Label{}, fmt.Errorf("tag with ID %d: %w", id, ErrNotFound)
		}
		return models.Label{}, fmt.Errorf("failed to get tag by ID %d: %w", id, err)
	}
	return tag.AsLabel(), nil
}

// GetByName retrieves the user's tag with that exact name.
func (r *GORMTagRepository) GetByName(userID uint, name string) (models.Label, error) {
	var tag models.Tag
	if err := r.db.Scopes(ownedBy(userID)).First(&tag, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Label{}, fmt.Errorf("tag named %q: %w", name, ErrNotFound)
		}
		return models.Label{}, fmt.Errorf("failed to get tag by name %q: %w", name, err)
	}
	return tag.AsLabel(), nil
}

// Create inserts a new tag for the user. A concurrent insert of the same
// (user, name) pair surfaces as ErrDuplicate.
func (r *GORMTagRepository) Create(userID uint, name string) (models.Label, error) {
	tag := models.Tag{UserID: userID, Name: name}
	if err := r.db.Omit(clause.Associations).Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Label{}, fmt.Errorf("tag named %q: %w", name, ErrDuplicate)
		}
		return models.Label{}, fmt.Errorf("failed to create tag %q: %w", name, err)
	}
	return tag.AsLabel(), nil
}

// Rename changes the name of one of the user's tags.
func (r *GORMTagRepository) Rename(userID, id uint, name string) (models.Label, error) {
	var tag models.Tag
	if err := r.db.Scopes(ownedBy(userID)).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Label{}, fmt.Errorf("tag with ID %d: %w", id, ErrNotFound)
		}
		return models.Label{}, fmt.Errorf("failed to get tag for rename: %w", err)
	}
	tag.Name = name
	if err := r.db.Omit(clause.Associations).Save(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Label{}, fmt.Errorf("tag named %q: %w", name, ErrDuplicate)
		}
		return models.Label{}, fmt.Errorf("failed to rename tag %d: %w", id, err)
	}
	return tag.AsLabel(), nil
}

// Delete removes one of the user's tags and its association rows.
func (r *GORMTagRepository) Delete(userID, id uint) error {
	res := r.db.Scopes(ownedBy(userID)).Delete(&models.Tag{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete tag %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tag with ID %d: %w", id, ErrNotFound)
	}
	if err := r.db.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete tag associations for %d: %w", id, err)
	}
	return nil
}
