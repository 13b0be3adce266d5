package repositories

import (
	"gorm.io/gorm"

	"github.com/artursniegowski/Recipe-APP-API/internal/models"
)

// LabelRepository is the uniform data-access interface for recipe labels.
// Tags and ingredients are separate tables but behave identically, so the
// two GORM implementations share this contract and the services above
// them never care which kind they hold.
type LabelRepository interface {
	ListByUser(userID uint, assignedOnly bool) ([]models.Label, error)
	GetByID(userID, id uint) (models.Label, error)
	GetByName(userID uint, name string) (models.Label, error)
	Create(userID uint, name string) (models.Label, error)
	Rename(userID, id uint, name string) (models.Label, error)
	Delete(userID, id uint) error
}

// ownedBy scopes a query to rows owned by the given user. Ownership
// filtering happens here, at the query layer, never in serialization.
func ownedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// assignedVia restricts a label query to labels linked to at least one
// recipe through the given join table and column.
func assignedVia(joinTable, labelColumn, labelTable string) func(*gorm.DB) *gorm.DB {
	join := "JOIN " + joinTable + " ON " + joinTable + "." + labelColumn + " = " + labelTable + ".id"
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins(join)
	}
}
