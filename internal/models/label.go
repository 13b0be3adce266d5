package models

import "time"

// Tag is a user-owned recipe label. Names are unique per owner, not
// globally: two users may each have their own "Dinner" tag.
type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"uniqueIndex:idx_tags_user_name;not null"`
	User      User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name      string    `json:"name" gorm:"uniqueIndex:idx_tags_user_name;type:varchar(255);not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Ingredient is a user-owned recipe label, same shape and rules as Tag.
type Ingredient struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"uniqueIndex:idx_ingredients_user_name;not null"`
	User      User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name      string    `json:"name" gorm:"uniqueIndex:idx_ingredients_user_name;type:varchar(255);not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Label is the uniform view of a Tag or Ingredient used by the handlers
// and the reconciliation logic, which treat both kinds identically.
type Label struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AsLabel returns the tag as a neutral label.
func (t Tag) AsLabel() Label { return Label{ID: t.ID, Name: t.Name} }

// AsLabel returns the ingredient as a neutral label.
func (i Ingredient) AsLabel() Label { return Label{ID: i.ID, Name: i.Name} }
