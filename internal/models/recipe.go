package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is a recipe owned by a single user. Tags and ingredients are
// many-to-many associations; deleting the owner cascades to the recipe,
// and deleting the recipe cascades to the association rows.
type Recipe struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"-" gorm:"index;not null"`
	User        User            `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Title       string          `json:"title" gorm:"type:varchar(255);not null"`
	TimeMinutes int             `json:"time_minutes" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(5,2)"`
	Link        string          `json:"link" gorm:"type:varchar(255)"`
	Description string          `json:"description"`
	Image       string          `json:"image" gorm:"type:varchar(255)"`
	Tags        []Tag           `json:"tags" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []Ingredient    `json:"ingredients" gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
