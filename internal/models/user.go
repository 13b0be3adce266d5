package models

import "time"

// User is an account in the system. Email is the unique login key.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password    string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	Name        string    `json:"name" gorm:"type:varchar(255)"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	IsStaff     bool      `json:"is_staff" gorm:"default:false"`
	IsSuperuser bool      `json:"is_superuser" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
