package models

import (
	"time"

	"gorm.io/gorm"
)

// Role selects the permission profile of an account.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAAP       Role = "aap"
	RoleCandidate Role = "candidate"
)

// Account is the identity record used to sign in.
type Account struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"` // bcrypt, never exposed in JSON
	Role         Role           `gorm:"size:20;not null" json:"role"`
	// OrganismID links an aap account to the accompanying body it works for.
	OrganismID *string   `gorm:"size:36;index" json:"organism_id,omitempty"`
	Organism   *Organism `gorm:"foreignKey:OrganismID" json:"-"`
}
