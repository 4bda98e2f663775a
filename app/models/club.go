package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Recipient type constants used for sponsorship attribution.
const (
	RecipientTypeClub    = "club"
	RecipientTypeTeam    = "team"
	RecipientTypeAthlete = "athlete"
)

// Club is the root of the recipient hierarchy. Club slugs are globally
// unique; team and athlete slugs are only unique within their parent.
type Club struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Slug         string         `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug" validate:"required,min=2,max=100"`
	ContactEmail string         `gorm:"type:varchar(200);default:''" json:"contact_email" validate:"omitempty,email"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Club) Validate() error {
	v := validator.New()

	return v.Struct(c)
}
