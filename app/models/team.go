package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Team belongs to exactly one Club. Its slug is unique per club, not
// globally, so lookups always need the club scope.
type Team struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ClubID       uint           `gorm:"not null;index:ux_teams_club_slug,unique,priority:1" json:"club_id" validate:"required"`
	Name         string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Slug         string         `gorm:"type:varchar(100);not null;index:ux_teams_club_slug,unique,priority:2" json:"slug" validate:"required,min=2,max=100"`
	ContactEmail string         `gorm:"type:varchar(200);default:''" json:"contact_email" validate:"omitempty,email"`
	ViewCount    uint64         `gorm:"default:0" json:"view_count"`
	Club         *Club          `gorm:"foreignKey:ClubID" json:"-"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Team) Validate() error {
	v := validator.New()

	return v.Struct(t)
}
