package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Athlete belongs to exactly one Team. The effective club of an athlete is
// only reachable via Athlete -> Team -> Club; a dangling TeamID must make
// derived operations fail soft, never panic.
type Athlete struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TeamID    uint           `gorm:"not null;index:ux_athletes_team_slug,unique,priority:1" json:"team_id" validate:"required"`
	Name      string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Slug      string         `gorm:"type:varchar(100);not null;index:ux_athletes_team_slug,unique,priority:2" json:"slug" validate:"required,min=2,max=100"`
	ViewCount uint64         `gorm:"default:0" json:"view_count"`
	Team      *Team          `gorm:"foreignKey:TeamID" json:"-"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Athlete) Validate() error {
	v := validator.New()

	return v.Struct(a)
}
