package payout

import (
	"errors"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the registry.
type Repository interface {
	GetTeam(teamID uint) (*models.Team, error)
	GetAccountByTeam(teamID uint) (*models.ConnectedAccount, error)
	SaveAccount(account *models.ConnectedAccount) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payout repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetTeam(teamID uint) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, teamID).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *gormRepository) GetAccountByTeam(teamID uint) (*models.ConnectedAccount, error) {
	var account models.ConnectedAccount
	err := r.db.Where("team_id = ?", teamID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// SaveAccount rewrites the full record. All registry writes go through here
// from a fresh read, which keeps last-write-wins safe for the single mutable
// record per team.
func (r *gormRepository) SaveAccount(account *models.ConnectedAccount) error {
	return r.db.Save(account).Error
}
