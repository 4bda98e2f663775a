package repository

import (
	"errors"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"gorm.io/gorm"
)

// recipientRepository implements the RecipientRepository interface
type recipientRepository struct {
	db *gorm.DB
}

// NewRecipientRepository creates a new recipient repository instance
func NewRecipientRepository(db *gorm.DB) RecipientRepository {
	return &recipientRepository{db: db}
}

func (r *recipientRepository) CreateClub(club *models.Club) error {
	return r.db.Create(club).Error
}

func (r *recipientRepository) ClubByID(id uint) (*models.Club, error) {
	var club models.Club
	err := r.db.First(&club, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &club, nil
}

func (r *recipientRepository) ClubBySlug(slug string) (*models.Club, error) {
	var club models.Club
	err := r.db.Where("slug = ?", slug).First(&club).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &club, nil
}

func (r *recipientRepository) ListClubs() ([]models.Club, error) {
	var clubs []models.Club
	err := r.db.Order("name ASC").Find(&clubs).Error
	return clubs, err
}

func (r *recipientRepository) CreateTeam(team *models.Team) error {
	return r.db.Create(team).Error
}

func (r *recipientRepository) TeamByID(id uint) (*models.Team, error) {
	var team models.Team
	err := r.db.First(&team, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *recipientRepository) TeamByClubAndSlug(clubID uint, slug string) (*models.Team, error) {
	var team models.Team
	err := r.db.Where("club_id = ? AND slug = ?", clubID, slug).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *recipientRepository) ListTeamsByClub(clubID uint) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.Where("club_id = ?", clubID).Order("name ASC").Find(&teams).Error
	return teams, err
}

func (r *recipientRepository) UpdateTeam(team *models.Team) error {
	return r.db.Save(team).Error
}

func (r *recipientRepository) CreateAthlete(athlete *models.Athlete) error {
	return r.db.Create(athlete).Error
}

func (r *recipientRepository) AthleteByID(id uint) (*models.Athlete, error) {
	var athlete models.Athlete
	err := r.db.First(&athlete, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &athlete, nil
}

func (r *recipientRepository) AthleteByTeamAndSlug(teamID uint, slug string) (*models.Athlete, error) {
	var athlete models.Athlete
	err := r.db.Where("team_id = ? AND slug = ?", teamID, slug).First(&athlete).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &athlete, nil
}

func (r *recipientRepository) ListAthletesByTeam(teamID uint) ([]models.Athlete, error) {
	var athletes []models.Athlete
	err := r.db.Where("team_id = ?", teamID).Order("name ASC").Find(&athletes).Error
	return athletes, err
}
