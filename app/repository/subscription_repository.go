package repository

import (
	"time"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(sub *models.SponsorshipSubscription) error {
	return r.db.Create(sub).Error
}

func (r *subscriptionRepository) GetByID(id uint) (*models.SponsorshipSubscription, error) {
	var sub models.SponsorshipSubscription
	if err := r.db.First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(sub *models.SponsorshipSubscription) error {
	return r.db.Save(sub).Error
}

func (r *subscriptionRepository) ListDueRenewals(before time.Time) ([]models.SponsorshipSubscription, error) {
	var subs []models.SponsorshipSubscription
	err := r.db.
		Where("status = ? AND next_renewal_at IS NOT NULL AND next_renewal_at <= ?", models.SubscriptionStatusActive, before).
		Order("next_renewal_at ASC").Find(&subs).Error
	return subs, err
}
