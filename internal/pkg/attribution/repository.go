package attribution

import (
	"github.com/EivindHaugen/SponsorFlow/app/models"
	"gorm.io/gorm"
)

// Store provides the order/subscription storage the pipeline reads and
// writes through. The commerce side only needs metadata-level access.
type Store interface {
	GetOrder(orderID uint) (*models.SponsorshipOrder, error)
	ListOrderItems(orderID uint) ([]models.SponsorshipOrderItem, error)
	SaveOrder(order *models.SponsorshipOrder) error
	GetSubscription(subscriptionID uint) (*models.SponsorshipSubscription, error)
	SaveSubscription(sub *models.SponsorshipSubscription) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates an attribution store backed by GORM.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetOrder(orderID uint) (*models.SponsorshipOrder, error) {
	var order models.SponsorshipOrder
	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *gormStore) ListOrderItems(orderID uint) ([]models.SponsorshipOrderItem, error) {
	var items []models.SponsorshipOrderItem
	err := s.db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error
	return items, err
}

func (s *gormStore) SaveOrder(order *models.SponsorshipOrder) error {
	return s.db.Save(order).Error
}

func (s *gormStore) GetSubscription(subscriptionID uint) (*models.SponsorshipSubscription, error) {
	var sub models.SponsorshipSubscription
	if err := s.db.First(&sub, subscriptionID).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) SaveSubscription(sub *models.SponsorshipSubscription) error {
	return s.db.Save(sub).Error
}
