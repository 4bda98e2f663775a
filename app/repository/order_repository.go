package repository

import (
	"errors"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"gorm.io/gorm"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create writes the order and its line items in one transaction so a failed
// item write never leaves a half-recorded order.
func (r *orderRepository) Create(order *models.SponsorshipOrder, items []models.SponsorshipOrderItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepository) GetByID(id uint) (*models.SponsorshipOrder, error) {
	var order models.SponsorshipOrder
	if err := r.db.First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByReference returns nil without error when no order carries the
// reference yet.
func (r *orderRepository) GetByReference(reference string) (*models.SponsorshipOrder, error) {
	var order models.SponsorshipOrder
	if err := r.db.Where("reference = ?", reference).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(order *models.SponsorshipOrder) error {
	return r.db.Save(order).Error
}

func (r *orderRepository) ListItems(orderID uint) ([]models.SponsorshipOrderItem, error) {
	var items []models.SponsorshipOrderItem
	err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error
	return items, err
}
