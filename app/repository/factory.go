package repository

import "gorm.io/gorm"

// NewRepositories creates all repository instances from a DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Recipient:    NewRecipientRepository(db),
		Order:        NewOrderRepository(db),
		Subscription: NewSubscriptionRepository(db),
	}
}
