package models

import "time"

// Subscription lifecycle states.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusCancelled = "cancelled"
)

// SponsorshipSubscription is the recurring billing relationship created from
// a monthly sponsorship order. Attribution is copied from the order exactly
// once and then read back for every renewal charge.
type SponsorshipSubscription struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	OrderID       uint        `gorm:"not null;index" json:"order_id"`
	TeamID        uint        `gorm:"default:0;index" json:"team_id"`
	Status        string      `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Interval      string      `gorm:"type:varchar(10);not null;default:'monthly'" json:"interval"`
	Attribution   Attribution `gorm:"embedded;embeddedPrefix:attr_" json:"attribution"`
	NextRenewalAt *time.Time  `gorm:"type:timestamp;default:null" json:"next_renewal_at,omitempty"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// Attributed reports whether attribution was already copied from the order.
func (s *SponsorshipSubscription) Attributed() bool {
	return s.Attribution.Present()
}
