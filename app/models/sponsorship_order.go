package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Sponsorship intervals supported at checkout.
const (
	SponsorshipIntervalOnce    = "once"
	SponsorshipIntervalMonthly = "monthly"
)

// Order lifecycle states.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusFailed    = "failed"
	OrderStatusCancelled = "cancelled"
)

// Attribution is the sponsorship attribution tuple copied from the cart line
// into durable order, subscription and processor charge records. AncestorNames
// is stored as a JSON array because MySQL has no native string list type.
type Attribution struct {
	RecipientType string `gorm:"type:varchar(20);default:''" json:"recipient_type"`
	RecipientID   uint   `gorm:"default:0" json:"recipient_id"`
	RecipientName string `gorm:"type:varchar(150);default:''" json:"recipient_name"`
	AncestorNames string `gorm:"type:varchar(500);default:''" json:"ancestor_names"`
	Amount        int64  `gorm:"default:0" json:"amount"`
	Interval      string `gorm:"type:varchar(10);default:''" json:"interval"`
	Reference     string `gorm:"type:varchar(64);default:''" json:"reference"`
}

// Present reports whether any attribution field is set at all. Orders without
// any attribution are normal non-sponsorship purchases.
func (a Attribution) Present() bool {
	return a.RecipientType != "" || a.RecipientID != 0 || a.Reference != ""
}

// Complete reports whether all required fields are set. Partial attribution
// (present but incomplete) is malformed and must be skipped, not written.
func (a Attribution) Complete() bool {
	return a.RecipientType != "" && a.RecipientID != 0 && a.RecipientName != "" &&
		a.Amount > 0 && a.Interval != "" && a.Reference != ""
}

// AncestorList decodes the stored JSON ancestor names.
func (a Attribution) AncestorList() []string {
	if strings.TrimSpace(a.AncestorNames) == "" {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(a.AncestorNames), &names); err != nil {
		return nil
	}
	return names
}

// EncodeAncestorNames encodes a name list for storage in AncestorNames.
func EncodeAncestorNames(names []string) string {
	if len(names) == 0 {
		return ""
	}
	b, err := json.Marshal(names)
	if err != nil {
		return ""
	}
	return string(b)
}

// SponsorshipOrder is the durable order record the settlement core writes
// attribution and payment data through. Amounts are in the smallest currency
// unit (øre).
type SponsorshipOrder struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Reference       string      `gorm:"type:varchar(64);not null;uniqueIndex" json:"reference"`
	SponsorEmail    string      `gorm:"type:varchar(200);default:''" json:"sponsor_email"`
	Status          string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Currency        string      `gorm:"type:varchar(3);not null;default:'NOK'" json:"currency"`
	NetAmount       int64       `gorm:"default:0" json:"net_amount"`
	PlatformFee     int64       `gorm:"default:0" json:"platform_fee"`
	GrossAmount     int64       `gorm:"default:0" json:"gross_amount"`
	PaymentIntentID string      `gorm:"type:varchar(191);default:'';index" json:"payment_intent_id"`
	Attribution     Attribution `gorm:"embedded;embeddedPrefix:attr_" json:"attribution"`
	AttributionMap  string      `gorm:"type:text" json:"attribution_map"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// Attributed reports whether the order already carries a converged copy of
// the attribution tuple. Convergence is a no-op once this is true.
func (o *SponsorshipOrder) Attributed() bool {
	return o.Attribution.Present()
}

// SponsorshipOrderItem is a single order line. The attribution fields mirror
// the cart line metadata the sponsor link created.
type SponsorshipOrderItem struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderID     uint        `gorm:"not null;index" json:"order_id"`
	Name        string      `gorm:"type:varchar(200);not null" json:"name"`
	Amount      int64       `gorm:"default:0" json:"amount"`
	Quantity    int         `gorm:"default:1" json:"quantity"`
	Attribution Attribution `gorm:"embedded;embeddedPrefix:attr_" json:"attribution"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}
