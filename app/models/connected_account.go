package models

import "time"

// Connected account onboarding states. There is deliberately no transition
// out of "complete": a processor-side account that is later disabled is an
// external anomaly to be reported, not a modeled state.
const (
	ConnectedAccountStatusNotStarted = "not_started"
	ConnectedAccountStatusPending    = "pending"
	ConnectedAccountStatusComplete   = "complete"
)

// ConnectedAccount stores the payout sub-account of a Team at the payment
// processor. The record is a cache of the processor's view, never the truth
// itself: Status must equal "complete" exactly when ChargesEnabled and
// PayoutsEnabled were both true at LastCheckedAt.
type ConnectedAccount struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	TeamID                  uint       `gorm:"not null;uniqueIndex" json:"team_id"`
	AccountID               string     `gorm:"type:varchar(191);default:'';index" json:"account_id"`
	Status                  string     `gorm:"type:varchar(20);not null;default:'not_started';index" json:"status"`
	OnboardingLink          string     `gorm:"type:text" json:"onboarding_link,omitempty"`
	OnboardingLinkExpiresAt *time.Time `gorm:"type:timestamp;default:null" json:"onboarding_link_expires_at,omitempty"`
	ChargesEnabled          bool       `gorm:"default:false" json:"charges_enabled"`
	PayoutsEnabled          bool       `gorm:"default:false" json:"payouts_enabled"`
	DetailsSubmitted        bool       `gorm:"default:false" json:"details_submitted"`
	LastCheckedAt           *time.Time `gorm:"type:timestamp;default:null" json:"last_checked_at,omitempty"`
	CreatedAt               time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsProvisioned reports whether an external account has been created yet.
func (a *ConnectedAccount) IsProvisioned() bool {
	return a.AccountID != ""
}

// DeriveStatus maps the processor's capability flags onto the local state
// machine: complete iff charges and payouts are both enabled, otherwise
// pending once provisioning has started.
func DeriveStatus(chargesEnabled, payoutsEnabled bool) string {
	if chargesEnabled && payoutsEnabled {
		return ConnectedAccountStatusComplete
	}
	return ConnectedAccountStatusPending
}
