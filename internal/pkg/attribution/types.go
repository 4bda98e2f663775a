package attribution

import (
	"strconv"
	"strings"

	"github.com/EivindHaugen/SponsorFlow/app/models"
)

// Metadata keys attached to processor charges. These let any charge explain
// its purpose without a join back into local storage.
const (
	MetaRecipientType = "recipient_type"
	MetaRecipientID   = "recipient_id"
	MetaRecipientName = "recipient_name"
	MetaAncestors     = "ancestors"
	MetaAmount        = "amount"
	MetaInterval      = "interval"
	MetaReference     = "reference"
)

// SponsorshipIntent is the ephemeral attribution tuple created when a sponsor
// selects an amount and interval for a recipient. It lives in the session
// cart and must be fully absorbed into durable storage before the cart line
// is discarded.
type SponsorshipIntent struct {
	RecipientType string   `json:"recipient_type" validate:"required,oneof=club team athlete"`
	RecipientID   uint     `json:"recipient_id" validate:"required"`
	RecipientName string   `json:"recipient_name" validate:"required"`
	AncestorNames []string `json:"ancestor_names"`
	Amount        int64    `json:"amount" validate:"required,gt=0"`
	Interval      string   `json:"interval" validate:"required,oneof=once monthly"`
	Reference     string   `json:"reference" validate:"required"`
}

// ToAttribution converts the intent into the durable embedded form.
func (i SponsorshipIntent) ToAttribution() models.Attribution {
	return models.Attribution{
		RecipientType: i.RecipientType,
		RecipientID:   i.RecipientID,
		RecipientName: i.RecipientName,
		AncestorNames: models.EncodeAncestorNames(i.AncestorNames),
		Amount:        i.Amount,
		Interval:      i.Interval,
		Reference:     i.Reference,
	}
}

// ChargeMetadata flattens an attribution tuple into the string map the
// processor accepts on charges.
func ChargeMetadata(a models.Attribution) map[string]string {
	return map[string]string{
		MetaRecipientType: a.RecipientType,
		MetaRecipientID:   strconv.FormatUint(uint64(a.RecipientID), 10),
		MetaRecipientName: a.RecipientName,
		MetaAncestors:     strings.Join(a.AncestorList(), " / "),
		MetaAmount:        strconv.FormatInt(a.Amount, 10),
		MetaInterval:      a.Interval,
		MetaReference:     a.Reference,
	}
}
