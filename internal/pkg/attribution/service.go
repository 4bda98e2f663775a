package attribution

import (
	"encoding/json"
	"log"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"gorm.io/gorm"
)

// Service runs the convergent attribution pipeline. Several independent
// checkout lifecycle triggers fire the same Converge entry point; the
// already-attributed check makes every run after the first a no-op, so the
// triggers do not need to coordinate or fire exactly once.
type Service struct {
	store Store
}

// NewService creates an attribution service from an injected store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// NewServiceFromDB creates an attribution service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewStore(db))
}

// Converge copies attribution from the order's line items onto the order.
// Orders without any attribution-bearing item are normal non-sponsorship
// purchases and are skipped silently. Items with partial attribution are
// logged and skipped, never partially written.
func (s *Service) Converge(orderID uint) error {
	order, err := s.store.GetOrder(orderID)
	if err != nil {
		return err
	}
	if order.Attributed() {
		return nil
	}

	items, err := s.store.ListOrderItems(orderID)
	if err != nil {
		return err
	}

	var bearing []models.SponsorshipOrderItem
	for _, item := range items {
		if !item.Attribution.Present() {
			continue
		}
		if !item.Attribution.Complete() {
			log.Printf("[attribution] order %d item %d carries partial attribution, skipping", orderID, item.ID)
			continue
		}
		bearing = append(bearing, item)
	}
	if len(bearing) == 0 {
		return nil
	}

	order.Attribution = bearing[0].Attribution
	if len(bearing) > 1 {
		order.AttributionMap = encodeAttributionMap(bearing)
	}
	return s.store.SaveOrder(order)
}

// AttachToSubscription copies the order's attribution onto a subscription
// created from it. This runs once at creation, never on renewal; renewals
// read the subscription copy.
func (s *Service) AttachToSubscription(subscriptionID uint) error {
	sub, err := s.store.GetSubscription(subscriptionID)
	if err != nil {
		return err
	}
	if sub.Attributed() {
		return nil
	}

	order, err := s.store.GetOrder(sub.OrderID)
	if err != nil {
		return err
	}
	if !order.Attributed() {
		// Nothing to copy yet; a later trigger will converge the order
		// first and re-run this.
		return nil
	}

	sub.Attribution = order.Attribution
	return s.store.SaveSubscription(sub)
}

// OrderChargeMetadata returns the processor metadata for the initial charge
// of an order.
func (s *Service) OrderChargeMetadata(orderID uint) (map[string]string, error) {
	order, err := s.store.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !order.Attributed() {
		return nil, nil
	}
	return ChargeMetadata(order.Attribution), nil
}

// RenewalChargeMetadata returns the processor metadata for a subscription
// renewal charge.
func (s *Service) RenewalChargeMetadata(subscriptionID uint) (map[string]string, error) {
	sub, err := s.store.GetSubscription(subscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.Attributed() {
		return nil, nil
	}
	return ChargeMetadata(sub.Attribution), nil
}

// encodeAttributionMap stores every attribution-bearing item keyed by item id
// for orders carrying more than one sponsorable line.
func encodeAttributionMap(items []models.SponsorshipOrderItem) string {
	m := make(map[uint]models.Attribution, len(items))
	for _, item := range items {
		m[item.ID] = item.Attribution
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}
