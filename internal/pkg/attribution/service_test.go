package attribution

import (
	"errors"
	"testing"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	orders     map[uint]*models.SponsorshipOrder
	items      map[uint][]models.SponsorshipOrderItem
	subs       map[uint]*models.SponsorshipSubscription
	orderSaves int
	subSaves   int
}

func newMemStore() *memStore {
	return &memStore{
		orders: make(map[uint]*models.SponsorshipOrder),
		items:  make(map[uint][]models.SponsorshipOrderItem),
		subs:   make(map[uint]*models.SponsorshipSubscription),
	}
}

func (m *memStore) GetOrder(orderID uint) (*models.SponsorshipOrder, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, errors.New("order not found")
	}
	copied := *o
	return &copied, nil
}

func (m *memStore) ListOrderItems(orderID uint) ([]models.SponsorshipOrderItem, error) {
	return append([]models.SponsorshipOrderItem(nil), m.items[orderID]...), nil
}

func (m *memStore) SaveOrder(order *models.SponsorshipOrder) error {
	m.orderSaves++
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *memStore) GetSubscription(subscriptionID uint) (*models.SponsorshipSubscription, error) {
	s, ok := m.subs[subscriptionID]
	if !ok {
		return nil, errors.New("subscription not found")
	}
	copied := *s
	return &copied, nil
}

func (m *memStore) SaveSubscription(sub *models.SponsorshipSubscription) error {
	m.subSaves++
	copied := *sub
	m.subs[sub.ID] = &copied
	return nil
}

func sampleAttribution() models.Attribution {
	return models.Attribution{
		RecipientType: models.RecipientTypeAthlete,
		RecipientID:   42,
		RecipientName: "Kari Nordmann",
		AncestorNames: models.EncodeAncestorNames([]string{"Lyn IL", "G14"}),
		Amount:        10000,
		Interval:      models.SponsorshipIntervalMonthly,
		Reference:     "ref-abc",
	}
}

func TestConvergeIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &models.SponsorshipOrder{ID: 1, Reference: "ord-1"}
	store.items[1] = []models.SponsorshipOrderItem{
		{ID: 10, OrderID: 1, Name: "Sponsorship", Attribution: sampleAttribution()},
	}
	svc := NewService(store)

	// Three independent triggers fire the same pipeline.
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Converge(1))
	}

	order := store.orders[1]
	assert.Equal(t, sampleAttribution(), order.Attribution)
	assert.Equal(t, 1, store.orderSaves, "only the first run writes")
	assert.Empty(t, order.AttributionMap, "single item needs no aggregate map")
}

func TestConvergeAggregatesMultipleItems(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &models.SponsorshipOrder{ID: 1, Reference: "ord-1"}
	second := sampleAttribution()
	second.RecipientID = 43
	second.RecipientName = "Ola Nordmann"
	store.items[1] = []models.SponsorshipOrderItem{
		{ID: 10, OrderID: 1, Name: "Sponsorship", Attribution: sampleAttribution()},
		{ID: 11, OrderID: 1, Name: "Sponsorship", Attribution: second},
	}
	svc := NewService(store)

	require.NoError(t, svc.Converge(1))

	order := store.orders[1]
	assert.Equal(t, uint(42), order.Attribution.RecipientID, "first bearing item wins the canonical copy")
	assert.Contains(t, order.AttributionMap, "Ola Nordmann")
	assert.Contains(t, order.AttributionMap, "Kari Nordmann")
}

func TestConvergeSkipsNonSponsorshipOrders(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &models.SponsorshipOrder{ID: 1, Reference: "ord-1"}
	store.items[1] = []models.SponsorshipOrderItem{
		{ID: 10, OrderID: 1, Name: "Club scarf", Amount: 2500},
	}
	svc := NewService(store)

	require.NoError(t, svc.Converge(1))
	assert.Zero(t, store.orderSaves)
	assert.False(t, store.orders[1].Attributed())
}

func TestConvergeSkipsPartialAttribution(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &models.SponsorshipOrder{ID: 1, Reference: "ord-1"}
	partial := sampleAttribution()
	partial.RecipientName = ""
	partial.Reference = ""
	store.items[1] = []models.SponsorshipOrderItem{
		{ID: 10, OrderID: 1, Name: "Sponsorship", Attribution: partial},
	}
	svc := NewService(store)

	require.NoError(t, svc.Converge(1))
	assert.Zero(t, store.orderSaves, "partial attribution must not be written")
}

func TestAttachToSubscriptionCopiesOnce(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &models.SponsorshipOrder{ID: 1, Reference: "ord-1", Attribution: sampleAttribution()}
	store.subs[5] = &models.SponsorshipSubscription{ID: 5, OrderID: 1, Interval: models.SponsorshipIntervalMonthly}
	svc := NewService(store)

	require.NoError(t, svc.AttachToSubscription(5))
	require.NoError(t, svc.AttachToSubscription(5))

	assert.Equal(t, sampleAttribution(), store.subs[5].Attribution)
	assert.Equal(t, 1, store.subSaves)
}

func TestAttachToSubscriptionWaitsForOrderConvergence(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &models.SponsorshipOrder{ID: 1, Reference: "ord-1"}
	store.subs[5] = &models.SponsorshipSubscription{ID: 5, OrderID: 1}
	svc := NewService(store)

	require.NoError(t, svc.AttachToSubscription(5))
	assert.False(t, store.subs[5].Attributed())
	assert.Zero(t, store.subSaves)
}

func TestChargeMetadataRoundTrip(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &models.SponsorshipOrder{ID: 1, Reference: "ord-1", Attribution: sampleAttribution()}
	store.subs[5] = &models.SponsorshipSubscription{ID: 5, OrderID: 1, Attribution: sampleAttribution()}
	svc := NewService(store)

	meta, err := svc.OrderChargeMetadata(1)
	require.NoError(t, err)
	assert.Equal(t, "athlete", meta[MetaRecipientType])
	assert.Equal(t, "42", meta[MetaRecipientID])
	assert.Equal(t, "Lyn IL / G14", meta[MetaAncestors])
	assert.Equal(t, "10000", meta[MetaAmount])
	assert.Equal(t, "monthly", meta[MetaInterval])
	assert.Equal(t, "ref-abc", meta[MetaReference])

	renewal, err := svc.RenewalChargeMetadata(5)
	require.NoError(t, err)
	assert.Equal(t, meta, renewal)
}

func TestChargeMetadataEmptyWithoutAttribution(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &models.SponsorshipOrder{ID: 1, Reference: "ord-1"}
	svc := NewService(store)

	meta, err := svc.OrderChargeMetadata(1)
	require.NoError(t, err)
	assert.Nil(t, meta)
}
