package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/attribution"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/hierarchy"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/payout"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/settlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend implements the order/subscription repositories and the
// attribution store over the same in-memory records, like GORM over one DB.
type fakeBackend struct {
	orders   map[uint]*models.SponsorshipOrder
	items    map[uint][]models.SponsorshipOrderItem
	subs     map[uint]*models.SponsorshipSubscription
	accounts map[uint]*models.ConnectedAccount
	nextID   uint
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		orders:   make(map[uint]*models.SponsorshipOrder),
		items:    make(map[uint][]models.SponsorshipOrderItem),
		subs:     make(map[uint]*models.SponsorshipSubscription),
		accounts: make(map[uint]*models.ConnectedAccount),
	}
}

func (f *fakeBackend) id() uint { f.nextID++; return f.nextID }

func (f *fakeBackend) Create(order *models.SponsorshipOrder, items []models.SponsorshipOrderItem) error {
	order.ID = f.id()
	copied := *order
	f.orders[order.ID] = &copied
	for i := range items {
		items[i].ID = f.id()
		items[i].OrderID = order.ID
	}
	f.items[order.ID] = append([]models.SponsorshipOrderItem(nil), items...)
	return nil
}

func (f *fakeBackend) GetByID(id uint) (*models.SponsorshipOrder, error) { return f.GetOrder(id) }

func (f *fakeBackend) GetByReference(ref string) (*models.SponsorshipOrder, error) {
	for _, o := range f.orders {
		if o.Reference == ref {
			copied := *o
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) Update(order *models.SponsorshipOrder) error { return f.SaveOrder(order) }

func (f *fakeBackend) ListItems(orderID uint) ([]models.SponsorshipOrderItem, error) {
	return f.ListOrderItems(orderID)
}

func (f *fakeBackend) GetOrder(id uint) (*models.SponsorshipOrder, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, errors.New("order not found")
	}
	copied := *o
	return &copied, nil
}

func (f *fakeBackend) ListOrderItems(orderID uint) ([]models.SponsorshipOrderItem, error) {
	return append([]models.SponsorshipOrderItem(nil), f.items[orderID]...), nil
}

func (f *fakeBackend) SaveOrder(order *models.SponsorshipOrder) error {
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeBackend) GetSubscription(id uint) (*models.SponsorshipSubscription, error) {
	s, ok := f.subs[id]
	if !ok {
		return nil, errors.New("subscription not found")
	}
	copied := *s
	return &copied, nil
}

func (f *fakeBackend) SaveSubscription(sub *models.SponsorshipSubscription) error {
	copied := *sub
	f.subs[sub.ID] = &copied
	return nil
}

// SubscriptionRepository
func (f *fakeBackend) CreateSub(sub *models.SponsorshipSubscription) error {
	sub.ID = f.id()
	return f.SaveSubscription(sub)
}

func (f *fakeBackend) ListDueRenewals(before time.Time) ([]models.SponsorshipSubscription, error) {
	var due []models.SponsorshipSubscription
	for _, s := range f.subs {
		if s.Status == models.SubscriptionStatusActive && s.NextRenewalAt != nil && !s.NextRenewalAt.After(before) {
			due = append(due, *s)
		}
	}
	return due, nil
}

// AccountDirectory
func (f *fakeBackend) StatusOf(teamID uint) (*models.ConnectedAccount, error) {
	if a, ok := f.accounts[teamID]; ok {
		copied := *a
		return &copied, nil
	}
	return &models.ConnectedAccount{TeamID: teamID, Status: models.ConnectedAccountStatusNotStarted}, nil
}

// subRepo adapts fakeBackend to repository.SubscriptionRepository (Create
// name collides with OrderRepository.Create on the shared fake).
type subRepo struct{ *fakeBackend }

func (r subRepo) Create(sub *models.SponsorshipSubscription) error { return r.CreateSub(sub) }

func (r subRepo) GetByID(id uint) (*models.SponsorshipSubscription, error) {
	return r.GetSubscription(id)
}

func (r subRepo) Update(sub *models.SponsorshipSubscription) error { return r.SaveSubscription(sub) }

type fakeResolver struct{}

func (fakeResolver) ResolveAthleteByID(id uint) (*hierarchy.Resolved, error) {
	if id != 42 {
		return nil, hierarchy.ErrNotFound
	}
	return &hierarchy.Resolved{
		Type:    models.RecipientTypeAthlete,
		Club:    &models.Club{ID: 1, Name: "Lyn IL", Slug: "lyn"},
		Team:    &models.Team{ID: 7, ClubID: 1, Name: "G14", Slug: "g14"},
		Athlete: &models.Athlete{ID: 42, TeamID: 7, Name: "Kari Nordmann", Slug: "kari"},
	}, nil
}

func (fakeResolver) ResolveTeamByID(id uint) (*hierarchy.Resolved, error) {
	if id != 7 {
		return nil, hierarchy.ErrNotFound
	}
	return &hierarchy.Resolved{
		Type: models.RecipientTypeTeam,
		Club: &models.Club{ID: 1, Name: "Lyn IL", Slug: "lyn"},
		Team: &models.Team{ID: 7, ClubID: 1, Name: "G14", Slug: "g14"},
	}, nil
}

type fakeCharger struct {
	requests []payout.CreatePaymentIntentRequest
	fail     error
}

func (f *fakeCharger) CreateAccount(context.Context, payout.CreateAccountRequest, string) (*payout.Account, error) {
	return nil, errors.New("not used")
}

func (f *fakeCharger) CreateAccountLink(context.Context, string, payout.CreateAccountLinkRequest, string) (*payout.AccountLink, error) {
	return nil, errors.New("not used")
}

func (f *fakeCharger) GetAccount(context.Context, string) (*payout.Account, error) {
	return nil, errors.New("not used")
}

func (f *fakeCharger) CreatePaymentIntent(_ context.Context, req payout.CreatePaymentIntentRequest) (*payout.PaymentIntent, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.requests = append(f.requests, req)
	return &payout.PaymentIntent{ID: "pi_1", Status: "succeeded", Amount: req.Amount}, nil
}

func newTestService(t *testing.T, backend *fakeBackend, charger *fakeCharger) *Service {
	t.Helper()
	calc, err := settlement.NewCalculator(settlement.Config{
		TakeRatePercent: 6,
		ProcessorRate:   0.029,
		ProcessorFixed:  180,
		MinAmount:       1000,
		MaxAmount:       1000000,
	})
	require.NoError(t, err)
	return NewService(
		backend,
		subRepo{backend},
		attribution.NewService(backend),
		backend,
		fakeResolver{},
		charger,
		calc,
		"NOK",
	)
}

func monthlyIntent() attribution.SponsorshipIntent {
	return attribution.SponsorshipIntent{
		RecipientType: models.RecipientTypeAthlete,
		RecipientID:   42,
		RecipientName: "Kari Nordmann",
		AncestorNames: []string{"Lyn IL", "G14"},
		Amount:        10000,
		Interval:      models.SponsorshipIntervalMonthly,
		Reference:     "ref-abc",
	}
}

func completeAccount(backend *fakeBackend) {
	backend.accounts[7] = &models.ConnectedAccount{
		TeamID:         7,
		AccountID:      "acct_7",
		Status:         models.ConnectedAccountStatusComplete,
		ChargesEnabled: true,
		PayoutsEnabled: true,
	}
}

func TestCompleteMonthlySponsorship(t *testing.T) {
	backend := newFakeBackend()
	completeAccount(backend)
	charger := &fakeCharger{}
	svc := newTestService(t, backend, charger)

	result, err := svc.Complete(context.Background(), monthlyIntent(), "sponsor@example.com")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPaid, result.Order.Status)
	assert.Equal(t, "pi_1", result.Order.PaymentIntentID)
	assert.Equal(t, int64(11102), result.Breakdown.GrossAmount)
	assert.Equal(t, int64(1102), result.Breakdown.ApplicationFee)

	require.Len(t, charger.requests, 1)
	req := charger.requests[0]
	assert.Equal(t, int64(11102), req.Amount)
	assert.Equal(t, int64(1102), req.ApplicationFee)
	assert.Equal(t, "acct_7", req.DestinationAccount)
	assert.Equal(t, "athlete", req.Metadata["recipient_type"])
	assert.Equal(t, "42", req.Metadata["recipient_id"])
	assert.Equal(t, "ref-abc", req.Metadata["reference"])

	// The cart-line intent is fully absorbed into the durable order.
	stored := backend.orders[result.Order.ID]
	assert.True(t, stored.Attributed())
	assert.Equal(t, uint(42), stored.Attribution.RecipientID)

	// Monthly interval also creates an attributed subscription.
	require.NotZero(t, result.SubscriptionID)
	sub := backend.subs[result.SubscriptionID]
	assert.True(t, sub.Attributed())
	assert.Equal(t, uint(7), sub.TeamID)
	require.NotNil(t, sub.NextRenewalAt)
}

func TestCompleteOneTimeCreatesNoSubscription(t *testing.T) {
	backend := newFakeBackend()
	completeAccount(backend)
	svc := newTestService(t, backend, &fakeCharger{})

	intent := monthlyIntent()
	intent.Interval = models.SponsorshipIntervalOnce
	result, err := svc.Complete(context.Background(), intent, "")
	require.NoError(t, err)
	assert.Zero(t, result.SubscriptionID)
	assert.Empty(t, backend.subs)
}

func TestCompleteRejectsUnreadyPayoutAccount(t *testing.T) {
	backend := newFakeBackend()
	backend.accounts[7] = &models.ConnectedAccount{
		TeamID: 7, AccountID: "acct_7", Status: models.ConnectedAccountStatusPending,
	}
	svc := newTestService(t, backend, &fakeCharger{})

	_, err := svc.Complete(context.Background(), monthlyIntent(), "")
	assert.ErrorIs(t, err, ErrPayoutNotReady)
	assert.Empty(t, backend.orders, "rejected checkout leaves no order behind")
}

func TestCompleteRejectsInvalidAmount(t *testing.T) {
	backend := newFakeBackend()
	completeAccount(backend)
	svc := newTestService(t, backend, &fakeCharger{})

	intent := monthlyIntent()
	intent.Amount = 100 // below the configured band
	_, err := svc.Complete(context.Background(), intent, "")
	assert.ErrorIs(t, err, settlement.ErrInvalidAmount)
}

func TestCompleteRejectsClubLevelIntent(t *testing.T) {
	backend := newFakeBackend()
	completeAccount(backend)
	svc := newTestService(t, backend, &fakeCharger{})

	intent := monthlyIntent()
	intent.RecipientType = models.RecipientTypeClub
	intent.RecipientID = 1
	_, err := svc.Complete(context.Background(), intent, "")
	assert.ErrorIs(t, err, ErrNoPayoutDestination)
}

func TestCompleteMarksOrderFailedOnProcessorError(t *testing.T) {
	backend := newFakeBackend()
	completeAccount(backend)
	charger := &fakeCharger{fail: &payout.ProcessorError{Code: "card_declined", HTTPStatus: 402}}
	svc := newTestService(t, backend, charger)

	_, err := svc.Complete(context.Background(), monthlyIntent(), "")
	var perr *payout.ProcessorError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "card_declined", perr.Code)

	require.Len(t, backend.orders, 1)
	for _, o := range backend.orders {
		assert.Equal(t, models.OrderStatusFailed, o.Status)
	}
}

func TestCompleteRetryAfterProcessorFailureReusesOrder(t *testing.T) {
	backend := newFakeBackend()
	completeAccount(backend)
	charger := &fakeCharger{fail: &payout.ProcessorError{Code: "card_declined", HTTPStatus: 402}}
	svc := newTestService(t, backend, charger)

	_, err := svc.Complete(context.Background(), monthlyIntent(), "sponsor@example.com")
	require.Error(t, err)
	require.Len(t, backend.orders, 1)

	// Same cart line, second attempt with a working card.
	charger.fail = nil
	result, err := svc.Complete(context.Background(), monthlyIntent(), "sponsor@example.com")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPaid, result.Order.Status)
	assert.Equal(t, "ref-abc", result.Order.Reference)
	require.Len(t, backend.orders, 1, "the retry reuses the stored order")
	assert.Len(t, backend.items[result.Order.ID], 1, "no duplicated line items")
	require.Len(t, charger.requests, 1)
	assert.Equal(t, int64(11102), charger.requests[0].Amount)
	require.NotZero(t, result.SubscriptionID)
}

func TestCompleteReplayOfPaidReferenceChargesOnce(t *testing.T) {
	backend := newFakeBackend()
	completeAccount(backend)
	charger := &fakeCharger{}
	svc := newTestService(t, backend, charger)

	first, err := svc.Complete(context.Background(), monthlyIntent(), "sponsor@example.com")
	require.NoError(t, err)

	again, err := svc.Complete(context.Background(), monthlyIntent(), "sponsor@example.com")
	require.NoError(t, err)

	assert.Len(t, charger.requests, 1, "a settled reference is never charged twice")
	assert.Equal(t, first.Order.Reference, again.Order.Reference)
	assert.Equal(t, models.OrderStatusPaid, again.Order.Status)
	assert.Equal(t, first.PaymentIntent.ID, again.PaymentIntent.ID)
	assert.Len(t, backend.subs, 1)
}

func TestChargeRenewal(t *testing.T) {
	backend := newFakeBackend()
	completeAccount(backend)
	charger := &fakeCharger{}
	svc := newTestService(t, backend, charger)

	result, err := svc.Complete(context.Background(), monthlyIntent(), "")
	require.NoError(t, err)

	firstRenewal := *backend.subs[result.SubscriptionID].NextRenewalAt
	pi, err := svc.ChargeRenewal(context.Background(), result.SubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, int64(11102), pi.Amount)

	require.Len(t, charger.requests, 2)
	renewalReq := charger.requests[1]
	assert.Equal(t, "ref-abc", renewalReq.Metadata["reference"], "renewal reads attribution from the subscription")
	assert.True(t, backend.subs[result.SubscriptionID].NextRenewalAt.After(firstRenewal))
}

func TestChargeRenewalRequiresActiveSubscription(t *testing.T) {
	backend := newFakeBackend()
	completeAccount(backend)
	svc := newTestService(t, backend, &fakeCharger{})

	result, err := svc.Complete(context.Background(), monthlyIntent(), "")
	require.NoError(t, err)

	sub := backend.subs[result.SubscriptionID]
	sub.Status = models.SubscriptionStatusCancelled
	_, err = svc.ChargeRenewal(context.Background(), result.SubscriptionID)
	assert.Error(t, err)
}
