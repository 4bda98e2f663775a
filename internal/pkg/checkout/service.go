package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"github.com/EivindHaugen/SponsorFlow/app/repository"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/attribution"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/hierarchy"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/payout"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/settlement"
	"github.com/go-playground/validator/v10"
)

// ErrPayoutNotReady is returned when the destination team's connected
// account has not completed onboarding. The checkout is rejected rather
// than collecting money that cannot be routed.
var ErrPayoutNotReady = errors.New("checkout: team payout account not ready")

// ErrNoPayoutDestination is returned for intents whose recipient cannot be
// mapped to a team. Payout accounts exist per team only.
var ErrNoPayoutDestination = errors.New("checkout: no payout destination for recipient")

// AccountDirectory is the connected-account lookup the checkout needs.
// *payout.Registry satisfies it.
type AccountDirectory interface {
	StatusOf(teamID uint) (*models.ConnectedAccount, error)
}

// TeamResolver maps a recipient onto its payout team. *hierarchy.Resolver
// satisfies it.
type TeamResolver interface {
	ResolveAthleteByID(id uint) (*hierarchy.Resolved, error)
	ResolveTeamByID(id uint) (*hierarchy.Resolved, error)
}

// Service runs the sponsor-facing checkout: validate the intent, gross up
// the amount, persist the order with attribution, converge, and charge
// through the processor with the application fee split.
type Service struct {
	orders      repository.OrderRepository
	subs        repository.SubscriptionRepository
	attribution *attribution.Service
	accounts    AccountDirectory
	resolver    TeamResolver
	processor   payout.Client
	calc        *settlement.Calculator

	currency string
	validate *validator.Validate
	now      func() time.Time
}

// NewService wires the checkout from its collaborators.
func NewService(
	orders repository.OrderRepository,
	subs repository.SubscriptionRepository,
	attr *attribution.Service,
	accounts AccountDirectory,
	resolver TeamResolver,
	processor payout.Client,
	calc *settlement.Calculator,
	currency string,
) *Service {
	if currency == "" {
		currency = "NOK"
	}
	return &Service{
		orders:      orders,
		subs:        subs,
		attribution: attr,
		accounts:    accounts,
		resolver:    resolver,
		processor:   processor,
		calc:        calc,
		currency:    currency,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// Result is the outcome of a completed checkout.
type Result struct {
	Order          *models.SponsorshipOrder
	Breakdown      settlement.Breakdown
	PaymentIntent  *payout.PaymentIntent
	SubscriptionID uint
}

// Complete absorbs a sponsorship intent into durable storage and charges the
// sponsor. The settlement math here re-derives what the cart rendered; both
// sides call the same deterministic calculator so they cannot disagree.
func (s *Service) Complete(ctx context.Context, intent attribution.SponsorshipIntent, sponsorEmail string) (*Result, error) {
	if err := s.validate.Struct(intent); err != nil {
		return nil, fmt.Errorf("checkout: invalid sponsorship intent: %w", err)
	}

	breakdown, err := s.calc.ComputeGross(intent.Amount)
	if err != nil {
		return nil, err
	}

	teamID, err := s.payoutTeam(intent)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.StatusOf(teamID)
	if err != nil {
		return nil, err
	}
	if account.Status != models.ConnectedAccountStatusComplete {
		return nil, fmt.Errorf("%w: team %d status %s", ErrPayoutNotReady, teamID, account.Status)
	}

	// The cart line survives a failed checkout, so a retry arrives with the
	// same reference. Reuse the stored order instead of colliding with the
	// unique reference index; an already-paid reference is never charged
	// twice.
	order, err := s.orders.GetByReference(intent.Reference)
	if err != nil {
		return nil, err
	}
	if order != nil && order.Status == models.OrderStatusPaid {
		return &Result{
			Order:     order,
			Breakdown: breakdown,
			PaymentIntent: &payout.PaymentIntent{
				ID:     order.PaymentIntentID,
				Status: "succeeded",
				Amount: order.GrossAmount,
			},
		}, nil
	}
	if order == nil {
		order = &models.SponsorshipOrder{
			Reference:    intent.Reference,
			SponsorEmail: strings.TrimSpace(sponsorEmail),
			Status:       models.OrderStatusPending,
			Currency:     s.currency,
			NetAmount:    breakdown.NetAmount,
			PlatformFee:  breakdown.PlatformFee,
			GrossAmount:  breakdown.GrossAmount,
		}
		items := []models.SponsorshipOrderItem{{
			Name:        fmt.Sprintf("Sponsorship: %s", intent.RecipientName),
			Amount:      breakdown.GrossAmount,
			Quantity:    1,
			Attribution: intent.ToAttribution(),
		}}
		if err := s.orders.Create(order, items); err != nil {
			return nil, err
		}
	} else {
		order.SponsorEmail = strings.TrimSpace(sponsorEmail)
		order.Status = models.OrderStatusPending
		if err := s.orders.Update(order); err != nil {
			return nil, err
		}
	}

	if err := s.attribution.Converge(order.ID); err != nil {
		return nil, err
	}
	metadata, err := s.attribution.OrderChargeMetadata(order.ID)
	if err != nil {
		return nil, err
	}

	pi, err := s.processor.CreatePaymentIntent(ctx, payout.CreatePaymentIntentRequest{
		Amount:             breakdown.GrossAmount,
		Currency:           strings.ToLower(s.currency),
		ApplicationFee:     breakdown.ApplicationFee,
		DestinationAccount: account.AccountID,
		ReceiptEmail:       order.SponsorEmail,
		Metadata:           metadata,
	})
	if err != nil {
		order.Status = models.OrderStatusFailed
		_ = s.orders.Update(order)
		return nil, err
	}

	order.Status = models.OrderStatusPaid
	order.PaymentIntentID = pi.ID
	if err := s.orders.Update(order); err != nil {
		return nil, err
	}

	result := &Result{Order: order, Breakdown: breakdown, PaymentIntent: pi}
	if intent.Interval == models.SponsorshipIntervalMonthly {
		next := s.now().AddDate(0, 1, 0)
		sub := &models.SponsorshipSubscription{
			OrderID:       order.ID,
			TeamID:        teamID,
			Status:        models.SubscriptionStatusActive,
			Interval:      models.SponsorshipIntervalMonthly,
			NextRenewalAt: &next,
		}
		if err := s.subs.Create(sub); err != nil {
			return nil, err
		}
		if err := s.attribution.AttachToSubscription(sub.ID); err != nil {
			return nil, err
		}
		result.SubscriptionID = sub.ID
	}
	return result, nil
}

// ChargeRenewal charges one due subscription renewal, reading attribution
// from the subscription copy rather than the originating order.
func (s *Service) ChargeRenewal(ctx context.Context, subscriptionID uint) (*payout.PaymentIntent, error) {
	sub, err := s.subs.GetByID(subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionStatusActive {
		return nil, fmt.Errorf("checkout: subscription %d is %s, not charging", subscriptionID, sub.Status)
	}
	if !sub.Attributed() {
		return nil, fmt.Errorf("checkout: subscription %d has no attribution", subscriptionID)
	}

	breakdown, err := s.calc.ComputeGross(sub.Attribution.Amount)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.StatusOf(sub.TeamID)
	if err != nil {
		return nil, err
	}
	if account.Status != models.ConnectedAccountStatusComplete {
		return nil, fmt.Errorf("%w: team %d status %s", ErrPayoutNotReady, sub.TeamID, account.Status)
	}

	metadata, err := s.attribution.RenewalChargeMetadata(sub.ID)
	if err != nil {
		return nil, err
	}
	pi, err := s.processor.CreatePaymentIntent(ctx, payout.CreatePaymentIntentRequest{
		Amount:             breakdown.GrossAmount,
		Currency:           strings.ToLower(s.currency),
		ApplicationFee:     breakdown.ApplicationFee,
		DestinationAccount: account.AccountID,
		Metadata:           metadata,
	})
	if err != nil {
		return nil, err
	}

	next := s.now().AddDate(0, 1, 0)
	sub.NextRenewalAt = &next
	if err := s.subs.Update(sub); err != nil {
		return nil, err
	}
	return pi, nil
}

// payoutTeam maps the intent's recipient onto the team whose connected
// account receives the money. Club-level sponsorships have no payout team.
func (s *Service) payoutTeam(intent attribution.SponsorshipIntent) (uint, error) {
	switch intent.RecipientType {
	case models.RecipientTypeTeam:
		resolved, err := s.resolver.ResolveTeamByID(intent.RecipientID)
		if err != nil {
			return 0, err
		}
		return resolved.Team.ID, nil
	case models.RecipientTypeAthlete:
		resolved, err := s.resolver.ResolveAthleteByID(intent.RecipientID)
		if err != nil {
			return 0, err
		}
		return resolved.Team.ID, nil
	default:
		return 0, fmt.Errorf("%w: %s %d", ErrNoPayoutDestination, intent.RecipientType, intent.RecipientID)
	}
}
