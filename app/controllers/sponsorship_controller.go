package controllers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/attribution"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/checkout"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/hierarchy"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/metrics/counter"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/session"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/settlement"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sessionIntentKey = "sponsorship_intent"

var (
	pathResolver    *hierarchy.Resolver
	checkoutService *checkout.Service
	feeCalculator   *settlement.Calculator
)

// InitializeSponsorshipController wires the sponsor-facing handlers.
func InitializeSponsorshipController(resolver *hierarchy.Resolver, svc *checkout.Service, calc *settlement.Calculator) {
	pathResolver = resolver
	checkoutService = svc
	feeCalculator = calc
}

// HandleSponsorPage resolves a /sponsor/:club/:team?/:athlete? path and, when
// an amount is selected, quotes the gross-up breakdown and parks the intent
// in the session cart for checkout.
func HandleSponsorPage(c *fiber.Ctx) error {
	resolved, err := pathResolver.ResolvePath(c.Context(), c.Params("clubSlug"), c.Params("teamSlug"), c.Params("athleteSlug"))
	if err != nil {
		if errors.Is(err, hierarchy.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "recipient not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	switch resolved.Type {
	case models.RecipientTypeTeam:
		_ = counter.AddTeamView(resolved.Team.ID)
	case models.RecipientTypeAthlete:
		_ = counter.AddAthleteView(resolved.Athlete.ID)
	}

	page := fiber.Map{
		"recipient_type": resolved.Type,
		"recipient_id":   resolved.RecipientID(),
		"recipient_name": resolved.RecipientName(),
		"ancestors":      resolved.AncestorNames(),
		"permalink":      resolved.Permalink(),
	}

	rawAmount := c.Query("amount")
	if rawAmount == "" {
		return c.JSON(page)
	}
	amount, err := strconv.ParseInt(rawAmount, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid amount"})
	}
	interval := c.Query("interval", models.SponsorshipIntervalOnce)
	if interval != models.SponsorshipIntervalOnce && interval != models.SponsorshipIntervalMonthly {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid interval"})
	}

	breakdown, err := feeCalculator.ComputeGross(amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	intent := attribution.SponsorshipIntent{
		RecipientType: resolved.Type,
		RecipientID:   resolved.RecipientID(),
		RecipientName: resolved.RecipientName(),
		AncestorNames: resolved.AncestorNames(),
		Amount:        amount,
		Interval:      interval,
		Reference:     uuid.NewString(),
	}
	encoded, err := json.Marshal(intent)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := session.SetSessionValue(c, sessionIntentKey, string(encoded)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	page["reference"] = intent.Reference
	page["interval"] = interval
	page["breakdown"] = fiber.Map{
		"net_amount":    breakdown.NetAmount,
		"platform_fee":  breakdown.PlatformFee,
		"processor_fee": breakdown.ProcessorFeeEstimate,
		"gross_amount":  breakdown.GrossAmount,
	}
	return c.JSON(page)
}

// HandleCheckout completes the intent parked in the session cart. The cart
// line survives until the order is durably stored, so a failed checkout can
// simply be retried.
func HandleCheckout(c *fiber.Ctx) error {
	raw, err := session.GetSessionValue(c, sessionIntentKey)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	encoded, ok := raw.(string)
	if !ok || encoded == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no sponsorship selected"})
	}
	var intent attribution.SponsorshipIntent
	if err := json.Unmarshal([]byte(encoded), &intent); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid sponsorship selection"})
	}

	email := strings.TrimSpace(c.FormValue("email"))
	result, err := checkoutService.Complete(c.Context(), intent, email)
	if err != nil {
		return c.Status(checkoutErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	// Order is durable, the cart line may go.
	_ = session.DeleteSessionValue(c, sessionIntentKey)

	response := fiber.Map{
		"reference":         result.Order.Reference,
		"status":            result.Order.Status,
		"gross_amount":      result.Breakdown.GrossAmount,
		"payment_intent_id": result.PaymentIntent.ID,
	}
	if result.SubscriptionID != 0 {
		response["subscription_id"] = result.SubscriptionID
	}
	return c.JSON(response)
}

func checkoutErrorStatus(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, settlement.ErrInvalidAmount), errors.As(err, &verrs):
		return fiber.StatusBadRequest
	case errors.Is(err, checkout.ErrNoPayoutDestination):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrPayoutNotReady):
		return fiber.StatusConflict
	case errors.Is(err, hierarchy.ErrNotFound), errors.Is(err, hierarchy.ErrUnresolvedHierarchy):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
