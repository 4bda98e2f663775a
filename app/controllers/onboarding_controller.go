package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/EivindHaugen/SponsorFlow/app/models"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/payout"
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
)

// AccountRegistry is the connected-account lifecycle surface the onboarding
// and admin controllers call. *payout.Registry satisfies it.
type AccountRegistry interface {
	Start(ctx context.Context, teamID uint) (*models.ConnectedAccount, error)
	Refresh(ctx context.Context, teamID uint) (*models.ConnectedAccount, error)
	StatusOf(teamID uint) (*models.ConnectedAccount, error)
}

var accountRegistry AccountRegistry

// InitializeOnboardingController wires the registry used by the processor
// callback and admin payout handlers.
func InitializeOnboardingController(registry AccountRegistry) {
	accountRegistry = registry
}

// HandleProcessorReturn terminates the processor's return redirect after a
// human finished (or abandoned) onboarding. The browser is always sent on to
// the admin view; a failed refresh only flags the view as unrefreshed, it
// never dead-ends the human.
func HandleProcessorReturn(c *fiber.Ctx) error {
	teamID, err := parseTeamID(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("unknown team")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := accountRegistry.Refresh(ctx, teamID); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "warning",
			"message": "Onboarding finished, but the payout status could not be refreshed: " + err.Error(),
		}).Redirect(adminTeamPayoutPath(teamID) + "?refreshed=false")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Payout status refreshed.",
	}).Redirect(adminTeamPayoutPath(teamID))
}

// HandleProcessorRefresh terminates the processor's refresh redirect: the
// previous onboarding link expired. Start reuses the stored account and only
// mints a fresh link, so the browser can be sent straight back into
// onboarding.
func HandleProcessorRefresh(c *fiber.Ctx) error {
	teamID, err := parseTeamID(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("unknown team")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	account, err := accountRegistry.Start(ctx, teamID)
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Could not create a new onboarding link: " + processorMessage(err),
		}).Redirect(adminTeamPayoutPath(teamID))
	}

	return c.Redirect(account.OnboardingLink, fiber.StatusFound)
}

// processorMessage surfaces the processor's own error text to the
// administrator where available.
func processorMessage(err error) string {
	var perr *payout.ProcessorError
	if errors.As(err, &perr) {
		if perr.Message != "" {
			return perr.Message
		}
		return perr.Code
	}
	return err.Error()
}
