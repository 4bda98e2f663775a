package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
)

// HandleAdminTeamPayout renders the payout state of one team for the club
// administrator, including the onboarding link while provisioning is open.
func HandleAdminTeamPayout(c *fiber.Ctx) error {
	teamID, err := parseTeamID(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown team"})
	}

	account, err := accountRegistry.StatusOf(teamID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"team_id":         teamID,
		"status":          account.Status,
		"charges_enabled": account.ChargesEnabled,
		"payouts_enabled": account.PayoutsEnabled,
		"onboarding_link": account.OnboardingLink,
		"refreshed":       c.Query("refreshed", "true") == "true",
		"flash":           flash.Get(c),
	})
}

// HandleAdminTeamPayoutStart begins (or resumes) processor onboarding for a
// team and hands the browser to the processor's hosted flow.
func HandleAdminTeamPayoutStart(c *fiber.Ctx) error {
	teamID, err := parseTeamID(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown team"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	account, err := accountRegistry.Start(ctx, teamID)
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Could not start payout onboarding: " + processorMessage(err),
		}).Redirect(adminTeamPayoutPath(teamID))
	}

	return c.Redirect(account.OnboardingLink, fiber.StatusFound)
}

// HandleAdminTeamPayoutRefresh re-reads the processor's view of the account
// on demand, for administrators who do not want to wait for the redirect.
func HandleAdminTeamPayoutRefresh(c *fiber.Ctx) error {
	teamID, err := parseTeamID(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown team"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := accountRegistry.Refresh(ctx, teamID); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Could not refresh payout status: " + processorMessage(err),
		}).Redirect(adminTeamPayoutPath(teamID))
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Payout status refreshed.",
	}).Redirect(adminTeamPayoutPath(teamID))
}
