package controllers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// parseTeamID reads the :teamID path parameter.
func parseTeamID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("teamID")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid team id %q", raw)
	}
	return uint(id), nil
}

// adminTeamPayoutPath is the admin view the processor redirect flows land on.
func adminTeamPayoutPath(teamID uint) string {
	return fmt.Sprintf("/admin/teams/%d/payout", teamID)
}
