package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// HandleQuoteAPI returns the gross-up breakdown for an amount without
// touching the session. Front-ends poll this while the sponsor adjusts the
// amount slider.
func HandleQuoteAPI(c *fiber.Ctx) error {
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid amount"})
	}
	breakdown, err := feeCalculator.ComputeGross(amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(breakdown)
}
