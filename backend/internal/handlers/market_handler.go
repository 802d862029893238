package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/user/carbontracker/backend/internal/market"
)

// ExchangeMarket serves the exchange snapshot, live or fallback.
func (h *Handler) ExchangeMarket(c *fiber.Ctx) error {
	return h.snapshot(c, h.Exchange)
}

// AggregatorMarket serves the aggregator snapshot, live or fallback.
func (h *Handler) AggregatorMarket(c *fiber.Ctx) error {
	return h.snapshot(c, h.Aggregator)
}

func (h *Handler) snapshot(c *fiber.Ctx, src market.Source) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).JSON(src.Snapshot(c.UserContext()))
}
