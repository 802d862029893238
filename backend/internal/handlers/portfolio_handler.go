package handlers

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/user/carbontracker/backend/internal/middleware"
	"github.com/user/carbontracker/backend/internal/models"
)

// SavePortfolioRequest is the body of a portfolio save. Items is kept raw so
// a non-array value can be told apart from a malformed item.
type SavePortfolioRequest struct {
	Items json.RawMessage `json:"items"`
}

// GetPortfolio returns the holdings of the caller.
func (h *Handler) GetPortfolio(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "You must be signed in"})
	}

	holdings, err := h.Portfolios.Get(c.UserContext(), identity.ID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(holdings)
}

// SavePortfolio replaces the holdings of the caller with the submitted set.
func (h *Handler) SavePortfolio(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "You must be signed in"})
	}

	var req SavePortfolioRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	raw := bytes.TrimSpace(req.Items)
	if len(raw) == 0 || raw[0] != '[' {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "items must be an array"})
	}

	var items []models.Holding
	if err := json.Unmarshal(raw, &items); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid portfolio item"})
	}

	if err := h.Portfolios.Replace(c.UserContext(), identity.ID, items); err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Portfolio updated"})
}
