package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/user/carbontracker/backend/internal/auth"
	"github.com/user/carbontracker/backend/internal/middleware"
)

// SetupRoutes mounts the websocket feed and the JSON API on app.
func SetupRoutes(app *fiber.App, h *Handler, tokens *auth.TokenIssuer) {
	// --- WebSocket Routes ---
	if h.Hub != nil {
		wsGroup := app.Group("/ws")
		wsGroup.Use("/", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		wsGroup.Get("/market", websocket.New(h.MarketWS))
	}

	// --- API Routes ---
	api := app.Group("/api")
	api.Use(middleware.Session(tokens))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("Carbon tracker API is healthy!")
	})

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Register)
	authGroup.Post("/session", h.Login)
	authGroup.Get("/session", h.CurrentSession)

	marketGroup := api.Group("/market")
	marketGroup.Get("/exchange", h.ExchangeMarket)
	marketGroup.Get("/aggregator", h.AggregatorMarket)

	// --- Protected Routes ---
	portfolio := api.Group("/portfolio", middleware.Protected())
	portfolio.Get("/", h.GetPortfolio)
	portfolio.Post("/", h.SavePortfolio)
}
