package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/carbontracker/backend/internal/apperr"
	"github.com/user/carbontracker/backend/internal/auth"
	"github.com/user/carbontracker/backend/internal/market"
	"github.com/user/carbontracker/backend/internal/models"
	ws "github.com/user/carbontracker/backend/internal/websocket"
)

// Authenticator registers users and opens sessions.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}

// Portfolios reads and replaces user holdings.
type Portfolios interface {
	Get(ctx context.Context, userID uuid.UUID) ([]models.Holding, error)
	Replace(ctx context.Context, userID uuid.UUID, items []models.Holding) error
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	Auth       Authenticator
	Portfolios Portfolios
	Exchange   market.Source
	Aggregator market.Source
	Hub        *ws.Hub
	Log        *zap.Logger
}

const internalErrorMessage = "Internal server error"

// ErrorHandler is the fiber error handler: fiber errors keep their status and
// message, anything else becomes a 500 without details.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": internalErrorMessage})
	}
}

// respondError maps the application error kinds to HTTP responses.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrEmailTaken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already registered"})
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	case errors.Is(err, apperr.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "You must be signed in"})
	default:
		h.Log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": internalErrorMessage})
	}
}
