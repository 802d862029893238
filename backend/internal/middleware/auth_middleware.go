package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/user/carbontracker/backend/internal/auth"
	"github.com/user/carbontracker/backend/internal/models"
)

const identityKey = "identity"

// Session parses an optional "Authorization: Bearer <token>" header and
// stores the identity it carries for downstream handlers. Requests without
// a valid token continue anonymously.
func Session(tokens *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Next()
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			return c.Next()
		}

		identity := claims.Identity()
		c.Locals(identityKey, &identity)
		return c.Next()
	}
}

// Protected rejects requests that carry no session identity.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFrom(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "You must be signed in"})
		}
		return c.Next()
	}
}

// IdentityFrom returns the session identity of the request, nil when anonymous.
func IdentityFrom(c *fiber.Ctx) *models.Identity {
	identity, _ := c.Locals(identityKey).(*models.Identity)
	return identity
}

func bearerToken(header string) (string, bool) {
	// Expecting "Bearer <token>"
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
