package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/user/carbontracker/backend/internal/auth"
	"github.com/user/carbontracker/backend/internal/models"
)

func newApp(tokens *auth.TokenIssuer) *fiber.App {
	app := fiber.New()
	app.Use(Session(tokens))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(IdentityFrom(c))
	})
	app.Get("/private", Protected(), func(c *fiber.Ctx) error {
		return c.SendString(IdentityFrom(c).Email)
	})
	return app
}

func TestSession(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour, "carbontracker")
	app := newApp(tokens)

	id := models.Identity{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
	token, _, err := tokens.Generate(id)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   *models.Identity
	}{
		{"anonymous", "", nil},
		{"valid", "Bearer " + token, &id},
		{"lowercase scheme", "bearer " + token, &id},
		{"garbage", "Bearer nope", nil},
		{"wrong scheme", "Basic " + token, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var got *models.Identity
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestProtected(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour, "carbontracker")
	app := newApp(tokens)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, _, err := tokens.Generate(models.Identity{ID: uuid.New(), Email: "ada@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ada@example.com", string(body))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/fail", func(c *fiber.Ctx) error { return fiber.ErrBadGateway })

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(fiber.StatusNoContent), entries[0].ContextMap()["status"])
	assert.Equal(t, int64(fiber.StatusBadGateway), entries[1].ContextMap()["status"])
}
