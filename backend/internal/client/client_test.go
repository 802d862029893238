package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/carbontracker/backend/internal/models"
)

func TestClient_LoginStoresToken(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth/session":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "pw" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"error":"Invalid email or password"}`)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"token":      "tok",
				"expires_at": time.Now().Add(time.Hour),
				"user":       models.Identity{ID: id, Name: "Ada", Email: body["email"]},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/auth/session":
			if r.Header.Get("Authorization") != "Bearer tok" {
				_, _ = io.WriteString(w, "null")
				return
			}
			_ = json.NewEncoder(w).Encode(models.Identity{ID: id, Name: "Ada"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	ctx := context.Background()

	identity, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, identity)

	_, err = c.Login(ctx, "ada@example.com", "bad")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, c.Token)

	session, err := c.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, id, session.User.ID)
	assert.Equal(t, "tok", c.Token)

	identity, err = c.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, id, identity.ID)
}

func TestClient_Portfolio(t *testing.T) {
	var saved json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"You must be signed in"}`)
			return
		}
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `[{"id":"BTC-1","symbol":"BTC","amount":2}]`)
		case http.MethodPost:
			var body struct {
				Items json.RawMessage `json:"items"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			saved = body.Items
			_, _ = io.WriteString(w, `{"message":"Portfolio updated"}`)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	ctx := context.Background()

	_, err := c.Portfolio(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)

	c.Token = "tok"
	holdings, err := c.Portfolio(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Holding{{ID: "BTC-1", Symbol: "BTC", Amount: 2}}, holdings)

	require.NoError(t, c.SavePortfolio(ctx, nil))
	assert.JSONEq(t, `[]`, string(saved), "an empty portfolio is sent as an array")

	require.NoError(t, c.SavePortfolio(ctx, []models.Holding{{ID: "ETH-2", Symbol: "ETH", Amount: 1}}))
	assert.JSONEq(t, `[{"id":"ETH-2","symbol":"ETH","amount":1}]`, string(saved))
}

func TestClient_Market(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/market/aggregator" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "boom")
			return
		}
		_, _ = io.WriteString(w, `[{"name":"Bitcoin","symbol":"btc","price":1,"change":0,"volume":21000000,"carbonFootprint":"668.74 kg CO₂","color":"#F7931A","iconUrl":""}]`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	list, err := c.Market(context.Background(), SourceAggregator)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "668.74 kg CO₂", list[0].CarbonFootprint)

	_, err = c.Market(context.Background(), SourceExchange)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New(srv.URL, time.Second).Market(context.Background(), SourceExchange)
	assert.Error(t, err)
}
