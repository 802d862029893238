package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/carbontracker/backend/internal/client"
	"github.com/user/carbontracker/backend/internal/config"
	"github.com/user/carbontracker/backend/internal/models"
)

// fakeAPI is a minimal tracker server with one account.
type fakeAPI struct {
	mu       sync.Mutex
	holdings []models.Holding
	market   []models.Crypto
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	signedIn := r.Header.Get("Authorization") == "Bearer tok"
	unauthorized := func() {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"You must be signed in"}`)
	}

	switch {
	case r.URL.Path == "/api/auth/register":
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"message":"User created","user":{"id":"`+uuid.NewString()+`","name":"Ada","email":"ada@example.com"}}`)
	case r.URL.Path == "/api/auth/session" && r.Method == http.MethodPost:
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"Invalid email or password"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"token":      "tok",
			"expires_at": time.Now().Add(time.Hour),
			"user":       map[string]string{"id": uuid.NewString(), "name": "Ada", "email": body["email"]},
		})
	case r.URL.Path == "/api/auth/session":
		if !signedIn {
			_, _ = io.WriteString(w, "null")
			return
		}
		_, _ = io.WriteString(w, `{"id":"`+uuid.NewString()+`","name":"Ada","email":"ada@example.com"}`)
	case strings.HasPrefix(r.URL.Path, "/api/market/"):
		_ = json.NewEncoder(w).Encode(f.market)
	case r.URL.Path == "/api/portfolio" && r.Method == http.MethodGet:
		if !signedIn {
			unauthorized()
			return
		}
		_ = json.NewEncoder(w).Encode(f.holdings)
	case r.URL.Path == "/api/portfolio" && r.Method == http.MethodPost:
		if !signedIn {
			unauthorized()
			return
		}
		var body struct {
			Items []models.Holding `json:"items"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.holdings = body.Items
		_, _ = io.WriteString(w, `{"message":"Portfolio updated"}`)
	default:
		http.NotFound(w, r)
	}
}

type harness struct {
	app *App
	api *fakeAPI
	out *bytes.Buffer
	err *bytes.Buffer
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	api := &fakeAPI{
		holdings: []models.Holding{},
		market: []models.Crypto{
			{Name: "Bitcoin", Symbol: "BTC", Price: 100, Change: 1, Volume: 2e9, CarbonFootprint: "62014287 kg CO₂"},
			{Name: "Ethereum", Symbol: "ETH", Price: 50, Change: -1, Volume: 1e9, CarbonFootprint: "117600 kg CO₂"},
		},
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := &config.Client{
		ServerURL:       srv.URL,
		TokenFile:       filepath.Join(t.TempDir(), "token"),
		RefreshInterval: 10 * time.Millisecond,
		Timeout:         time.Second,
	}
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	app := &App{
		Config: cfg,
		Client: client.New(cfg.ServerURL, cfg.Timeout),
		In:     bufio.NewReader(strings.NewReader(stdin)),
		Out:    out,
		Err:    errOut,
		Render: func(s string) (string, error) { return s, nil },
	}
	return &harness{app: app, api: api, out: out, err: errOut}
}

func (h *harness) run(ctx context.Context, args ...string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("tracker", flag.ContinueOnError)
	commander := subcommands.NewCommander(fs, "tracker")
	Register(commander, h.app)
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return commander.Execute(ctx)
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t, "ada@example.com\n")
	stubPassword(t, "secret")
	ctx := context.Background()

	assert.Equal(t, subcommands.ExitFailure, h.run(ctx, "whoami"))
	assert.Contains(t, h.err.String(), "not signed in")

	require.Equal(t, subcommands.ExitSuccess, h.run(ctx, "login"), h.err.String())
	assert.Contains(t, h.out.String(), "Signed in as Ada")

	token, err := loadToken(h.app.Config.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	h.out.Reset()
	require.Equal(t, subcommands.ExitSuccess, h.run(ctx, "whoami"), h.err.String())
	assert.Equal(t, "Ada <ada@example.com>\n", h.out.String())

	require.Equal(t, subcommands.ExitSuccess, h.run(ctx, "logout"))
	token, err = loadToken(h.app.Config.TokenFile)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t, "")
	stubPassword(t, "nope")

	assert.Equal(t, subcommands.ExitFailure, h.run(context.Background(), "login", "-email", "ada@example.com"))
	assert.Contains(t, h.err.String(), "Invalid email or password")
}

func TestRegister(t *testing.T) {
	h := newHarness(t, "Ada\nada@example.com\n")
	stubPassword(t, "secret")

	require.Equal(t, subcommands.ExitSuccess, h.run(context.Background(), "register"), h.err.String())
	assert.Contains(t, h.out.String(), "Account created for Ada <ada@example.com>")
}

func TestRegister_PasswordError(t *testing.T) {
	h := newHarness(t, "")
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }

	assert.Equal(t, subcommands.ExitFailure, h.run(context.Background(), "register", "-name", "Ada", "-email", "a@b.c"))
	assert.Contains(t, h.err.String(), "not a terminal")
}

func TestMarket(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	require.Equal(t, subcommands.ExitSuccess, h.run(ctx, "market", "-sort", "price", "-desc=false"), h.err.String())
	out := h.out.String()
	assert.Contains(t, out, "# Market (exchange)")
	assert.Less(t, strings.Index(out, "Ethereum"), strings.Index(out, "Bitcoin"), "ascending price")
	assert.Contains(t, out, "62.01 Million CO₂")
	assert.Contains(t, out, "Showing 1-2 of 2")

	h.out.Reset()
	require.Equal(t, subcommands.ExitSuccess, h.run(ctx, "market", "-q", "zzz"))
	assert.Contains(t, h.out.String(), "No cryptocurrency matches")

	assert.Equal(t, subcommands.ExitUsageError, h.run(ctx, "market", "-sort", "marketCap"))
	assert.Equal(t, subcommands.ExitUsageError, h.run(ctx, "market", "-n", "7"))
	assert.Equal(t, subcommands.ExitUsageError, h.run(ctx, "market", "-source", "nasdaq"))
}

func TestSaveAndPortfolio(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, saveToken(h.app.Config.TokenFile, "tok"))
	ctx := context.Background()

	require.Equal(t, subcommands.ExitSuccess, h.run(ctx, "save", "BTC=2", "ETH=1"), h.err.String())
	require.Len(t, h.api.holdings, 2)
	assert.Equal(t, "BTC", h.api.holdings[0].Symbol)
	assert.NotEqual(t, h.api.holdings[0].ID, h.api.holdings[1].ID)

	h.out.Reset()
	require.Equal(t, subcommands.ExitSuccess, h.run(ctx, "portfolio"), h.err.String())
	out := h.out.String()
	assert.Contains(t, out, "$250.00")
	assert.Contains(t, out, "Total value")

	btcID := h.api.holdings[0].ID
	require.Equal(t, subcommands.ExitSuccess, h.run(ctx, "save", "-rm", btcID), h.err.String())
	require.Len(t, h.api.holdings, 1)
	assert.Equal(t, "ETH", h.api.holdings[0].Symbol)

	assert.Equal(t, subcommands.ExitFailure, h.run(ctx, "save", "DOGE=1"), "unknown symbol")
	assert.Equal(t, subcommands.ExitFailure, h.run(ctx, "save", "ETH=-1"))
	assert.Equal(t, subcommands.ExitFailure, h.run(ctx, "save", "ETH"))
	assert.Equal(t, subcommands.ExitUsageError, h.run(ctx, "save"))
	assert.Len(t, h.api.holdings, 1, "failed edits are not saved")

	require.Equal(t, subcommands.ExitSuccess, h.run(ctx, "save", "-clear"))
	assert.Empty(t, h.api.holdings)
}

func TestPortfolio_RequiresLogin(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, subcommands.ExitFailure, h.run(context.Background(), "portfolio"))

	require.NoError(t, saveToken(h.app.Config.TokenFile, "expired"))
	assert.Equal(t, subcommands.ExitFailure, h.run(context.Background(), "portfolio"))
	assert.Contains(t, h.err.String(), "You must be signed in")
}

func TestWatch_StopsOnCancel(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, saveToken(h.app.Config.TokenFile, "tok"))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.Equal(t, subcommands.ExitSuccess, h.run(ctx, "watch", "-n", "5"))
	assert.GreaterOrEqual(t, strings.Count(h.out.String(), "# Market (exchange)"), 2)
}

func TestWatch_RequiresLogin(t *testing.T) {
	h := newHarness(t, "")

	assert.Equal(t, subcommands.ExitFailure, h.run(context.Background(), "watch"))
	assert.Contains(t, h.err.String(), "not signed in")
	assert.NotContains(t, h.out.String(), "# Market")
}

func TestWatch_StopsOnLogout(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, saveToken(h.app.Config.TokenFile, "tok"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	time.AfterFunc(50*time.Millisecond, func() { _ = removeToken(h.app.Config.TokenFile) })

	start := time.Now()
	assert.Equal(t, subcommands.ExitSuccess, h.run(ctx, "watch"))
	assert.Less(t, time.Since(start), 4*time.Second, "watch stops once the token is gone")
	assert.NoError(t, ctx.Err())
	assert.Contains(t, h.out.String(), "# Market (exchange)")
	assert.Contains(t, h.out.String(), "Signed out, stopped refreshing.")
	assert.NotContains(t, h.err.String(), "refresh failed")
}

func TestParseHolding(t *testing.T) {
	symbol, amount, err := parseHolding(" btc = 0.25 ")
	require.NoError(t, err)
	assert.Equal(t, "btc", symbol)
	assert.Equal(t, 0.25, amount)

	_, _, err = parseHolding("BTC")
	assert.Error(t, err)
	_, _, err = parseHolding("BTC=lots")
	assert.Error(t, err)
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")

	token, err := loadToken(path)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, saveToken(path, "abc"))
	token, err = loadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, removeToken(path))
	require.NoError(t, removeToken(path))
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	got, err := prompt(bufio.NewReader(strings.NewReader("last")), &out, "Email")
	require.NoError(t, err)
	assert.Equal(t, "last", got)
	assert.Equal(t, "Email: ", out.String())

	_, err = prompt(bufio.NewReader(strings.NewReader("")), &out, "Email")
	assert.ErrorIs(t, err, io.EOF)
}
