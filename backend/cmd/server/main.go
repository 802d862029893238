package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/user/carbontracker/backend/internal/auth"
	"github.com/user/carbontracker/backend/internal/config"
	"github.com/user/carbontracker/backend/internal/database"
	"github.com/user/carbontracker/backend/internal/handlers"
	"github.com/user/carbontracker/backend/internal/logger"
	"github.com/user/carbontracker/backend/internal/market"
	"github.com/user/carbontracker/backend/internal/middleware"
	"github.com/user/carbontracker/backend/internal/portfolio"
	"github.com/user/carbontracker/backend/internal/ticker"
	internalws "github.com/user/carbontracker/backend/internal/websocket"
)

func main() {
	cfg := config.MustLoad()

	log := logger.Must(cfg.Env)
	defer func() { _ = log.Sync() }()

	log.Info("starting carbon tracker",
		zap.String("env", cfg.Env),
		zap.String("address", cfg.HTTP.Address),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	pool, err := database.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Postgres.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	httpClient := &http.Client{Timeout: cfg.Market.Timeout}

	exchange := market.NewExchange(market.ExchangeConfig{
		BaseURL: cfg.Market.ExchangeURL,
		Quote:   cfg.Market.QuoteAsset,
		Timeout: cfg.Market.Timeout,
	}, httpClient, log)
	aggregator := market.NewAggregator(market.AggregatorConfig{
		BaseURL:          cfg.Market.AggregatorURL,
		PerPage:          cfg.Market.AggregatorPerPage,
		FallbackPath:     cfg.Market.FallbackPath,
		FallbackSelector: cfg.Market.FallbackSelector,
		Timeout:          cfg.Market.Timeout,
	}, httpClient, log)

	// Initialize WebSocket Hub and the market ticker feeding it
	hub := internalws.NewHub(log)
	go hub.Run(ctx)

	tk := ticker.New(exchange, cfg.Market.TickerInterval, log)
	go tk.Run(ctx)
	go hub.Listen(ctx, tk.Updates)

	h := &handlers.Handler{
		Auth:       auth.NewService(database.NewUserStore(pool), tokens),
		Portfolios: portfolio.NewService(database.NewPortfolioStore(pool)),
		Exchange:   exchange,
		Aggregator: aggregator,
		Hub:        hub,
		Log:        log,
	}

	app := fiber.New(fiber.Config{
		AppName:               "carbontracker",
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: cfg.Env != config.EnvLocal,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.HTTP.AllowOrigins}))
	app.Use(middleware.RequestLogger(log))

	handlers.SetupRoutes(app, h, tokens)

	go func() {
		if err := app.Listen(cfg.HTTP.Address); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("got signal to shutdown server")

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error("stopping server", zap.Error(err))
	}
}
