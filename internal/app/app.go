package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"voltswap/internal/clients"
	"voltswap/internal/config"
	"voltswap/internal/db"
	httpserver "voltswap/internal/http"
	"voltswap/internal/http/handlers"
	"voltswap/internal/http/middleware"
	libredis "voltswap/internal/redis"
	"voltswap/internal/redisstore"
	"voltswap/internal/repository"
	"voltswap/internal/service"
	"voltswap/internal/state"
	wshub "voltswap/internal/ws"
)

// App wires swap-service dependencies.
type App struct {
	server      *httpserver.Server
	hub         *wshub.Hub
	janitor     *service.Janitor
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	gridRepo := repository.NewGridRepository(sqlDB)
	batteryRepo := repository.NewBatteryRepository(sqlDB)
	swapRepo := repository.NewSwapRepository(sqlDB)

	bookingClient := clients.NewBookingClient(
		cfg.Booking.BaseURL,
		clients.NewDefaultHTTPClient(cfg.BookingTimeout()),
		logger,
	)

	gridService := service.NewGridService(gridRepo, logger)
	hub := wshub.NewHub(gridService, logger)

	sessions := state.NewSessionStore()
	mirror := redisstore.NewStore(redisClient, cfg.SessionTTL())
	// Rebuild in-flight sessions from the mirror so a restart cannot leave
	// reserved slots with no session left to expire them.
	if restored, err := mirror.LoadAll(context.Background()); err != nil {
		logger.Warn("failed to restore active swap sessions", zap.Error(err))
	} else {
		for i := range restored {
			sessions.Put(&restored[i])
		}
		if len(restored) > 0 {
			logger.Info("restored active swap sessions", zap.Int("count", len(restored)))
		}
	}
	coordinator := service.NewSwapCoordinator(
		gridRepo,
		batteryRepo,
		swapRepo,
		bookingClient,
		sessions,
		mirror,
		hub,
		cfg.SessionTTL(),
		logger,
	)
	janitor := service.NewJanitor(coordinator, cfg.ExpirySweepInterval(), logger)
	batteryService := service.NewBatteryService(batteryRepo, logger)

	swapHandler := handlers.NewSwapHandler(coordinator, logger)
	routes := httpserver.Routes{
		Health:          handlers.NewHealthHandler(),
		Grid:            handlers.NewGridHandler(gridService),
		GridStream:      handlers.NewGridStreamHandler(hub, logger),
		InitiateSwap:    swapHandler.HandleInitiate,
		InsertBattery:   swapHandler.HandleInsert,
		CompleteSwap:    swapHandler.HandleComplete,
		GetSwap:         swapHandler.HandleGetSession,
		CheckSlot:       swapHandler.HandleCheckSlot,
		SwapHistory:     swapHandler.HandleHistory,
		RegisterBattery: handlers.NewRegisterBatteryHandler(batteryService, logger),
	}

	router := httpserver.NewRouter(routes, middleware.AuthMiddleware(cfg.Auth.JWTSecret))
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		hub:         hub,
		janitor:     janitor,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server, the grid broadcaster and the expiry janitor.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run(ctx)
	go a.janitor.Run(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
