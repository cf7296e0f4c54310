package server

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/infinitystorm/server/internal/api/handler"
	"github.com/infinitystorm/server/internal/api/middleware"
	"github.com/infinitystorm/server/internal/config"
	"github.com/infinitystorm/server/internal/pkg/logger"
	"github.com/infinitystorm/server/internal/transport/cascadesync"
)

// SetupRoutes wires the HTTP and WebSocket surface: auth, spins, history,
// wallet, and the cascade-sync socket.
func SetupRoutes(
	app *fiber.App,
	cfg *config.Config,
	log *logger.Logger,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	spinHandler *handler.SpinHandler,
	walletHandler *handler.WalletHandler,
	fairnessHandler *handler.FairnessHandler,
	cascadeHandler *cascadesync.Handler,
) {
	app.Get("/health", handler.Health)

	jwtAuth := middleware.JWTAuthMiddleware(cfg.JWT.Secret, log)
	publicRateLimiter := rateLimiter.PublicMiddleware()
	authRateLimiter := rateLimiter.AuthenticatedMiddleware()

	v1 := app.Group("/v1")

	auth := v1.Group("/auth")
	auth.Use(publicRateLimiter)
	auth.Post("/login", authHandler.Login)

	v1.Post("/spin", jwtAuth, authRateLimiter, spinHandler.ExecuteSpin)

	history := v1.Group("/history")
	history.Use(jwtAuth, authRateLimiter)
	history.Get("/spins", spinHandler.History)

	wal := v1.Group("/wallet")
	wal.Use(jwtAuth, authRateLimiter)
	wal.Get("/balance", walletHandler.Balance)
	wal.Get("/transactions", walletHandler.Transactions)
	wal.Get("/stats", walletHandler.Stats)
	wal.Post("/admin/adjust", walletHandler.Adjust)

	fairness := v1.Group("/fairness")
	fairness.Use(publicRateLimiter)
	fairness.Post("/verify-spin", fairnessHandler.VerifySpinHash)
	fairness.Post("/verify-chain", fairnessHandler.VerifyChain)

	// Cascade sync socket: auth runs as ordinary HTTP middleware ahead of
	// the upgrade so c.Locals("playerID") is already populated when
	// websocket.New hands the connection to cascadeHandler.Upgrade.
	ws := v1.Group("/cascade-sync")
	ws.Use(jwtAuth)
	ws.Use(func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/ws", websocket.New(cascadeHandler.Upgrade))

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    "NOT_FOUND",
				"message": "Route not found",
			},
		})
	})
}
