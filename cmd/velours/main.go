package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"velours/internal/config"
	"velours/internal/http/handlers"
	applog "velours/internal/log"
	"velours/internal/repos"
	"velours/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong, please try again",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc)

	// Storefront API
	api := app.Group("/api/v1")
	api.Get("/products", deps.CatalogHandler.List)
	api.Get("/products/:id", deps.CatalogHandler.Detail)
	api.Get("/brands", deps.CatalogHandler.Brands)
	api.Get("/categories", deps.CatalogHandler.Categories)

	checkoutLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|checkout"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.checkout.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Post("/orders", checkoutLimiter, deps.OrderHandler.Place)
	api.Get("/orders/:id", deps.OrderHandler.View)

	api.Post("/clients", deps.ClientHandler.GetOrCreate)
	api.Post("/wishlist", deps.ClientHandler.SaveToWishlist)
	api.Delete("/wishlist", deps.ClientHandler.RemoveFromWishlist)
	api.Get("/wishlist/:clientID", deps.ClientHandler.ListWishlist)
	api.Post("/waitlist", deps.ClientHandler.JoinWaitlist)
	api.Post("/views", deps.ClientHandler.TrackView)

	// Auth (login throttled)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), authH.Login)
	app.Post("/logout", authH.Logout)

	// Back office
	admin := app.Group("/admin", handlers.RequireStaff(authSvc))
	admin.Get("/orders", deps.AdminHandler.Orders)
	admin.Get("/orders/:id", deps.AdminHandler.OrderDetail)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Get("/waitlist/:productID", deps.AdminHandler.Waitlist)
	admin.Get("/clients", handlers.RequireAdmin(authSvc), deps.AdminHandler.ClientsPage)
	admin.Get("/clients/:id", handlers.RequireAdmin(authSvc), deps.AdminHandler.ClientDetail)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
