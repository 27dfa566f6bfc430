package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"ecomart/internal/config"
	"ecomart/internal/domain"
	"ecomart/internal/http/handlers"
	applog "ecomart/internal/log"
	"ecomart/internal/repos"
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

	// Hybrid store: the configured sqlite file, or an in-memory database when
	// the file cannot be opened.
	db, mode, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[db] mode=%s", mode)

	engine := html.New("./web/templates", ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and surface a friendly message; never leak internals.
			applog.Error(c, "server.error", err, nil)
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
			}
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:")
		},
		AllowCredentials: true,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 15 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many requests, retry soon"})
		},
	}))

	deps := handlers.NewDeps(db)
	authH := deps.AuthHandler
	prodH := deps.ProductHandler
	orderH := deps.OrderHandler

	// ---------- Static frontend ----------
	app.Static("/", cfg.StaticDir)

	// ---------- Auth ----------
	auth := app.Group("/api/auth")
	auth.Post("/register-consumer", authH.RegisterConsumer)
	auth.Post("/register-seller", authH.RegisterSeller)
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	auth.Post("/logout", authH.Logout)
	auth.Get("/me", handlers.RequireAuth(deps.Auth), authH.Me)

	// ---------- Catalog ----------
	products := app.Group("/api/products")
	products.Get("/", prodH.List)
	products.Get("/search/:query", prodH.Search)
	products.Get("/seller/my-products", handlers.RequireRole(deps.Auth, domain.RoleSeller), prodH.MyProducts)
	products.Post("/", handlers.RequireRole(deps.Auth, domain.RoleSeller), prodH.Create)
	products.Get("/:id", prodH.Detail)
	products.Put("/:id", handlers.RequireRole(deps.Auth, domain.RoleSeller), prodH.Update)
	products.Delete("/:id", handlers.RequireRole(deps.Auth, domain.RoleSeller), prodH.Delete)

	// ---------- Orders ----------
	orders := app.Group("/api/orders")
	orders.Post("/", handlers.RequireRole(deps.Auth, domain.RoleBuyer), orderH.Place)
	orders.Get("/my-orders", handlers.RequireRole(deps.Auth, domain.RoleBuyer), orderH.MyOrders)
	orders.Get("/seller/orders", handlers.RequireRole(deps.Auth, domain.RoleSeller), orderH.SellerOrders)
	orders.Get("/:orderId", handlers.RequireAuth(deps.Auth), orderH.Detail)
	orders.Patch("/:orderId/cancel", handlers.RequireRole(deps.Auth, domain.RoleBuyer), orderH.Cancel)
	orders.Patch("/:orderId/status", handlers.RequireRole(deps.Auth, domain.RoleSeller), orderH.UpdateStatus)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "db_mode": mode})
	})
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
