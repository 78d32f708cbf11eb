package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-service/internal/api/http/handlers"
	"github.com/spec-kit/storefront-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Products       *handlers.ProductsHandler
	Cart           *handlers.CartHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.AuthMiddleware.Optional, cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Get("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)

	products := api.Group("/products")
	products.Get("/featured", cfg.Products.Featured)
	products.Get("/recommendations", cfg.Products.Recommended)
	products.Get("/category/:category", cfg.Products.ByCategory)

	adminProducts := products.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	adminProducts.Get("/", cfg.Products.ListAll)
	adminProducts.Post("/", cfg.Products.Create)
	adminProducts.Delete("/:id", cfg.Products.Delete)
	adminProducts.Patch("/:id", cfg.Products.ToggleFeatured)

	cart := api.Group("/cart", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	cart.Get("/", cfg.Cart.List)
	cart.Post("/", cfg.Cart.AddItem)
	cart.Put("/:id", cfg.Cart.UpdateQuantity)
	cart.Delete("/", cfg.Cart.Clear)

	api.Get("/analytics", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Analytics.Summary)
}
