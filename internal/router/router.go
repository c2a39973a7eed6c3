// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/vehicle-tag-registry/internal/config"
	"github.com/iliyamo/vehicle-tag-registry/internal/handler"
	"github.com/iliyamo/vehicle-tag-registry/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Tag    *handler.TagHandler
	OTP    *handler.OTPHandler
	Public *handler.PublicHandler
	Admin  *handler.AdminHandler
}

// Register mounts all routes on e. The public scan path carries the
// rate limiter and the app-trust check; everything under /v1 except
// /v1/resolve requires a valid JWT.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, h Handlers) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public scan path. The identifier rides in a query parameter
	// because obfuscated payloads can contain '/'.
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	e.GET("/v1/resolve", h.Public.Resolve, rateLimit, middleware.AppTrust(cfg.AppKey))

	v1 := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))

	tags := v1.Group("/tags", middleware.RequireRole("USER", "ADMIN"))
	tags.GET("", h.Tag.List)
	tags.POST("/claim", h.Tag.Claim)
	tags.PATCH("/:id", h.Tag.Update)
	tags.POST("/:id/flags/:flag", h.Tag.ToggleFlag)
	tags.POST("/:id/disable", h.Tag.Disable)
	tags.GET("/:id/scans", h.Tag.Scans)
	tags.POST("/:id/phone/otp", h.OTP.Send)
	tags.POST("/:id/phone/verify", h.OTP.Verify)

	admin := v1.Group("/admin", middleware.RequireRole("ADMIN"))
	admin.POST("/batches", h.Admin.CreateBatch)
	admin.GET("/batches/:id/sheet", h.Admin.Sheet)
	admin.POST("/tags/:id/reactivate", h.Admin.Reactivate)
}
