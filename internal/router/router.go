// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-store/internal/config"
	"github.com/iliyamo/rental-store/internal/handler"
	"github.com/iliyamo/rental-store/internal/middleware"
	"github.com/iliyamo/rental-store/internal/projection"
	"github.com/iliyamo/rental-store/internal/service"
)

const (
	roleStaff   = service.RoleStaff
	roleManager = service.RoleManager
)

// Deps is everything the routes need.
type Deps struct {
	Services  *service.Services
	Projector *projection.Projector
	DB        handler.Pinger
	Redis     *redis.Client // nil disables rate limiting
	RateLimit config.RateLimitConfig
	JWTSecret string
	AccessTTL time.Duration
	Log       zerolog.Logger
}

// New builds the Echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))

	RegisterPublic(e, d)
	RegisterAPI(e, d)
	return e
}

// RegisterPublic registers the routes that need no token: probes and login.
func RegisterPublic(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	if d.DB != nil {
		e.GET("/readyz", handler.Ready(d.DB))
	}
	a := handler.NewAuthHandler(d.Services, d.Projector, d.Log, d.JWTSecret, d.AccessTTL)
	e.POST("/v1/auth/login", a.Login)
}

// RegisterAPI registers the /v1 resources. Every route needs a staff
// token; store and staff mutations need MANAGER.
func RegisterAPI(e *echo.Echo, d Deps) {
	v1 := e.Group("/v1", middleware.JWTAuth(d.JWTSecret), middleware.RequireRole(roleStaff, roleManager))
	manager := middleware.RequireRole(roleManager)

	a := handler.NewAuthHandler(d.Services, d.Projector, d.Log, d.JWTSecret, d.AccessTTL)
	v1.GET("/me", a.Me)

	cu := handler.NewCustomerHandler(d.Services, d.Projector, d.Log)
	v1.POST("/customers", cu.Create)
	v1.GET("/customers", cu.List)
	v1.GET("/customers/:id", cu.Get)
	v1.PUT("/customers/:id", cu.Update)
	v1.DELETE("/customers/:id", cu.Delete)
	v1.GET("/customers/:id/rentals", cu.Rentals)
	v1.GET("/customers/:id/payments", cu.Payments)
	v1.GET("/customers/:id/balance", cu.Balance)

	f := handler.NewFilmHandler(d.Services, d.Projector, d.Log)
	v1.POST("/films", f.Create)
	v1.GET("/films", f.List)
	v1.GET("/films/:id", f.Get)
	v1.PUT("/films/:id", f.Update)
	v1.DELETE("/films/:id", f.Delete)
	v1.GET("/films/:id/availability", f.Availability)

	inv := handler.NewInventoryHandler(d.Services, d.Projector, d.Log)
	v1.POST("/inventory", inv.Create)
	v1.GET("/inventory", inv.List)
	v1.GET("/inventory/:id", inv.Get)
	v1.DELETE("/inventory/:id", inv.Delete)

	r := handler.NewRentalHandler(d.Services, d.Projector, d.Log)
	v1.POST("/rentals", r.Create)
	v1.GET("/rentals", r.List)
	v1.GET("/rentals/:id", r.Get)
	v1.POST("/rentals/:id/return", r.Return)
	v1.DELETE("/rentals/:id", r.Delete)
	v1.POST("/payments", r.CreatePayment)
	v1.GET("/payments", r.ListPayments)
	v1.GET("/payments/:id", r.GetPayment)
	v1.DELETE("/payments/:id", r.DeletePayment)

	s := handler.NewStoreHandler(d.Services, d.Projector, d.Log)
	v1.GET("/stores", s.List)
	v1.GET("/stores/:id", s.Get)
	v1.POST("/stores", s.Create, manager)
	v1.PUT("/stores/:id", s.Update, manager)
	v1.DELETE("/stores/:id", s.Delete, manager)
	v1.GET("/staff", s.ListStaff)
	v1.GET("/staff/:id", s.GetStaff)
	v1.POST("/staff", s.CreateStaff, manager)
	v1.PUT("/staff/:id", s.UpdateStaff, manager)
	v1.DELETE("/staff/:id", s.DeleteStaff, manager)

	cat := handler.NewCatalogHandler(d.Services, d.Projector, d.Log)
	v1.POST("/actors", cat.CreateActor)
	v1.GET("/actors", cat.ListActors)
	v1.GET("/actors/:id", cat.GetActor)
	v1.PUT("/actors/:id", cat.UpdateActor)
	v1.DELETE("/actors/:id", cat.DeleteActor)
	v1.POST("/categories", cat.CreateCategory)
	v1.GET("/categories", cat.ListCategories)
	v1.GET("/categories/:id", cat.GetCategory)
	v1.GET("/languages", cat.ListLanguages)
	v1.GET("/languages/:id", cat.GetLanguage)
	v1.GET("/countries", cat.ListCountries)
	v1.GET("/cities", cat.ListCities)
}
