package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adventureapp/adventure-api/internal/api/handler"
	"github.com/adventureapp/adventure-api/internal/api/middleware"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

// Deps carries the constructed services and connections the router wires
// into handlers.
type Deps struct {
	Auth       ports.AuthService
	Adventures ports.AdventureService
	Images     ports.ImageService
	Keys       ports.APIKeyService
	Mongo      *mongo.Database
	Redis      *redis.Client
	Logger     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("adventure"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	adventureHandler := handler.NewAdventureHandler(deps.Adventures)
	imageHandler := handler.NewImageHandler(deps.Images)
	adminHandler := handler.NewAdminHandler(deps.Keys, deps.Auth)

	authed := middleware.Auth(deps.Auth)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/token", authHandler.Token)

	// --- Identity introspection ---
	e.GET("/v1/me", authHandler.Me, authed, middleware.RequireUser())
	e.GET("/v1/key", authHandler.KeyIdentity, authed, middleware.RequireAPIKey())

	// --- Adventure routes (either credential kind) ---
	adventures := e.Group("/v1/adventures", authed)
	adventures.GET("", adventureHandler.List)
	adventures.POST("", adventureHandler.Start)
	adventures.GET("/:id/nodes", adventureHandler.GetNodes)
	adventures.PUT("/:id/continue", adventureHandler.Continue)
	adventures.PATCH("/:id/truncate", adventureHandler.Truncate)
	adventures.DELETE("/:id", adventureHandler.Delete)
	adventures.POST("/:id/clone", adventureHandler.Clone)
	adventures.GET("/:id/cover", imageHandler.GetCover)
	adventures.PUT("/:id/cover", imageHandler.UpdateCover)
	adventures.GET("/:id/cover/thumbnail", imageHandler.Thumbnail)

	// --- Admin routes ---
	admin := e.Group("/admin", authed, middleware.RequireAdmin(deps.Auth))
	admin.POST("/api-keys", adminHandler.GenerateKey)
	admin.GET("/api-keys", adminHandler.ListKeys)
	admin.GET("/api-keys/:id", adminHandler.GetKey)
	admin.PATCH("/api-keys/:id", adminHandler.UpdateKey)
	admin.PATCH("/api-keys/:id/deactivate", adminHandler.DeactivateKey)
	admin.DELETE("/api-keys/:id", adminHandler.DeleteKey)
	admin.POST("/users", adminHandler.CreateUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/debug/user-role", adminHandler.UserRole)

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
