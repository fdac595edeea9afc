// Package app contains the application setup for the shopcore service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	catalogservice "github.com/webmart/shopcore/internal/catalog/service"
	catalogstore "github.com/webmart/shopcore/internal/catalog/store"
	catalogrest "github.com/webmart/shopcore/internal/catalog/transport/rest"
	"github.com/webmart/shopcore/internal/config"
	"github.com/webmart/shopcore/internal/fulfillment"
	orderservice "github.com/webmart/shopcore/internal/order/service"
	orderstore "github.com/webmart/shopcore/internal/order/store"
	orderrest "github.com/webmart/shopcore/internal/order/transport/rest"
	userservice "github.com/webmart/shopcore/internal/user/service"
	userstore "github.com/webmart/shopcore/internal/user/store"
	userrest "github.com/webmart/shopcore/internal/user/transport/rest"
	"github.com/webmart/shopcore/pkg/server"
)

type Dependencies struct {
	CatalogService catalogservice.CatalogService
	OrderService   orderservice.OrderService
	UserService    userservice.UserService
	Fulfillment    *fulfillment.Coordinator
	Logger         *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, logger *slog.Logger) *Dependencies {
	productStore := catalogstore.NewPgStore(dbPool)
	userStore := userstore.NewPgStore(dbPool)

	return &Dependencies{
		CatalogService: catalogservice.NewService(productStore),
		OrderService:   orderservice.NewService(orderstore.NewPgStore(dbPool)),
		UserService:    userservice.NewService(userStore),
		Fulfillment:    fulfillment.NewCoordinator(productStore, userStore, logger),
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the shopcore application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the shopcore application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	catalogHandler := catalogrest.NewHandler(deps.CatalogService, deps.Logger)
	catalogHandler.RegisterRoutes(mux)

	orderHandler := orderrest.NewHandler(deps.OrderService, deps.Fulfillment, deps.Logger)
	orderHandler.RegisterRoutes(mux)

	userHandler := userrest.NewHandler(deps.UserService, deps.Logger)
	userHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the shopcore application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
