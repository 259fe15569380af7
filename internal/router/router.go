package router // route registration for the POS order API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-order-api/internal/config"
	"github.com/iliyamo/pos-order-api/internal/handler"
	"github.com/iliyamo/pos-order-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterTransactions registers the place-order and return-order routes.
// Every route requires a valid Bearer token; place-order operations demand
// the pos scope, and return-order additionally accepts the transactions
// scope.
func RegisterTransactions(e *echo.Echo, cfg config.Config, po *handler.PlaceOrderHandler, ro *handler.ReturnOrderHandler) {
	auth := middleware.JWTAuth(cfg.JWTSecret)

	place := e.Group("/transactions/placeOrder", auth,
		middleware.PermitScopes(cfg.ResourceServerID, "pos"))
	place.POST("/start", po.Start)
	place.PUT("/:transactionId/customerContact", po.SetCustomerContact)
	place.POST("/:transactionId/actions/authorize/seatReservation", po.AuthorizeSeatReservation)
	place.DELETE("/:transactionId/actions/authorize/seatReservation/:actionId", po.CancelSeatReservationAuthorization)
	place.POST("/:transactionId/confirm", po.Confirm)

	ret := e.Group("/transactions/returnOrder", auth,
		middleware.PermitScopes(cfg.ResourceServerID, "pos", "transactions"))
	ret.POST("/confirm", ro.Confirm)
}
