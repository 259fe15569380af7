package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-order-api/internal/apperr"
	"github.com/iliyamo/pos-order-api/internal/gateway"
	"github.com/iliyamo/pos-order-api/internal/middleware"
	"github.com/iliyamo/pos-order-api/internal/model"
	"github.com/iliyamo/pos-order-api/internal/orchestrator"
	"github.com/iliyamo/pos-order-api/internal/queue"
)

// PlaceOrderHandler exposes the five place-order operations over HTTP.
// Each request builds a fresh gateway session from its own bearer token;
// no credential is shared between requests. Classified errors are returned
// as-is and mapped to statuses by the apperr HTTP error handler.
type PlaceOrderHandler struct {
	Orchestrator *orchestrator.Orchestrator
	Gateway      *gateway.Service
}

// NewPlaceOrderHandler constructs a PlaceOrderHandler. Both dependencies
// must be non-nil.
func NewPlaceOrderHandler(o *orchestrator.Orchestrator, g *gateway.Service) *PlaceOrderHandler {
	if o == nil || g == nil {
		panic("nil dependency passed to NewPlaceOrderHandler")
	}
	return &PlaceOrderHandler{Orchestrator: o, Gateway: g}
}

func (h *PlaceOrderHandler) session(c echo.Context) gateway.Session {
	return h.Gateway.Session(middleware.AccessToken(c))
}

// Start handles POST /transactions/placeOrder/start. The body must carry a
// future ISO8601 expiry.
func (h *PlaceOrderHandler) Start(c echo.Context) error {
	var body struct {
		Expires string `json:"expires"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.New(apperr.KindValidation, "invalid request body")
	}
	if body.Expires == "" {
		return apperr.New(apperr.KindValidation, "expires is required")
	}
	expires, err := time.Parse(time.RFC3339, body.Expires)
	if err != nil {
		return apperr.New(apperr.KindValidation, "expires must be an ISO8601 instant")
	}

	txn, err := h.Orchestrator.Start(c.Request().Context(), h.session(c), expires)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, txn)
}

// customerContactBody is the POS contact payload. Field names follow the
// POS convention; they are normalized to the canonical profile here.
type customerContactBody struct {
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Tel       string `json:"tel"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Age       string `json:"age"`
}

// SetCustomerContact handles PUT
// /transactions/placeOrder/:transactionId/customerContact.
func (h *PlaceOrderHandler) SetCustomerContact(c echo.Context) error {
	var body customerContactBody
	if err := c.Bind(&body); err != nil {
		return apperr.New(apperr.KindValidation, "invalid request body")
	}
	if body.LastName == "" || body.FirstName == "" || body.Tel == "" || body.Email == "" {
		return apperr.New(apperr.KindValidation, "last_name, first_name, tel and email are required")
	}

	contact := model.Profile{
		ID:              middleware.UserID(c),
		GivenName:       body.FirstName,
		FamilyName:      body.LastName,
		Telephone:       body.Tel,
		TelephoneRegion: body.Address,
		Email:           body.Email,
		Age:             body.Age,
	}

	profile, err := h.Orchestrator.SetCustomerContact(c.Request().Context(), h.session(c), c.Param("transactionId"), contact)
	if err != nil {
		return err
	}

	// POS compatibility: echo the original field names alongside the
	// canonical profile
	return c.JSON(http.StatusCreated, echo.Map{
		"givenName":       profile.GivenName,
		"familyName":      profile.FamilyName,
		"telephone":       profile.Telephone,
		"telephoneRegion": profile.TelephoneRegion,
		"email":           profile.Email,
		"age":             profile.Age,
		"last_name":       profile.FamilyName,
		"first_name":      profile.GivenName,
		"tel":             profile.Telephone,
	})
}

// AuthorizeSeatReservation handles POST
// /transactions/placeOrder/:transactionId/actions/authorize/seatReservation.
func (h *PlaceOrderHandler) AuthorizeSeatReservation(c echo.Context) error {
	var body struct {
		PerformanceID string          `json:"performance_id"`
		Offers        []gateway.Offer `json:"offers"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.New(apperr.KindValidation, "invalid request body")
	}

	action, err := h.Orchestrator.AuthorizeSeatReservation(
		c.Request().Context(), h.session(c), c.Param("transactionId"), body.PerformanceID, body.Offers)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, action)
}

// CancelSeatReservationAuthorization handles DELETE
// /transactions/placeOrder/:transactionId/actions/authorize/seatReservation/:actionId.
func (h *PlaceOrderHandler) CancelSeatReservationAuthorization(c echo.Context) error {
	err := h.Orchestrator.CancelSeatReservationAuthorization(
		c.Request().Context(), h.session(c), c.Param("transactionId"), c.Param("actionId"))
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Confirm handles POST /transactions/placeOrder/:transactionId/confirm.
// On success it publishes an order.confirmed event; publish failures are
// logged, never surfaced; a lost event must not fail the order.
func (h *PlaceOrderHandler) Confirm(c echo.Context) error {
	transactionID := c.Param("transactionId")
	out, err := h.Orchestrator.Confirm(c.Request().Context(), h.session(c), transactionID)
	if err != nil {
		return err
	}

	reservationIDs := make([]string, 0, len(out.EventReservations))
	for _, r := range out.EventReservations {
		reservationIDs = append(reservationIDs, r.QR)
	}
	// everything the goroutine needs is copied out here; echo recycles the
	// context as soon as the handler returns
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queue.PublishOrderConfirmed(ctx, queue.OrderConfirmedEvent{
			TransactionID:      transactionID,
			ConfirmationNumber: out.ConfirmationNumber,
			PaymentNo:          out.PaymentNo,
			PerformanceDay:     out.EventDay,
			ReservationIDs:     reservationIDs,
			Amount:             out.Order.Price,
			ConfirmedAt:        time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			log.Printf("place-order: publish order.confirmed failed: %v", err)
		}
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"order":             out.Order,
		"eventReservations": out.EventReservations,
	})
}
