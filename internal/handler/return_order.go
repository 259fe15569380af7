package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-order-api/internal/apperr"
	"github.com/iliyamo/pos-order-api/internal/gateway"
	"github.com/iliyamo/pos-order-api/internal/middleware"
	"github.com/iliyamo/pos-order-api/internal/store"
)

// ReturnOrderHandler confirms order returns located by performance day and
// payment number. The order snapshot cached at confirm time is the lookup
// source; once it expires (24h) the order can no longer be returned here.
type ReturnOrderHandler struct {
	Store   store.KV
	Gateway *gateway.Service
}

// NewReturnOrderHandler constructs a ReturnOrderHandler.
func NewReturnOrderHandler(kv store.KV, g *gateway.Service) *ReturnOrderHandler {
	if kv == nil || g == nil {
		panic("nil dependency passed to NewReturnOrderHandler")
	}
	return &ReturnOrderHandler{Store: kv, Gateway: g}
}

// Confirm handles POST /transactions/returnOrder/confirm.
func (h *ReturnOrderHandler) Confirm(c echo.Context) error {
	var body struct {
		PerformanceDay  string      `json:"performance_day"`
		PaymentNo       string      `json:"payment_no"`
		CancellationFee interface{} `json:"cancellation_fee"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.New(apperr.KindValidation, "invalid request body")
	}
	if body.PerformanceDay == "" {
		return apperr.New(apperr.KindValidation, "performance_day is required")
	}
	if body.PaymentNo == "" {
		return apperr.New(apperr.KindValidation, "payment_no is required")
	}
	fee, err := parseFee(body.CancellationFee)
	if err != nil {
		return err
	}

	// the order must still be in the return window
	orderKey := store.OrdersKeyPrefix + body.PerformanceDay + body.PaymentNo
	if _, err := h.Store.Get(c.Request().Context(), orderKey); err != nil {
		if err == store.ErrNotFound {
			return apperr.New(apperr.KindState, "order not found for %s%s", body.PerformanceDay, body.PaymentNo)
		}
		return err
	}

	informURL := c.Scheme() + "://" + c.Request().Host + "/webhooks/onReservationCancelled"
	sess := h.Gateway.Session(middleware.AccessToken(c))
	id, err := sess.ConfirmReturnOrder(c.Request().Context(), gateway.ReturnOrderParams{
		PerformanceDay:       body.PerformanceDay,
		PaymentNo:            body.PaymentNo,
		CancellationFee:      fee,
		Reason:               gateway.ReturnOrderReasonCustomer,
		InformReservationURL: informURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// parseFee accepts the cancellation fee as either a JSON number or a
// numeric string, which is how POS clients send it.
func parseFee(v interface{}) (int64, error) {
	switch fee := v.(type) {
	case float64:
		return int64(fee), nil
	case string:
		n, err := strconv.ParseInt(fee, 10, 64)
		if err != nil {
			return 0, apperr.New(apperr.KindValidation, "cancellation_fee must be an integer")
		}
		return n, nil
	default:
		return 0, apperr.New(apperr.KindValidation, "cancellation_fee is required")
	}
}
