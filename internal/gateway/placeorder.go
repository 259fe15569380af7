package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/iliyamo/pos-order-api/internal/model"
)

// Seller is a selling organization on the remote service. POS transactions
// are always started against the first resolvable seller.
type Seller struct {
	TypeOf string `json:"typeOf"`
	ID     string `json:"id"`
}

// Offer is a requested ticket offer, forwarded to the gateway untouched.
type Offer struct {
	ID          string `json:"id,omitempty"`
	TicketType  string `json:"ticket_type,omitempty"`
	WatcherName string `json:"watcher_name,omitempty"`
}

// StartParams starts a place-order transaction. Expires must be a future
// instant; the gateway rejects past expiries.
type StartParams struct {
	Expires       time.Time
	PassportToken string
	Seller        Seller
}

// ConfirmResult is the gateway's response to a successful confirm.
type ConfirmResult struct {
	Order model.Order `json:"order"`
}

// SearchSellers returns the sellers visible to this credential, at most one.
func (sess Session) SearchSellers(ctx context.Context) ([]Seller, error) {
	var out struct {
		Data []Seller `json:"data"`
	}
	if err := sess.do(ctx, http.MethodGet, "/sellers?limit=1", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Start opens a place-order transaction with the given passport and expiry.
func (sess Session) Start(ctx context.Context, params StartParams) (*model.Transaction, error) {
	body := map[string]interface{}{
		"expires": params.Expires.Format(time.RFC3339),
		"object": map[string]interface{}{
			"passport": map[string]string{"token": params.PassportToken},
		},
		"seller": params.Seller,
	}
	var txn model.Transaction
	if err := sess.do(ctx, http.MethodPost, "/transactions/placeOrder/start", body, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// SetCustomerContact forwards the normalized customer profile and returns
// the gateway's canonical copy.
func (sess Session) SetCustomerContact(ctx context.Context, transactionID string, profile model.Profile) (*model.Profile, error) {
	body := map[string]interface{}{
		"object": map[string]interface{}{"customerContact": profile},
	}
	path := fmt.Sprintf("/transactions/placeOrder/%s/customerContact", transactionID)
	var out model.Profile
	if err := sess.do(ctx, http.MethodPut, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSeatReservationAuthorization tentatively reserves seats for the
// given performance.
func (sess Session) CreateSeatReservationAuthorization(
	ctx context.Context, transactionID, performanceID string, offers []Offer,
) (*model.AuthorizeAction, error) {
	body := map[string]interface{}{
		"performanceId": performanceID,
		"offers":        offers,
	}
	path := fmt.Sprintf("/transactions/placeOrder/%s/actions/authorize/seatReservation", transactionID)
	var action model.AuthorizeAction
	if err := sess.do(ctx, http.MethodPost, path, body, &action); err != nil {
		return nil, err
	}
	return &action, nil
}

// CancelSeatReservationAuthorization voids a previous seat-reservation
// authorization action.
func (sess Session) CancelSeatReservationAuthorization(ctx context.Context, transactionID, actionID string) error {
	path := fmt.Sprintf("/transactions/placeOrder/%s/actions/authorize/seatReservation/%s", transactionID, actionID)
	return sess.do(ctx, http.MethodDelete, path, nil, nil)
}

// AuthorizeCashPayment authorizes a fixed-amount cash payment against the
// transaction. POS confirms always settle in cash.
func (sess Session) AuthorizeCashPayment(ctx context.Context, transactionID string, amount int64) error {
	body := map[string]interface{}{
		"object": map[string]interface{}{
			"typeOf":             PaymentMethodCash,
			"name":               PaymentMethodCash,
			"additionalProperty": []model.PropertyValue{},
			"amount":             amount,
		},
		"purpose": map[string]string{"typeOf": "PlaceOrder", "id": transactionID},
	}
	return sess.do(ctx, http.MethodPost, "/payment/authorize", body, nil)
}

// Confirm finalizes the transaction with the assembled potential actions
// and order-result identifiers.
func (sess Session) Confirm(
	ctx context.Context, transactionID string,
	potentialActions model.PotentialActions, result model.OrderResultParams,
) (*ConfirmResult, error) {
	body := map[string]interface{}{
		"potentialActions": potentialActions,
		"result":           result,
	}
	path := fmt.Sprintf("/transactions/placeOrder/%s/confirm", transactionID)
	var out ConfirmResult
	if err := sess.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReturnOrderParams confirms a return-order transaction located by
// performance day and payment number.
type ReturnOrderParams struct {
	PerformanceDay       string `json:"performanceDay"`
	PaymentNo            string `json:"paymentNo"`
	CancellationFee      int64  `json:"cancellationFee"`
	Reason               string `json:"reason"`
	InformReservationURL string `json:"informReservationUrl,omitempty"`
}

// ReturnOrderReasonCustomer marks a customer-initiated return.
const ReturnOrderReasonCustomer = "Customer"

// PaymentMethodCash is the payment method label attached to POS confirms.
const PaymentMethodCash = "Cash"

// ConfirmReturnOrder starts-and-confirms a return-order transaction on the
// remote service and returns its id.
func (sess Session) ConfirmReturnOrder(ctx context.Context, params ReturnOrderParams) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := sess.do(ctx, http.MethodPost, "/transactions/returnOrder/confirm", params, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ExecuteTask asks the remote domain to pull and run one ready task of the
// given name. Task payloads are opaque to this service.
func (sess Session) ExecuteTask(ctx context.Context, name string, data json.RawMessage) error {
	body := map[string]interface{}{"data": data}
	path := fmt.Sprintf("/tasks/%s/execute", name)
	return sess.do(ctx, http.MethodPost, path, body, nil)
}
