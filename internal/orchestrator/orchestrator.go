// Package orchestrator drives the place-order purchase flow against the
// remote gateway: start, set-customer-contact, authorize-seat-reservation,
// cancel, confirm. Transaction lifecycle state is implicit in which keyed
// store entries are populated for the transaction id; nothing else mutates
// those entries. Callers must not issue concurrent operations against the
// same transaction id; the store is last-write-wins and the last write
// observed simply wins.
package orchestrator

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/iliyamo/pos-order-api/internal/apperr"
	"github.com/iliyamo/pos-order-api/internal/assembler"
	"github.com/iliyamo/pos-order-api/internal/gateway"
	"github.com/iliyamo/pos-order-api/internal/model"
	"github.com/iliyamo/pos-order-api/internal/store"
)

// PassportScope is the scope requested from the broker when starting a POS
// transaction.
const PassportScope = "placeOrderTransaction.POS"

// GatewaySession is the per-request slice of the gateway used by the
// orchestrator. gateway.Session satisfies it; tests substitute fakes.
type GatewaySession interface {
	SearchSellers(ctx context.Context) ([]gateway.Seller, error)
	Start(ctx context.Context, params gateway.StartParams) (*model.Transaction, error)
	SetCustomerContact(ctx context.Context, transactionID string, profile model.Profile) (*model.Profile, error)
	CreateSeatReservationAuthorization(ctx context.Context, transactionID, performanceID string, offers []gateway.Offer) (*model.AuthorizeAction, error)
	CancelSeatReservationAuthorization(ctx context.Context, transactionID, actionID string) error
	AuthorizeCashPayment(ctx context.Context, transactionID string, amount int64) error
	Confirm(ctx context.Context, transactionID string, potentialActions model.PotentialActions, result model.OrderResultParams) (*gateway.ConfirmResult, error)
}

// PassportIssuer obtains short-lived authorization passports from the
// scope broker.
type PassportIssuer interface {
	PublishPassport(ctx context.Context, scope string) (string, error)
}

// NumberIssuer allocates day-scoped payment numbers.
type NumberIssuer interface {
	Publish(ctx context.Context, dayKey string) (string, error)
}

// Orchestrator sequences the purchase flow. It owns the transaction-scoped
// cache entries for each transaction it drives.
type Orchestrator struct {
	kv        store.KV
	passports PassportIssuer
	numbers   NumberIssuer
}

// New builds an Orchestrator over the given store, passport broker and
// payment-number issuer.
func New(kv store.KV, passports PassportIssuer, numbers NumberIssuer) *Orchestrator {
	return &Orchestrator{kv: kv, passports: passports, numbers: numbers}
}

// Start resolves a seller, obtains a passport, starts a transaction on the
// gateway and caches the returned agent under the transaction id.
func (o *Orchestrator) Start(ctx context.Context, gw GatewaySession, expires time.Time) (*model.Transaction, error) {
	sellers, err := gw.SearchSellers(ctx)
	if err != nil {
		return nil, err
	}
	if len(sellers) == 0 {
		return nil, apperr.New(apperr.KindUpstream, "seller not found")
	}
	seller := sellers[0]

	passport, err := o.passports.PublishPassport(ctx, PassportScope)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, err, "passport publish failed")
	}

	txn, err := gw.Start(ctx, gateway.StartParams{
		Expires:       expires,
		PassportToken: passport,
		Seller:        seller,
	})
	if err != nil {
		return nil, err
	}

	if err := o.setJSON(ctx, store.AgentKeyPrefix+txn.ID, txn.Agent, store.TransactionTTL); err != nil {
		return nil, err
	}
	return txn, nil
}

// SetCustomerContact forwards the normalized contact to the gateway and
// caches the gateway's canonical profile. A partial profile is rejected
// before any cache mutation.
func (o *Orchestrator) SetCustomerContact(ctx context.Context, gw GatewaySession, transactionID string, contact model.Profile) (*model.Profile, error) {
	if contact.FamilyName == "" || contact.GivenName == "" || contact.Telephone == "" || contact.Email == "" {
		return nil, apperr.New(apperr.KindValidation, "last name, first name, telephone and email are required")
	}

	profile, err := gw.SetCustomerContact(ctx, transactionID, contact)
	if err != nil {
		return nil, err
	}

	if err := o.setJSON(ctx, store.CustomerProfileKeyPrefix+transactionID, profile, store.TransactionTTL); err != nil {
		return nil, err
	}
	return profile, nil
}

// AuthorizeSeatReservation forwards the offers (an absent list counts as
// empty) and, when the gateway returns a result, caches the price and the
// full authorization result, replacing any prior values.
func (o *Orchestrator) AuthorizeSeatReservation(ctx context.Context, gw GatewaySession, transactionID, performanceID string, offers []gateway.Offer) (*model.AuthorizeAction, error) {
	if offers == nil {
		offers = []gateway.Offer{}
	}

	action, err := gw.CreateSeatReservationAuthorization(ctx, transactionID, performanceID, offers)
	if err != nil {
		return nil, err
	}

	if action.Result != nil {
		amount := strconv.FormatInt(action.Result.Price, 10)
		if err := o.kv.Set(ctx, store.AmountKeyPrefix+transactionID, amount, store.TransactionTTL); err != nil {
			return nil, err
		}
		if err := o.setJSON(ctx, store.AuthorizeResultKeyPrefix+transactionID, action.Result, store.TransactionTTL); err != nil {
			return nil, err
		}
	}
	return action, nil
}

// CancelSeatReservationAuthorization voids the authorization on the
// gateway, resets the cached amount to zero and deletes the cached
// authorization result outright. A canceled authorization must never be
// visible to a subsequent confirm.
func (o *Orchestrator) CancelSeatReservationAuthorization(ctx context.Context, gw GatewaySession, transactionID, actionID string) error {
	if err := gw.CancelSeatReservationAuthorization(ctx, transactionID, actionID); err != nil {
		return err
	}
	if err := o.kv.Set(ctx, store.AmountKeyPrefix+transactionID, "0", store.TransactionTTL); err != nil {
		return err
	}
	return o.kv.Delete(ctx, store.AuthorizeResultKeyPrefix+transactionID)
}

// EventReservation is one POS-compatibility triple in the confirm response.
type EventReservation struct {
	QR          string `json:"qr_str"`
	PaymentNo   string `json:"payment_no"`
	Performance string `json:"performance"`
}

// ConfirmOutput is the outcome of a successful confirm.
type ConfirmOutput struct {
	Order              model.Order
	PaymentNo          string
	EventDay           string
	ConfirmationNumber string
	EventReservations  []EventReservation
}

// Confirm reads the four cached artifacts, authorizes the cash payment,
// allocates a payment number for the event day, assembles and submits the
// confirm payload, then caches the resulting order snapshot for return
// lookups. Any absent cache entry fails fast as a state error.
func (o *Orchestrator) Confirm(ctx context.Context, gw GatewaySession, transactionID string) (*ConfirmOutput, error) {
	amountRaw, err := o.getRequired(ctx, store.AmountKeyPrefix+transactionID, "amount")
	if err != nil {
		return nil, err
	}
	amount, err := strconv.ParseInt(amountRaw, 10, 64)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindArgument, err, "cached amount is not a number")
	}

	var agent model.Agent
	if err := o.getRequiredJSON(ctx, store.AgentKeyPrefix+transactionID, "transaction agent", &agent); err != nil {
		return nil, err
	}
	var profile model.Profile
	if err := o.getRequiredJSON(ctx, store.CustomerProfileKeyPrefix+transactionID, "customer profile", &profile); err != nil {
		return nil, err
	}
	var authorizeResult model.AuthorizeSeatReservationResult
	if err := o.getRequiredJSON(ctx, store.AuthorizeResultKeyPrefix+transactionID, "seat reservation authorization result", &authorizeResult); err != nil {
		return nil, err
	}

	if err := gw.AuthorizeCashPayment(ctx, transactionID, amount); err != nil {
		return nil, err
	}

	reserveTransaction := authorizeResult.ResponseBody
	if reserveTransaction == nil {
		return nil, apperr.New(apperr.KindArgument, "reserve transaction required")
	}
	event := reserveTransaction.Object.ReservationFor
	if event == nil {
		return nil, apperr.New(apperr.KindArgument, "event required")
	}
	eventDay := assembler.EventDay(event.StartDate)

	// the payment number must exist before the confirm payload is built
	paymentNo, err := o.numbers.Publish(ctx, eventDay)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, err, "payment number publish failed")
	}

	confirmation, err := assembler.Build(assembler.Params{
		TransactionID:     transactionID,
		AuthorizeResult:   &authorizeResult,
		Agent:             &agent,
		Profile:           &profile,
		PaymentNo:         paymentNo,
		PaymentMethodName: gateway.PaymentMethodCash,
	})
	if err != nil {
		return nil, err
	}

	result, err := gw.Confirm(ctx, transactionID, confirmation.PotentialActions, confirmation.Result)
	if err != nil {
		return nil, err
	}

	// keep the order around for a day so it can be returned by
	// performance day + payment number
	orderKey := store.OrdersKeyPrefix + eventDay + paymentNo
	if err := o.setJSON(ctx, orderKey, result.Order, store.OrdersTTL); err != nil {
		return nil, err
	}

	eventReservations := make([]EventReservation, 0, len(result.Order.AcceptedOffers))
	for _, offer := range result.Order.AcceptedOffers {
		performance := ""
		if offer.ItemOffered.ReservationFor != nil {
			performance = offer.ItemOffered.ReservationFor.ID
		}
		eventReservations = append(eventReservations, EventReservation{
			QR:          offer.ItemOffered.ID,
			PaymentNo:   paymentNo,
			Performance: performance,
		})
	}

	return &ConfirmOutput{
		Order:              result.Order,
		PaymentNo:          paymentNo,
		EventDay:           eventDay,
		ConfirmationNumber: confirmation.ConfirmationNumber,
		EventReservations:  eventReservations,
	}, nil
}

func (o *Orchestrator) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return o.kv.Set(ctx, key, string(b), ttl)
}

func (o *Orchestrator) getRequired(ctx context.Context, key, what string) (string, error) {
	v, err := o.kv.Get(ctx, key)
	if err == store.ErrNotFound {
		return "", apperr.New(apperr.KindState, "%s not found for transaction", what)
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (o *Orchestrator) getRequiredJSON(ctx context.Context, key, what string, out interface{}) error {
	v, err := o.getRequired(ctx, key, what)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(v), out); err != nil {
		return apperr.Wrap(apperr.KindArgument, err, "cached %s is corrupt", what)
	}
	return nil
}
