package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pos-order-api/internal/apperr"
	"github.com/iliyamo/pos-order-api/internal/gateway"
	"github.com/iliyamo/pos-order-api/internal/model"
	"github.com/iliyamo/pos-order-api/internal/store"
)

type fakeSession struct {
	sellers []gateway.Seller

	startParams     *gateway.StartParams
	contactSet      *model.Profile
	offersForwarded []gateway.Offer
	authorizeAction *model.AuthorizeAction
	canceledAction  string
	cashAmount      int64
	confirmed       bool
	confirmResult   *gateway.ConfirmResult

	err error
}

func (f *fakeSession) SearchSellers(context.Context) ([]gateway.Seller, error) {
	return f.sellers, f.err
}

func (f *fakeSession) Start(_ context.Context, params gateway.StartParams) (*model.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.startParams = &params
	return &model.Transaction{
		ID:      "txn-1",
		Expires: params.Expires,
		Agent:   &model.Agent{ID: "agent-1", TypeOf: "Person"},
	}, nil
}

func (f *fakeSession) SetCustomerContact(_ context.Context, _ string, profile model.Profile) (*model.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.contactSet = &profile
	canonical := profile
	canonical.TelephoneRegion = "JP"
	return &canonical, nil
}

func (f *fakeSession) CreateSeatReservationAuthorization(_ context.Context, _, _ string, offers []gateway.Offer) (*model.AuthorizeAction, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.offersForwarded = offers
	return f.authorizeAction, nil
}

func (f *fakeSession) CancelSeatReservationAuthorization(_ context.Context, _, actionID string) error {
	f.canceledAction = actionID
	return f.err
}

func (f *fakeSession) AuthorizeCashPayment(_ context.Context, _ string, amount int64) error {
	f.cashAmount = amount
	return f.err
}

func (f *fakeSession) Confirm(context.Context, string, model.PotentialActions, model.OrderResultParams) (*gateway.ConfirmResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.confirmed = true
	return f.confirmResult, nil
}

type fakePassports struct {
	scope string
	err   error
}

func (f *fakePassports) PublishPassport(_ context.Context, scope string) (string, error) {
	f.scope = scope
	return "passport-token", f.err
}

type fakeNumbers struct {
	dayKey string
	err    error
}

func (f *fakeNumbers) Publish(_ context.Context, dayKey string) (string, error) {
	f.dayKey = dayKey
	return "000123", f.err
}

func newTestOrchestrator() (*Orchestrator, *store.MemoryKV, *fakePassports, *fakeNumbers) {
	kv := store.NewMemoryKV()
	passports := &fakePassports{}
	numbers := &fakeNumbers{}
	return New(kv, passports, numbers), kv, passports, numbers
}

func TestStartCachesAgent(t *testing.T) {
	orch, kv, passports, _ := newTestOrchestrator()
	gw := &fakeSession{sellers: []gateway.Seller{{TypeOf: "Corporation", ID: "seller-1"}}}
	expires := time.Now().Add(15 * time.Minute)

	txn, err := orch.Start(context.Background(), gw, expires)
	require.NoError(t, err)
	assert.Equal(t, "txn-1", txn.ID)
	assert.Equal(t, PassportScope, passports.scope)

	require.NotNil(t, gw.startParams)
	assert.Equal(t, "passport-token", gw.startParams.PassportToken)
	assert.Equal(t, "seller-1", gw.startParams.Seller.ID)

	raw, err := kv.Get(context.Background(), store.AgentKeyPrefix+"txn-1")
	require.NoError(t, err)
	var agent model.Agent
	require.NoError(t, json.Unmarshal([]byte(raw), &agent))
	assert.Equal(t, "agent-1", agent.ID)
}

func TestStartNoSeller(t *testing.T) {
	orch, _, _, _ := newTestOrchestrator()
	gw := &fakeSession{sellers: nil}

	_, err := orch.Start(context.Background(), gw, time.Now().Add(time.Minute))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
}

func TestSetCustomerContactValidatesBeforeGateway(t *testing.T) {
	orch, kv, _, _ := newTestOrchestrator()
	gw := &fakeSession{}

	_, err := orch.SetCustomerContact(context.Background(), gw, "txn-1", model.Profile{
		GivenName: "Taro", FamilyName: "Yamada", Telephone: "+819012345678",
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Nil(t, gw.contactSet, "gateway must not be called on invalid input")

	_, err = kv.Get(context.Background(), store.CustomerProfileKeyPrefix+"txn-1")
	assert.Equal(t, store.ErrNotFound, err)
}

func TestSetCustomerContactCachesCanonicalProfile(t *testing.T) {
	orch, kv, _, _ := newTestOrchestrator()
	gw := &fakeSession{}

	profile, err := orch.SetCustomerContact(context.Background(), gw, "txn-1", model.Profile{
		GivenName: "Taro", FamilyName: "Yamada",
		Telephone: "+819012345678", Email: "taro@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "JP", profile.TelephoneRegion)

	raw, err := kv.Get(context.Background(), store.CustomerProfileKeyPrefix+"txn-1")
	require.NoError(t, err)
	var cached model.Profile
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "JP", cached.TelephoneRegion, "cache holds the gateway's canonical copy")
}

func TestAuthorizeSeatReservationCachesPriceAndResult(t *testing.T) {
	orch, kv, _, _ := newTestOrchestrator()
	gw := &fakeSession{authorizeAction: &model.AuthorizeAction{
		ID:     "action-1",
		Result: &model.AuthorizeSeatReservationResult{Price: 3000},
	}}

	action, err := orch.AuthorizeSeatReservation(context.Background(), gw, "txn-1", "performance-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "action-1", action.ID)
	assert.NotNil(t, gw.offersForwarded, "absent offers forwarded as an empty list")

	amount, err := kv.Get(context.Background(), store.AmountKeyPrefix+"txn-1")
	require.NoError(t, err)
	assert.Equal(t, "3000", amount)

	_, err = kv.Get(context.Background(), store.AuthorizeResultKeyPrefix+"txn-1")
	assert.NoError(t, err)
}

func TestAuthorizeSeatReservationWithoutResultCachesNothing(t *testing.T) {
	orch, kv, _, _ := newTestOrchestrator()
	gw := &fakeSession{authorizeAction: &model.AuthorizeAction{ID: "action-1"}}

	_, err := orch.AuthorizeSeatReservation(context.Background(), gw, "txn-1", "performance-1", nil)
	require.NoError(t, err)

	_, err = kv.Get(context.Background(), store.AmountKeyPrefix+"txn-1")
	assert.Equal(t, store.ErrNotFound, err)
}

func TestCancelResetsAmountAndDropsResult(t *testing.T) {
	orch, kv, _, _ := newTestOrchestrator()
	gw := &fakeSession{authorizeAction: &model.AuthorizeAction{
		ID:     "action-1",
		Result: &model.AuthorizeSeatReservationResult{Price: 3000},
	}}

	_, err := orch.AuthorizeSeatReservation(context.Background(), gw, "txn-1", "performance-1", nil)
	require.NoError(t, err)

	require.NoError(t, orch.CancelSeatReservationAuthorization(context.Background(), gw, "txn-1", "action-1"))
	assert.Equal(t, "action-1", gw.canceledAction)

	amount, err := kv.Get(context.Background(), store.AmountKeyPrefix+"txn-1")
	require.NoError(t, err)
	assert.Equal(t, "0", amount)

	_, err = kv.Get(context.Background(), store.AuthorizeResultKeyPrefix+"txn-1")
	assert.Equal(t, store.ErrNotFound, err)
}

func seedConfirmArtifacts(t *testing.T, kv *store.MemoryKV) {
	t.Helper()
	ctx := context.Background()
	event := &model.Event{
		ID:        "performance-1",
		StartDate: time.Date(2024, 7, 1, 1, 0, 0, 0, time.UTC),
	}
	result := model.AuthorizeSeatReservationResult{
		Price: 3000,
		AcceptedOffers: []model.AcceptedOffer{
			{ItemOffered: model.Reservation{ID: "A"}},
		},
		ResponseBody: &model.ReserveTransaction{
			TypeOf: "Reserve",
			ID:     "reserve-txn-1",
			Object: model.ReserveTransactionObject{
				ReservationFor: event,
				Reservations:   []model.Reservation{{ID: "A", ReservationFor: event}},
			},
		},
	}
	set := func(key string, v interface{}) {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, kv.Set(ctx, key, string(b), store.TransactionTTL))
	}
	set(store.AgentKeyPrefix+"txn-1", model.Agent{ID: "agent-1"})
	set(store.CustomerProfileKeyPrefix+"txn-1", model.Profile{
		GivenName: "Taro", FamilyName: "Yamada",
		Telephone: "+819012345678", Email: "taro@example.com",
	})
	set(store.AuthorizeResultKeyPrefix+"txn-1", result)
	require.NoError(t, kv.Set(ctx, store.AmountKeyPrefix+"txn-1", "3000", store.TransactionTTL))
}

func TestConfirm(t *testing.T) {
	orch, kv, _, numbers := newTestOrchestrator()
	seedConfirmArtifacts(t, kv)

	event := &model.Event{ID: "performance-1"}
	gw := &fakeSession{confirmResult: &gateway.ConfirmResult{Order: model.Order{
		OrderNumber: "ORD-1",
		Price:       3000,
		AcceptedOffers: []model.AcceptedOffer{
			{ItemOffered: model.Reservation{ID: "qr-A", ReservationFor: event}},
		},
	}}}

	out, err := orch.Confirm(context.Background(), gw, "txn-1")
	require.NoError(t, err)

	assert.Equal(t, int64(3000), gw.cashAmount)
	assert.True(t, gw.confirmed)
	assert.Equal(t, "20240701", numbers.dayKey)
	assert.Equal(t, "000123", out.PaymentNo)
	assert.Equal(t, "20240701000123", out.ConfirmationNumber)
	require.Len(t, out.EventReservations, 1)
	assert.Equal(t, EventReservation{
		QR:          "qr-A",
		PaymentNo:   "000123",
		Performance: "performance-1",
	}, out.EventReservations[0])

	// the order snapshot is kept for return lookups under day+paymentNo
	raw, err := kv.Get(context.Background(), store.OrdersKeyPrefix+"20240701000123")
	require.NoError(t, err)
	var order model.Order
	require.NoError(t, json.Unmarshal([]byte(raw), &order))
	assert.Equal(t, "ORD-1", order.OrderNumber)
}

func TestConfirmMissingArtifactIsStateError(t *testing.T) {
	cases := []struct {
		name string
		drop string
	}{
		{"amount", store.AmountKeyPrefix + "txn-1"},
		{"agent", store.AgentKeyPrefix + "txn-1"},
		{"profile", store.CustomerProfileKeyPrefix + "txn-1"},
		{"authorize result", store.AuthorizeResultKeyPrefix + "txn-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orch, kv, _, _ := newTestOrchestrator()
			seedConfirmArtifacts(t, kv)
			require.NoError(t, kv.Delete(context.Background(), tc.drop))

			_, err := orch.Confirm(context.Background(), &fakeSession{}, "txn-1")
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindState))
		})
	}
}

func TestConfirmAfterCancelIsStateError(t *testing.T) {
	orch, kv, _, _ := newTestOrchestrator()
	seedConfirmArtifacts(t, kv)

	gw := &fakeSession{}
	require.NoError(t, orch.CancelSeatReservationAuthorization(context.Background(), gw, "txn-1", "action-1"))

	_, err := orch.Confirm(context.Background(), gw, "txn-1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindState))
	assert.False(t, gw.confirmed)
}

func TestConfirmNumberIssuerFailureIsUpstream(t *testing.T) {
	orch, kv, _, numbers := newTestOrchestrator()
	seedConfirmArtifacts(t, kv)
	numbers.err = errors.New("redis down")

	gw := &fakeSession{}
	_, err := orch.Confirm(context.Background(), gw, "txn-1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.False(t, gw.confirmed)
}
