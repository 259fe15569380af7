package assembler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pos-order-api/internal/apperr"
	"github.com/iliyamo/pos-order-api/internal/model"
)

func testParams() Params {
	event := &model.Event{
		ID: "performance-1",
		// 2024-07-01 23:30 UTC is already July 2nd in Tokyo
		StartDate: time.Date(2024, 7, 1, 23, 30, 0, 0, time.UTC),
	}
	return Params{
		TransactionID: "txn-1",
		AuthorizeResult: &model.AuthorizeSeatReservationResult{
			Price: 3000,
			AcceptedOffers: []model.AcceptedOffer{
				{ItemOffered: model.Reservation{
					ID:                   "A",
					AdditionalTicketText: "aisle",
					AdditionalProperty:   []model.PropertyValue{{Name: "seatColor", Value: "red"}},
				}},
				{ItemOffered: model.Reservation{ID: "B"}},
			},
			ResponseBody: &model.ReserveTransaction{
				TypeOf: "Reserve",
				ID:     "reserve-txn-1",
				Object: model.ReserveTransactionObject{
					ReservationFor: event,
					Reservations: []model.Reservation{
						{ID: "A", ReservationFor: event},
						{ID: "B", ReservationFor: event},
						{ID: "C", ReservationFor: event}, // buffer seat
					},
				},
			},
		},
		Agent: &model.Agent{
			ID:         "agent-1",
			Identifier: []model.PropertyValue{{Name: "clientId", Value: "pos-terminal-7"}},
		},
		Profile: &model.Profile{
			GivenName:  "Taro",
			FamilyName: "Yamada",
			Telephone:  "+819012345678",
			Email:      "taro@example.com",
		},
		PaymentNo:         "000123",
		PaymentMethodName: "Cash",
	}
}

func reservationEntries(t *testing.T, c *Confirmation) []model.ConfirmReservationEntry {
	t.Helper()
	params := c.PotentialActions.Order.PotentialActions.SendOrder.PotentialActions.ConfirmReservation
	require.Len(t, params, 1)
	return params[0].Object.Object.Reservations
}

func TestBuildPartitionsClaimedAndExtra(t *testing.T) {
	c, err := Build(testParams())
	require.NoError(t, err)

	entries := reservationEntries(t, c)
	require.Len(t, entries, 3)

	byID := map[string]model.ConfirmReservationEntry{}
	for _, e := range entries {
		_, dup := byID[e.ID]
		require.False(t, dup, "reservation id %s confirmed twice", e.ID)
		byID[e.ID] = e
	}
	// union of claimed and extra equals the remote reservation list
	require.Contains(t, byID, "A")
	require.Contains(t, byID, "B")
	require.Contains(t, byID, "C")

	// claimed reservations carry identity
	require.NotNil(t, byID["A"].UnderName)
	require.NotNil(t, byID["B"].UnderName)
	assert.Equal(t, "Taro Yamada", byID["A"].UnderName.Name)

	// the buffer seat carries only the extra marker, never identity
	assert.Nil(t, byID["C"].UnderName)
	assert.Equal(t, []model.PropertyValue{{Name: "extra", Value: "1"}}, byID["C"].AdditionalProperty)

	// paymentSeatIndex follows accepted-offer order, zero-based
	idxA, ok := model.FindProperty(byID["A"].AdditionalProperty, "paymentSeatIndex")
	require.True(t, ok)
	assert.Equal(t, "0", idxA)
	idxB, ok := model.FindProperty(byID["B"].AdditionalProperty, "paymentSeatIndex")
	require.True(t, ok)
	assert.Equal(t, "1", idxB)

	// the offer's own properties and ticket text survive
	color, ok := model.FindProperty(byID["A"].AdditionalProperty, "seatColor")
	require.True(t, ok)
	assert.Equal(t, "red", color)
	assert.Equal(t, "aisle", byID["A"].AdditionalTicketText)
}

func TestBuildIdentifierBlock(t *testing.T) {
	p := testParams()
	p.Profile.Age = "34"
	p.Agent.MemberOf = &model.ProgramMembership{MembershipNumber: "member-9"}

	c, err := Build(p)
	require.NoError(t, err)

	entries := reservationEntries(t, c)
	var claimed *model.UnderName
	for _, e := range entries {
		if e.ID == "A" {
			claimed = e.UnderName
		}
	}
	require.NotNil(t, claimed)

	expect := map[string]string{
		"customerGroup": "Customer",
		"paymentNo":     "000123",
		"transaction":   "txn-1",
		"gmoOrderId":    "",
		"age":           "34",
		"clientId":      "pos-terminal-7",
		"username":      "member-9",
		"paymentMethod": "Cash",
	}
	for name, want := range expect {
		got, ok := model.FindProperty(claimed.Identifier, name)
		require.True(t, ok, "identifier %s missing", name)
		assert.Equal(t, want, got, "identifier %s", name)
	}
	assert.Equal(t, "agent-1", claimed.ID)
	assert.Equal(t, "Person", claimed.TypeOf)
}

func TestBuildConfirmationNumberUsesTokyoDay(t *testing.T) {
	c, err := Build(testParams())
	require.NoError(t, err)

	// 23:30 UTC on July 1st is July 2nd in Tokyo
	assert.Equal(t, "20240702000123", c.ConfirmationNumber)

	ids := c.Result.Order.Identifier
	number, ok := model.FindProperty(ids, model.OrderIdentifierConfirmationNumber)
	require.True(t, ok)
	assert.Equal(t, c.ConfirmationNumber, number)
	pass, ok := model.FindProperty(ids, model.OrderIdentifierConfirmationPass)
	require.True(t, ok)
	assert.Equal(t, "5678", pass)
}

func TestBuildUnmatchedOfferFails(t *testing.T) {
	p := testParams()
	p.AuthorizeResult.AcceptedOffers = append(p.AuthorizeResult.AcceptedOffers,
		model.AcceptedOffer{ItemOffered: model.Reservation{ID: "ghost"}})

	_, err := Build(p)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindArgument))
	assert.Contains(t, err.Error(), "ghost")
}

func TestBuildMissingPiecesFail(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"no authorize result", func(p *Params) { p.AuthorizeResult = nil }},
		{"no agent", func(p *Params) { p.Agent = nil }},
		{"no profile", func(p *Params) { p.Profile = nil }},
		{"no reserve transaction", func(p *Params) { p.AuthorizeResult.ResponseBody = nil }},
		{"no event", func(p *Params) { p.AuthorizeResult.ResponseBody.Object.ReservationFor = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testParams()
			tc.mutate(&p)
			_, err := Build(p)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindArgument))
		})
	}
}

func TestConfirmationPass(t *testing.T) {
	assert.Equal(t, "5678", ConfirmationPass("+819012345678"))
	assert.Equal(t, "1234", ConfirmationPass("1234"))
	assert.Equal(t, "123", ConfirmationPass("123"))
	assert.Equal(t, "9999", ConfirmationPass(""))
}

func TestEventDay(t *testing.T) {
	// midnight UTC is 09:00 Tokyo the same day
	assert.Equal(t, "20240701", EventDay(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
	// 15:00 UTC crosses into the next Tokyo day
	assert.Equal(t, "20240702", EventDay(time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC)))
}
