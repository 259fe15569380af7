// Package assembler builds the gateway confirm payload from the artifacts
// cached during a place-order transaction. It is a pure transformation:
// given the seat-reservation authorization result, the transaction agent,
// the customer profile and an allocated payment number, it produces the
// confirmed-reservation set, the potential-actions plan and the order
// identifiers (confirmation number and pass). Any failure here is a
// data-integrity fault and must abort the whole confirm.
package assembler

import (
	"strconv"
	"time"

	"github.com/iliyamo/pos-order-api/internal/apperr"
	"github.com/iliyamo/pos-order-api/internal/model"
)

// Asia/Tokyo has no daylight saving, so a fixed offset is exact.
var jst = time.FixedZone("JST", 9*60*60)

// EventDay renders an instant as the event's Asia/Tokyo calendar day
// (YYYYMMDD). It is the day component of confirmation numbers and order
// cache keys.
func EventDay(t time.Time) string {
	return t.In(jst).Format("20060102")
}

// ConfirmationPass derives the low-entropy secondary check value from the
// customer's telephone number: its last four characters, or "9999" when no
// telephone is present. This is a user-memorable check, not a credential.
func ConfirmationPass(telephone string) string {
	if telephone == "" {
		return "9999"
	}
	if len(telephone) < 4 {
		return telephone
	}
	return telephone[len(telephone)-4:]
}

// Params carries everything the assembler needs. All pointer fields are
// required; a nil value indicates the caller failed to read its cache
// entry and is rejected as an argument fault.
type Params struct {
	TransactionID     string
	AuthorizeResult   *model.AuthorizeSeatReservationResult
	Agent             *model.Agent
	Profile           *model.Profile
	PaymentNo         string
	PaymentMethodName string
	// GMOOrderID is the payment gateway order reference; empty for cash.
	GMOOrderID string
}

// Confirmation is the assembled confirm payload plus the derived order
// identifiers.
type Confirmation struct {
	PotentialActions   model.PotentialActions
	Result             model.OrderResultParams
	ConfirmationNumber string
	ConfirmationPass   string
}

// Build assembles the confirm payload. The union of claimed and extra
// reservations in the output always equals the reserve transaction's full
// reservation list; an accepted offer with no backing reservation aborts
// the build.
func Build(p Params) (*Confirmation, error) {
	if p.AuthorizeResult == nil {
		return nil, apperr.New(apperr.KindArgument, "seat reservation authorization result required")
	}
	if p.Agent == nil {
		return nil, apperr.New(apperr.KindArgument, "transaction agent required")
	}
	if p.Profile == nil {
		return nil, apperr.New(apperr.KindArgument, "customer profile required")
	}

	reserveTransaction := p.AuthorizeResult.ResponseBody
	if reserveTransaction == nil {
		return nil, apperr.New(apperr.KindArgument, "reserve transaction required")
	}
	event := reserveTransaction.Object.ReservationFor
	if event == nil {
		return nil, apperr.New(apperr.KindArgument, "event required")
	}

	acceptedOffers := p.AuthorizeResult.AcceptedOffers
	remoteReservations := reserveTransaction.Object.Reservations

	// transform each accepted offer's temporary reservation into a
	// confirmed one, matched by id against the remote reservation list
	confirmed := make([]model.Reservation, 0, len(acceptedOffers))
	for index, offer := range acceptedOffers {
		reservation := offer.ItemOffered
		remote, ok := findReservation(remoteReservations, reservation.ID)
		if !ok {
			return nil, apperr.New(apperr.KindArgument, "unexpected temporary reservation: %s", reservation.ID)
		}
		confirmed = append(confirmed, confirmTemporary(temporaryParams{
			reservation:       reservation,
			remote:            remote,
			transactionID:     p.TransactionID,
			agent:             p.Agent,
			profile:           p.Profile,
			paymentNo:         p.PaymentNo,
			gmoOrderID:        p.GMOOrderID,
			paymentSeatIndex:  strconv.Itoa(index),
			paymentMethodName: p.PaymentMethodName,
		}))
	}

	entries := make([]model.ConfirmReservationEntry, 0, len(remoteReservations))
	for _, r := range confirmed {
		entries = append(entries, model.ConfirmReservationEntry{
			ID:                   r.ID,
			AdditionalTicketText: r.AdditionalTicketText,
			UnderName:            r.UnderName,
			AdditionalProperty:   r.AdditionalProperty,
		})
	}
	// reservations held by the remote system but claimed by no accepted
	// offer are buffer seats; confirm them with only the extra marker
	for _, r := range remoteReservations {
		if containsReservation(confirmed, r.ID) {
			continue
		}
		entries = append(entries, model.ConfirmReservationEntry{
			ID:                 r.ID,
			AdditionalProperty: []model.PropertyValue{{Name: "extra", Value: "1"}},
		})
	}

	var confirmObject model.ConfirmReservationObject
	confirmObject.TypeOf = reserveTransaction.TypeOf
	confirmObject.ID = reserveTransaction.ID
	confirmObject.Object.Reservations = entries

	var potentialActions model.PotentialActions
	potentialActions.Order.PotentialActions.SendOrder.PotentialActions.ConfirmReservation =
		[]model.ConfirmReservationParams{{Object: confirmObject}}

	confirmationNumber := EventDay(event.StartDate) + p.PaymentNo
	confirmationPass := ConfirmationPass(p.Profile.Telephone)

	var result model.OrderResultParams
	result.Order.Identifier = []model.PropertyValue{
		{Name: model.OrderIdentifierConfirmationNumber, Value: confirmationNumber},
		{Name: model.OrderIdentifierConfirmationPass, Value: confirmationPass},
	}

	return &Confirmation{
		PotentialActions:   potentialActions,
		Result:             result,
		ConfirmationNumber: confirmationNumber,
		ConfirmationPass:   confirmationPass,
	}, nil
}

type temporaryParams struct {
	reservation       model.Reservation
	remote            model.Reservation
	transactionID     string
	agent             *model.Agent
	profile           *model.Profile
	paymentNo         string
	gmoOrderID        string
	paymentSeatIndex  string
	paymentMethodName string
}

// confirmTemporary produces the confirmed form of one claimed reservation:
// the remote record plus an underName identity block, the offer's own
// properties and the paymentSeatIndex marker.
func confirmTemporary(p temporaryParams) model.Reservation {
	identifier := []model.PropertyValue{
		model.NewIdentifier(model.IdentifierCustomerGroup, "Customer"),
		model.NewIdentifier(model.IdentifierPaymentNo, p.paymentNo),
		model.NewIdentifier(model.IdentifierTransaction, p.transactionID),
		model.NewIdentifier(model.IdentifierGMOOrderID, p.gmoOrderID),
	}
	if p.profile.Age != "" {
		identifier = append(identifier, model.NewIdentifier(model.IdentifierAge, p.profile.Age))
	}
	identifier = append(identifier, p.agent.Identifier...)
	if p.agent.MemberOf != nil && p.agent.MemberOf.MembershipNumber != "" {
		identifier = append(identifier, model.NewIdentifier(model.IdentifierUsername, p.agent.MemberOf.MembershipNumber))
	}
	if p.paymentMethodName != "" {
		identifier = append(identifier, model.NewIdentifier(model.IdentifierPaymentMethod, p.paymentMethodName))
	}

	underName := model.UnderName{
		TypeOf:     "Person",
		ID:         p.agent.ID,
		Name:       p.profile.GivenName + " " + p.profile.FamilyName,
		GivenName:  p.profile.GivenName,
		FamilyName: p.profile.FamilyName,
		Telephone:  p.profile.Telephone,
		Email:      p.profile.Email,
		Identifier: identifier,
	}

	out := p.remote
	out.UnderName = &underName
	out.AdditionalProperty = append(
		append([]model.PropertyValue{}, p.reservation.AdditionalProperty...),
		model.PropertyValue{Name: "paymentSeatIndex", Value: p.paymentSeatIndex},
	)
	out.AdditionalTicketText = p.reservation.AdditionalTicketText
	return out
}

func findReservation(reservations []model.Reservation, id string) (model.Reservation, bool) {
	for _, r := range reservations {
		if r.ID == id {
			return r, true
		}
	}
	return model.Reservation{}, false
}

func containsReservation(reservations []model.Reservation, id string) bool {
	for _, r := range reservations {
		if r.ID == id {
			return true
		}
	}
	return false
}
