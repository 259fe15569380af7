package model

// The types below mirror the nested "potential actions" shape the gateway
// expects on a place-order confirm call: upon successfully sending the
// order, the remote system must confirm the listed reservations.

// ConfirmReservationEntry is one reservation to flip from temporary to
// confirmed. Claimed reservations carry identity and ticket properties;
// extra (buffer) reservations carry only their id and the extra marker.
type ConfirmReservationEntry struct {
	ID                   string          `json:"id"`
	AdditionalTicketText string          `json:"additionalTicketText,omitempty"`
	UnderName            *UnderName      `json:"underName,omitempty"`
	AdditionalProperty   []PropertyValue `json:"additionalProperty,omitempty"`
}

// ConfirmReservationObject quotes the reserve transaction being confirmed
// together with the reservations to confirm inside it.
type ConfirmReservationObject struct {
	TypeOf string `json:"typeOf"`
	ID     string `json:"id"`
	Object struct {
		Reservations []ConfirmReservationEntry `json:"reservations"`
	} `json:"object"`
}

// ConfirmReservationParams wraps one reserve transaction's confirmation.
type ConfirmReservationParams struct {
	Object ConfirmReservationObject `json:"object"`
}

// PotentialActions is the order > sendOrder > confirmReservation nesting
// submitted with the gateway confirm call.
type PotentialActions struct {
	Order struct {
		PotentialActions struct {
			SendOrder struct {
				PotentialActions struct {
					ConfirmReservation []ConfirmReservationParams `json:"confirmReservation"`
				} `json:"potentialActions"`
			} `json:"sendOrder"`
		} `json:"potentialActions"`
	} `json:"order"`
}

// OrderResultParams carries the order identifiers (confirmation number and
// pass) the gateway should stamp onto the resulting order.
type OrderResultParams struct {
	Order struct {
		Identifier []PropertyValue `json:"identifier"`
	} `json:"order"`
}

// Well-known order identifier names written by the confirmation assembler.
const (
	OrderIdentifierConfirmationNumber = "confirmationNumber"
	OrderIdentifierConfirmationPass   = "confirmationPass"
)
