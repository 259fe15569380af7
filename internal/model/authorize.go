package model

// AcceptedOffer pairs a requested offer with the temporary reservation the
// remote system produced for it.
type AcceptedOffer struct {
	ItemOffered Reservation `json:"itemOffered"`
}

// ReserveTransactionObject is the payload of a reserve transaction: the
// event being reserved for and the full temporary reservation list. The
// list includes buffer (extra) seats not claimed by any accepted offer.
type ReserveTransactionObject struct {
	ReservationFor *Event        `json:"reservationFor,omitempty"`
	Reservations   []Reservation `json:"reservations,omitempty"`
}

// ReserveTransaction is the remote system's own reserve transaction, echoed
// back in the authorization result. Its id and type must be quoted verbatim
// when instructing the remote system to confirm reservations.
type ReserveTransaction struct {
	TypeOf string                   `json:"typeOf"`
	ID     string                   `json:"id"`
	Object ReserveTransactionObject `json:"object"`
}

// AuthorizeSeatReservationResult is the outcome of tentatively reserving
// seats for a transaction. It is cached per transaction id and replaced
// wholesale on every authorize call.
type AuthorizeSeatReservationResult struct {
	Price          int64               `json:"price"`
	AcceptedOffers []AcceptedOffer     `json:"acceptedOffers,omitempty"`
	ResponseBody   *ReserveTransaction `json:"responseBody,omitempty"`
}

// AuthorizeAction is the authorize action returned by the gateway. Result
// is nil when the gateway accepted the action but produced no result yet.
type AuthorizeAction struct {
	ID     string                          `json:"id"`
	Result *AuthorizeSeatReservationResult `json:"result,omitempty"`
}
