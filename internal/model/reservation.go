package model

// UnderName is the identity block attached to a confirmed reservation.
// Temporary reservations carry no UnderName; the confirmation assembler
// attaches one to every reservation claimed by an accepted offer. Extra
// (buffer) reservations must never carry one.
type UnderName struct {
	TypeOf     string          `json:"typeOf"`
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name"`
	GivenName  string          `json:"givenName,omitempty"`
	FamilyName string          `json:"familyName,omitempty"`
	Telephone  string          `json:"telephone,omitempty"`
	Email      string          `json:"email,omitempty"`
	Identifier []PropertyValue `json:"identifier,omitempty"`
}

// Reservation is a single seat reservation on the remote system. During
// authorization it is temporary (identified only by id and offer linkage);
// the confirmation assembler transforms it into a confirmed reservation
// carrying UnderName, AdditionalProperty and AdditionalTicketText.
type Reservation struct {
	ID                   string          `json:"id"`
	AdditionalTicketText string          `json:"additionalTicketText,omitempty"`
	AdditionalProperty   []PropertyValue `json:"additionalProperty,omitempty"`
	UnderName            *UnderName      `json:"underName,omitempty"`
	ReservationFor       *Event          `json:"reservationFor,omitempty"`
}
