package model

// Order is the finalized order snapshot returned by the gateway's confirm
// call. It is cached under the <eventDay><paymentNo> namespace for 24 hours
// so return-order lookups can locate it later.
type Order struct {
	OrderNumber    string          `json:"orderNumber,omitempty"`
	OrderDate      string          `json:"orderDate,omitempty"`
	AcceptedOffers []AcceptedOffer `json:"acceptedOffers,omitempty"`
	Identifier     []PropertyValue `json:"identifier,omitempty"`
	Price          int64           `json:"price,omitempty"`
}
