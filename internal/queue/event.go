// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderConfirmedEvent is published when a POS order is successfully
// confirmed. It carries enough for downstream consumers to log or trigger
// analytics without calling back into the API.
type OrderConfirmedEvent struct {
	TransactionID      string   `json:"transaction_id"`
	ConfirmationNumber string   `json:"confirmation_number"`
	PaymentNo          string   `json:"payment_no"`
	PerformanceDay     string   `json:"performance_day"`
	ReservationIDs     []string `json:"reservation_ids"`
	Amount             int64    `json:"amount"`
	ConfirmedAt        string   `json:"confirmed_at"`
}
