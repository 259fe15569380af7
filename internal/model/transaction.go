package model

import "time"

// Event is the performance a reservation is held for. StartDate drives the
// event-day component of the confirmation number.
type Event struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"startDate"`
}

// Transaction is a place-order transaction as started on the remote
// gateway. The id is opaque and assigned by the gateway; all transaction
// lifecycle state lives in which cache keys are populated for it.
type Transaction struct {
	ID      string    `json:"id"`
	Expires time.Time `json:"expires"`
	Agent   *Agent    `json:"agent,omitempty"`
}
