package model

// Profile holds the customer contact fields for a transaction, normalized
// from the POS-specific request field names (last_name, first_name, tel).
// It is cached per transaction id with the transaction TTL.
type Profile struct {
	ID              string `json:"id,omitempty"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	Telephone       string `json:"telephone"`
	TelephoneRegion string `json:"telephoneRegion,omitempty"`
	Email           string `json:"email"`
	Age             string `json:"age,omitempty"`
}
