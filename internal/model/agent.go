package model

// ProgramMembership carries the membership number of a registered customer.
// POS terminals operate with client-credential users, so this is usually nil.
type ProgramMembership struct {
	MembershipNumber string `json:"membershipNumber,omitempty"`
}

// Agent is the transaction's acting party (the POS terminal or user
// identity) as returned by the gateway's start call. It is cached per
// transaction id and never mutated afterwards.
//
// Fields:
//
//	ID         – identity of the acting party, assigned by the gateway.
//	TypeOf     – schema type, normally "Person".
//	Identifier – pre-existing identifiers carried over into confirmed
//	             reservations verbatim.
//	MemberOf   – membership information when the customer is registered.
type Agent struct {
	ID         string             `json:"id"`
	TypeOf     string             `json:"typeOf,omitempty"`
	Identifier []PropertyValue    `json:"identifier,omitempty"`
	MemberOf   *ProgramMembership `json:"memberOf,omitempty"`
}
