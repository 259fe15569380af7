package model

// PropertyValue is a single name/value pair attached to reservations,
// identity blocks and order results throughout the gateway's wire format.
type PropertyValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// IdentifierName enumerates the closed set of identifier names this service
// writes into a confirmed reservation's identity block. Free-form name
// strings are deliberately not accepted; every identifier attached during
// confirmation must come from this set.
type IdentifierName string

const (
	IdentifierCustomerGroup IdentifierName = "customerGroup"
	IdentifierPaymentNo     IdentifierName = "paymentNo"
	IdentifierTransaction   IdentifierName = "transaction"
	IdentifierGMOOrderID    IdentifierName = "gmoOrderId"
	IdentifierAge           IdentifierName = "age"
	IdentifierUsername      IdentifierName = "username"
	IdentifierPaymentMethod IdentifierName = "paymentMethod"
)

// NewIdentifier builds a PropertyValue from a known identifier name.
func NewIdentifier(name IdentifierName, value string) PropertyValue {
	return PropertyValue{Name: string(name), Value: value}
}

// FindProperty returns the value of the named property and whether it was
// present in the list.
func FindProperty(props []PropertyValue, name string) (string, bool) {
	for _, p := range props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}
