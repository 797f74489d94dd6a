package domain

// Customer is a shop customer managed through the admin backend.
type Customer struct {
	Auditable
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
	Notes    string `json:"notes,omitempty"`

	// Phones is populated on detail reads; the exactly-one-main invariant
	// over this collection is maintained by the primary coordinator.
	Phones []*PhoneNumber `json:"phones,omitempty"`
}

// PhoneNumber is one entry in a customer's phone book. For every customer
// with at least one phone, exactly one has IsMain=true; the last remaining
// phone can never be removed.
type PhoneNumber struct {
	Auditable
	CustomerID string `json:"customer_id"`
	Value      string `json:"value"`
	Label      string `json:"label,omitempty"` // "home", "work", "zalo"
	IsMain     bool   `json:"is_main"`
}

// MainPhone returns the customer's main phone, or nil if none is loaded.
func (c *Customer) MainPhone() *PhoneNumber {
	for _, p := range c.Phones {
		if p.IsMain {
			return p
		}
	}
	return nil
}
