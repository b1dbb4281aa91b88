package domain

import "strings"

// BillingAddress is the structured address submitted as residency evidence
// for registrations and town-change requests.
type BillingAddress struct {
	Street string `json:"street"`
	Unit   string `json:"unit,omitempty"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// IsZero reports whether no field is set.
func (a BillingAddress) IsZero() bool {
	return a.Street == "" && a.Unit == "" && a.City == "" && a.State == "" && a.Zip == ""
}

// String renders a single-line postal form.
func (a BillingAddress) String() string {
	parts := make([]string, 0, 4)
	street := a.Street
	if a.Unit != "" {
		street += " " + a.Unit
	}
	for _, p := range []string{street, a.City, a.State, a.Zip} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
