package dealer

import (
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/sanitize"
)

// Customer is a CRM record.
type Customer struct {
	collection.Meta
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func customerSchema() collection.Schema[Customer] {
	return collection.Schema[Customer]{
		Name: "customers",
		Meta: func(c *Customer) *collection.Meta { return &c.Meta },
		Missing: func(c Customer) []string {
			if c.Name == "" {
				return []string{"name"}
			}
			return nil
		},
		Sanitize: func(c *Customer) {
			c.Name = sanitize.Input(c.Name)
			c.Email = sanitize.Input(c.Email)
			c.Phone = sanitize.Input(c.Phone)
			c.Notes = sanitize.Input(c.Notes)
		},
		Escape: func(c Customer) Customer {
			c.Name = sanitize.Output(c.Name)
			c.Notes = sanitize.Output(c.Notes)
			return c
		},
		Validate: func(prev *Customer, next Customer) error {
			if next.Email != "" && !sanitize.LooksLikeEmail(next.Email) {
				return collection.NewValidationError("email %q is not valid", next.Email)
			}
			return nil
		},
	}
}
