package dealer

import (
	"strings"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/sanitize"
)

// Vehicle is one unit on the lot. StockNumber is the dealership's own
// handle for the unit and is unique per tenant.
type Vehicle struct {
	collection.Meta
	Name        string  `json:"name"`
	StockNumber string  `json:"stockNumber"`
	Make        string  `json:"make,omitempty"`
	Model       string  `json:"model,omitempty"`
	Year        int     `json:"year,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Status      string  `json:"status,omitempty"`
	Description string  `json:"description,omitempty"`
}

func vehicleSchema() collection.Schema[Vehicle] {
	return collection.Schema[Vehicle]{
		Name: "inventory",
		Meta: func(v *Vehicle) *collection.Meta { return &v.Meta },
		Missing: func(v Vehicle) []string {
			var missing []string
			if v.Name == "" {
				missing = append(missing, "name")
			}
			if v.StockNumber == "" {
				missing = append(missing, "stockNumber")
			}
			return missing
		},
		Sanitize: func(v *Vehicle) {
			v.Name = sanitize.Input(v.Name)
			v.StockNumber = sanitize.Input(v.StockNumber)
			v.Make = sanitize.Input(v.Make)
			v.Model = sanitize.Input(v.Model)
			v.Status = sanitize.Input(v.Status)
			v.Description = sanitize.Input(v.Description)
		},
		Escape: func(v Vehicle) Vehicle {
			v.Name = sanitize.Output(v.Name)
			v.Make = sanitize.Output(v.Make)
			v.Model = sanitize.Output(v.Model)
			v.Description = sanitize.Output(v.Description)
			return v
		},
		UniqueKey: func(v Vehicle) (string, string) {
			return "stockNumber", strings.ToLower(v.StockNumber)
		},
		Validate: func(prev *Vehicle, next Vehicle) error {
			if next.Year != 0 && (next.Year < 1950 || next.Year > 2100) {
				return collection.NewValidationError("year %d out of range", next.Year)
			}
			if next.Price < 0 {
				return collection.NewValidationError("price must not be negative")
			}
			return nil
		},
	}
}
