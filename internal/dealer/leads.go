package dealer

import (
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/sanitize"
)

// Lead is an inbound sales inquiry. StockNumber is an advisory reference
// to inventory; nothing enforces that the unit still exists.
type Lead struct {
	collection.Meta
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Source      string `json:"source,omitempty"`
	Message     string `json:"message,omitempty"`
	StockNumber string `json:"stockNumber,omitempty"`
	Status      string `json:"status,omitempty"`
}

func leadSchema() collection.Schema[Lead] {
	return collection.Schema[Lead]{
		Name: "leads",
		Meta: func(l *Lead) *collection.Meta { return &l.Meta },
		Missing: func(l Lead) []string {
			if l.Name == "" {
				return []string{"name"}
			}
			return nil
		},
		Sanitize: func(l *Lead) {
			l.Name = sanitize.Input(l.Name)
			l.Email = sanitize.Input(l.Email)
			l.Phone = sanitize.Input(l.Phone)
			l.Source = sanitize.Input(l.Source)
			l.Message = sanitize.Input(l.Message)
			l.StockNumber = sanitize.Input(l.StockNumber)
			l.Status = sanitize.Input(l.Status)
			if l.Status == "" {
				l.Status = "new"
			}
		},
		Escape: func(l Lead) Lead {
			l.Name = sanitize.Output(l.Name)
			l.Source = sanitize.Output(l.Source)
			l.Message = sanitize.Output(l.Message)
			return l
		},
		Validate: func(prev *Lead, next Lead) error {
			if next.Email == "" && next.Phone == "" {
				return collection.NewValidationError("either email or phone is required")
			}
			if next.Email != "" && !sanitize.LooksLikeEmail(next.Email) {
				return collection.NewValidationError("email %q is not valid", next.Email)
			}
			return nil
		},
	}
}
