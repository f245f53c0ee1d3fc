package dealer

import (
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/sanitize"
)

// Ticket statuses. A ticket moves forward only: open -> in_progress ->
// resolved or closed, resolved -> closed. Closed is terminal.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

var ticketTransitions = map[string][]string{
	TicketOpen:       {TicketInProgress},
	TicketInProgress: {TicketResolved, TicketClosed},
	TicketResolved:   {TicketClosed},
	TicketClosed:     {},
}

// Ticket is a support or service request.
type Ticket struct {
	collection.Meta
	Subject   string `json:"subject"`
	Body      string `json:"body,omitempty"`
	Requester string `json:"requester,omitempty"`
	Status    string `json:"status"`
}

func ticketSchema() collection.Schema[Ticket] {
	return collection.Schema[Ticket]{
		Name: "tickets",
		Meta: func(t *Ticket) *collection.Meta { return &t.Meta },
		Missing: func(t Ticket) []string {
			if t.Subject == "" {
				return []string{"subject"}
			}
			return nil
		},
		Sanitize: func(t *Ticket) {
			t.Subject = sanitize.Input(t.Subject)
			t.Body = sanitize.Input(t.Body)
			t.Requester = sanitize.Input(t.Requester)
			t.Status = sanitize.Input(t.Status)
			if t.Status == "" {
				t.Status = TicketOpen
			}
		},
		Escape: func(t Ticket) Ticket {
			t.Subject = sanitize.Output(t.Subject)
			t.Body = sanitize.Output(t.Body)
			t.Requester = sanitize.Output(t.Requester)
			return t
		},
		Validate: func(prev *Ticket, next Ticket) error {
			if _, ok := ticketTransitions[next.Status]; !ok {
				return collection.NewValidationError("unknown ticket status %q", next.Status)
			}
			if prev == nil {
				if next.Status != TicketOpen {
					return collection.NewValidationError("new tickets must start open")
				}
				return nil
			}
			if prev.Status == next.Status {
				return nil
			}
			for _, allowed := range ticketTransitions[prev.Status] {
				if next.Status == allowed {
					return nil
				}
			}
			return collection.NewValidationError("cannot move ticket from %s to %s", prev.Status, next.Status)
		},
	}
}
