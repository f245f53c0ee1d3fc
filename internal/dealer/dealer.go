// Package dealer defines the domain resources of the dealership backend.
// Each resource is a typed instance of the shared tenant-scoped collection
// pattern; the only per-resource code is its field list and policy.
package dealer

import (
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/retention"
)

// Services aggregates every domain collection behind one constructor so the
// HTTP layer and the tools registry share the same instances.
type Services struct {
	Inventory *collection.Collection[Vehicle]
	Leads     *collection.Collection[Lead]
	Customers *collection.Collection[Customer]
	Reviews   *collection.Collection[Review]
	Campaigns *collection.Collection[Campaign]
	Pages     *collection.Collection[Page]
	Redirects *collection.Collection[Redirect]
	Tickets   *collection.Collection[Ticket]
}

func NewServices(deps collection.Deps) *Services {
	return &Services{
		Inventory: collection.New(vehicleSchema(), deps),
		Leads:     collection.New(leadSchema(), deps),
		Customers: collection.New(customerSchema(), deps),
		Reviews:   collection.New(reviewSchema(), deps),
		Campaigns: collection.New(campaignSchema(), deps),
		Pages:     collection.New(pageSchema(), deps),
		Redirects: collection.New(redirectSchema(), deps),
		Tickets:   collection.New(ticketSchema(), deps),
	}
}

// RetentionTargets lists every collection the retention sweep can prune.
func (s *Services) RetentionTargets() []retention.Target {
	return []retention.Target{
		s.Inventory, s.Leads, s.Customers, s.Reviews,
		s.Campaigns, s.Pages, s.Redirects, s.Tickets,
	}
}
