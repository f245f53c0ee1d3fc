package tools

import (
	"context"
	"strings"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/dealer"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/sanitize"
)

// toolActor is recorded in the audit trail for assistant-initiated writes.
const toolActor = "assistant"

// RegisterDealerTools wires the dealer services into the registry.
func RegisterDealerTools(r *Registry, svc *dealer.Services) {
	r.Register("inventory.search", Tool{
		Description: "Search lot inventory by free text over name, make, model and stock number.",
		Run: func(ctx context.Context, tenantID string, args map[string]any) (any, error) {
			query := strings.ToLower(sanitize.Input(stringArg(args, "query")))
			limit := sanitize.Int(args["limit"], 10)
			page, err := svc.Inventory.List(ctx, tenantID, func(v dealer.Vehicle) bool {
				if query == "" {
					return true
				}
				hay := strings.ToLower(strings.Join([]string{v.Name, v.Make, v.Model, v.StockNumber}, " "))
				return strings.Contains(hay, query)
			}, 0, limit)
			if err != nil {
				return nil, err
			}
			return page, nil
		},
	})

	r.Register("inventory.get", Tool{
		Description: "Fetch one inventory unit by its stock number.",
		Run: func(ctx context.Context, tenantID string, args map[string]any) (any, error) {
			stock := strings.ToLower(sanitize.Input(stringArg(args, "stockNumber")))
			page, err := svc.Inventory.List(ctx, tenantID, func(v dealer.Vehicle) bool {
				return strings.ToLower(v.StockNumber) == stock
			}, 0, 1)
			if err != nil {
				return nil, err
			}
			if len(page.Items) == 0 {
				return nil, nil
			}
			return page.Items[0], nil
		},
	})

	r.Register("leads.create", Tool{
		Description: "Record a sales lead with name and at least one of email or phone.",
		Run: func(ctx context.Context, tenantID string, args map[string]any) (any, error) {
			return svc.Leads.Create(ctx, tenantID, toolActor, dealer.Lead{
				Name:        stringArg(args, "name"),
				Email:       stringArg(args, "email"),
				Phone:       stringArg(args, "phone"),
				Message:     stringArg(args, "message"),
				StockNumber: stringArg(args, "stockNumber"),
				Source:      "assistant",
			})
		},
	})

	r.Register("tickets.create", Tool{
		Description: "Open a service ticket with a subject and optional details.",
		Run: func(ctx context.Context, tenantID string, args map[string]any) (any, error) {
			return svc.Tickets.Create(ctx, tenantID, toolActor, dealer.Ticket{
				Subject:   stringArg(args, "subject"),
				Body:      stringArg(args, "body"),
				Requester: stringArg(args, "requester"),
			})
		},
	})

	r.Register("reviews.list", Tool{
		Description: "List approved customer reviews.",
		Run: func(ctx context.Context, tenantID string, args map[string]any) (any, error) {
			limit := sanitize.Int(args["limit"], 10)
			return svc.Reviews.List(ctx, tenantID, func(r dealer.Review) bool {
				return r.Approved
			}, 0, limit)
		},
	})

	r.Register("pages.get", Tool{
		Description: "Fetch a published content page by slug.",
		Run: func(ctx context.Context, tenantID string, args map[string]any) (any, error) {
			slug := strings.ToLower(sanitize.Input(stringArg(args, "slug")))
			page, err := svc.Pages.List(ctx, tenantID, func(p dealer.Page) bool {
				return p.Published && p.Slug == slug
			}, 0, 1)
			if err != nil {
				return nil, err
			}
			if len(page.Items) == 0 {
				return nil, nil
			}
			return page.Items[0], nil
		},
	})
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
