package dealer

import (
	"strings"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/sanitize"
)

// Campaign is a marketing campaign addressed by slug.
type Campaign struct {
	collection.Meta
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Channel string `json:"channel,omitempty"`
	Active  bool   `json:"active"`
}

func campaignSchema() collection.Schema[Campaign] {
	return collection.Schema[Campaign]{
		Name: "campaigns",
		Meta: func(c *Campaign) *collection.Meta { return &c.Meta },
		Missing: func(c Campaign) []string {
			var missing []string
			if c.Name == "" {
				missing = append(missing, "name")
			}
			if c.Slug == "" {
				missing = append(missing, "slug")
			}
			return missing
		},
		Sanitize: func(c *Campaign) {
			c.Name = sanitize.Input(c.Name)
			c.Slug = strings.ToLower(sanitize.Input(c.Slug))
			c.Channel = sanitize.Input(c.Channel)
		},
		Escape: func(c Campaign) Campaign {
			c.Name = sanitize.Output(c.Name)
			return c
		},
		UniqueKey: func(c Campaign) (string, string) {
			return "slug", c.Slug
		},
	}
}
