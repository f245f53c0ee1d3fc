package dealer

import (
	"strings"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/sanitize"
)

// Page is a content page served under its slug.
type Page struct {
	collection.Meta
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Body      string `json:"body,omitempty"`
	Published bool   `json:"published"`
}

func pageSchema() collection.Schema[Page] {
	return collection.Schema[Page]{
		Name: "pages",
		Meta: func(p *Page) *collection.Meta { return &p.Meta },
		Missing: func(p Page) []string {
			var missing []string
			if p.Title == "" {
				missing = append(missing, "title")
			}
			if p.Slug == "" {
				missing = append(missing, "slug")
			}
			return missing
		},
		Sanitize: func(p *Page) {
			p.Title = sanitize.Input(p.Title)
			p.Slug = strings.ToLower(sanitize.Input(p.Slug))
			p.Body = sanitize.Input(p.Body)
		},
		Escape: func(p Page) Page {
			p.Title = sanitize.Output(p.Title)
			p.Body = sanitize.Output(p.Body)
			return p
		},
		UniqueKey: func(p Page) (string, string) {
			return "slug", p.Slug
		},
	}
}
