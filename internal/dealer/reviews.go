package dealer

import (
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/sanitize"
)

// Review is a customer review shown on the dealership site once approved.
type Review struct {
	collection.Meta
	Author   string `json:"author"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
	Approved bool   `json:"approved"`
}

func reviewSchema() collection.Schema[Review] {
	return collection.Schema[Review]{
		Name: "reviews",
		Meta: func(r *Review) *collection.Meta { return &r.Meta },
		Missing: func(r Review) []string {
			if r.Author == "" {
				return []string{"author"}
			}
			return nil
		},
		Sanitize: func(r *Review) {
			r.Author = sanitize.Input(r.Author)
			r.Comment = sanitize.Input(r.Comment)
		},
		Escape: func(r Review) Review {
			r.Author = sanitize.Output(r.Author)
			r.Comment = sanitize.Output(r.Comment)
			return r
		},
		Validate: func(prev *Review, next Review) error {
			if next.Rating < 1 || next.Rating > 5 {
				return collection.NewValidationError("rating must be between 1 and 5")
			}
			return nil
		},
	}
}
