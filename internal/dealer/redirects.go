package dealer

import (
	"strings"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/sanitize"
)

// Redirect maps a retired site path to its replacement.
type Redirect struct {
	collection.Meta
	SourcePath string `json:"sourcePath"`
	TargetPath string `json:"targetPath"`
	Permanent  bool   `json:"permanent"`
}

func redirectSchema() collection.Schema[Redirect] {
	return collection.Schema[Redirect]{
		Name: "redirects",
		Meta: func(r *Redirect) *collection.Meta { return &r.Meta },
		Missing: func(r Redirect) []string {
			var missing []string
			if r.SourcePath == "" {
				missing = append(missing, "sourcePath")
			}
			if r.TargetPath == "" {
				missing = append(missing, "targetPath")
			}
			return missing
		},
		Sanitize: func(r *Redirect) {
			r.SourcePath = normalizePath(sanitize.Input(r.SourcePath))
			r.TargetPath = normalizePath(sanitize.Input(r.TargetPath))
		},
		Escape: func(r Redirect) Redirect { return r },
		UniqueKey: func(r Redirect) (string, string) {
			return "sourcePath", strings.ToLower(r.SourcePath)
		},
		Validate: func(prev *Redirect, next Redirect) error {
			if strings.EqualFold(next.SourcePath, next.TargetPath) {
				return collection.NewValidationError("redirect must not point at itself")
			}
			return nil
		},
	}
}

func normalizePath(p string) string {
	if p == "" {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
