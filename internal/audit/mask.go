// Package audit masks sensitive values and appends one JSON record per
// mutation to an append-only log. Logging here is best effort: a masking or
// write failure must never abort the business operation that triggered it.
package audit

import (
	"encoding/json"
	"strings"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/sanitize"
)

// MaskToken replaces every sensitive value before it is logged or exported.
const MaskToken = "***"

// Mask deep-clones maps and slices, replacing values of listed field names
// and any string that looks like an email or SSN with MaskToken. Other
// strings pass through the input sanitizer; primitives are returned as-is.
func Mask(v any, maskFields []string) any {
	set := make(map[string]bool, len(maskFields))
	for _, f := range maskFields {
		set[strings.ToLower(f)] = true
	}
	return maskValue(v, set)
}

func maskValue(v any, fields map[string]bool) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if fields[strings.ToLower(k)] {
				out[k] = MaskToken
				continue
			}
			out[k] = maskValue(val, fields)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = maskValue(val, fields)
		}
		return out
	case string:
		if sanitize.LooksLikeEmail(t) || sanitize.LooksLikeSSN(t) {
			return MaskToken
		}
		return sanitize.Input(t)
	default:
		return v
	}
}

// MaskRecord converts an arbitrary value to its JSON shape and masks it.
// Returns nil when the value cannot be represented; never panics.
func MaskRecord(v any, maskFields []string) any {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil
	}
	return Mask(plain, maskFields)
}
