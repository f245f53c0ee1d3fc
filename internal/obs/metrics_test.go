package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                           "/",
		"/metrics":                   "/metrics",
		"/v1/inventory/01ABC":        "/v1/inventory/:id",
		"/v1/leads/7?limit=10":       "/v1/leads/:id",
		"/v1/inventory":              "/v1/inventory",
		"/v1/auth/login":             "/v1/auth/login",
		"/v1/tools/inventory.search": "/v1/tools/inventory.search",
		"/v1/export/leads":           "/v1/export/leads",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
