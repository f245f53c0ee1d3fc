package audit

import (
	"testing"
)

func TestMaskListedFields(t *testing.T) {
	in := map[string]any{
		"name":  "Coach A",
		"email": "listed field",
		"nested": map[string]any{
			"password": "hunter2",
			"note":     "plain",
		},
	}
	out := Mask(in, []string{"email", "password"}).(map[string]any)
	if out["email"] != MaskToken {
		t.Fatalf("listed field not masked: %v", out["email"])
	}
	nested := out["nested"].(map[string]any)
	if nested["password"] != MaskToken {
		t.Fatalf("nested listed field not masked: %v", nested["password"])
	}
	if nested["note"] != "plain" || out["name"] != "Coach A" {
		t.Fatal("unlisted fields altered")
	}
	// input untouched
	if in["email"] == MaskToken {
		t.Fatal("input map mutated")
	}
}

func TestMaskPatternValues(t *testing.T) {
	in := map[string]any{
		"contact": "secret@example.com",
		"idNo":    "123-45-6789",
		"list":    []any{"another@example.com", "keep me"},
	}
	out := Mask(in, nil).(map[string]any)
	if out["contact"] != MaskToken || out["idNo"] != MaskToken {
		t.Fatalf("pattern values not masked: %+v", out)
	}
	list := out["list"].([]any)
	if list[0] != MaskToken || list[1] != "keep me" {
		t.Fatalf("slice masking mismatch: %v", list)
	}
}

func TestMaskPrimitivesPassThrough(t *testing.T) {
	out := Mask(map[string]any{"count": float64(3), "active": true}, nil).(map[string]any)
	if out["count"] != float64(3) || out["active"] != true {
		t.Fatalf("primitives altered: %+v", out)
	}
}

func TestMaskRecordStruct(t *testing.T) {
	type lead struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	out := MaskRecord(lead{Name: "A", Email: "a@b.co"}, []string{"email"})
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", out)
	}
	if m["email"] != MaskToken || m["name"] != "A" {
		t.Fatalf("unexpected masked record: %+v", m)
	}
}

func TestMaskRecordUnrepresentable(t *testing.T) {
	if out := MaskRecord(func() {}, nil); out != nil {
		t.Fatalf("expected nil for unrepresentable value, got %v", out)
	}
}
