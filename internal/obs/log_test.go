package obs

import (
	"testing"
	"time"
)

func TestStampSetsSharedFields(t *testing.T) {
	entry := stamp("error", "retention_target_failed", map[string]any{"target": "leads"})

	if entry["level"] != "error" {
		t.Fatalf("level = %v", entry["level"])
	}
	if entry["service"] != serviceName {
		t.Fatalf("service = %v", entry["service"])
	}
	if entry["event"] != "retention_target_failed" {
		t.Fatalf("event = %v", entry["event"])
	}
	if entry["target"] != "leads" {
		t.Fatalf("target = %v", entry["target"])
	}
	ts, _ := entry["ts"].(string)
	if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
		t.Fatalf("ts %q: %v", ts, err)
	}
}

func TestStampCallerFieldsWin(t *testing.T) {
	entry := stamp("info", "tool_dispatch", map[string]any{"level": "debug"})
	if entry["level"] != "debug" {
		t.Fatalf("caller field overridden: %v", entry["level"])
	}
}
