package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestStdLogger_TextFormat_SortedKeysAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatText, App: "test-app", Out: &buf})

	l.Debug("hidden", nil)
	l.Info("region_saved", map[string]any{"region": "home_intro", "page": "index"})

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry should be filtered, got %q", out)
	}
	if !strings.Contains(out, "app=test-app level=info msg=region_saved page=index region=home_intro") {
		t.Fatalf("unexpected text line: %q", out)
	}
}

func TestStdLogger_With_JSONAndErrors(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatJSON, Out: &buf}).With(map[string]any{"component": "relay"})

	l.Warn("delivery_failed", map[string]any{"error": errors.New("boom")})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid json line: %v (%q)", err, buf.String())
	}
	if entry["component"] != "relay" || entry["error"] != "boom" || entry["app"] != "bcasco-site" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if ParseLevel("WARNING") != Warn || ParseLevel("nope") != Info {
		t.Fatalf("unexpected ParseLevel results")
	}
	if ParseFormat("JSON") != FormatJSON || ParseFormat("") != FormatText {
		t.Fatalf("unexpected ParseFormat results")
	}
}
