package security

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestAuditRecordOrder(t *testing.T) {
	log := NewAuditLog()

	log.Record("agent-1", "first", nil, true, "")
	log.Record("agent-2", "second", nil, false, "denied")
	log.Record("agent-1", "third", nil, true, "")

	entries := log.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"first", "second", "third"} {
		if entries[i].Action != want {
			t.Errorf("entry %d: expected action %q, got %q", i, want, entries[i].Action)
		}
	}
	if entries[0].ID == entries[1].ID {
		t.Error("entries should have distinct ids")
	}
}

func TestAuditQueries(t *testing.T) {
	log := NewAuditLog()

	log.Record("agent-1", "read", nil, true, "")
	log.Record("agent-1", "write", nil, false, "out of scope")
	log.Record("agent-2", "exec", nil, false, "out of scope")

	if got := len(log.ByActor("agent-1")); got != 2 {
		t.Errorf("expected 2 entries for agent-1, got %d", got)
	}
	denied := log.Denied()
	if len(denied) != 2 {
		t.Fatalf("expected 2 denied entries, got %d", len(denied))
	}
	if denied[0].Action != "write" || denied[1].Action != "exec" {
		t.Error("denied entries should preserve insertion order")
	}
	if log.Count() != 3 {
		t.Errorf("expected count 3, got %d", log.Count())
	}

	log.Clear()
	if log.Count() != 0 {
		t.Error("expected empty log after clear")
	}
}

func TestAuditRedaction(t *testing.T) {
	log := NewAuditLog()

	entry := log.Record("agent-1", "export API_KEY=sk-abc123def456ghi789", map[string]any{
		"command": "export API_KEY=sk-abc123def456ghi789",
		"count":   3,
	}, false, "blocked")

	if strings.Contains(entry.Action, "sk-abc123def456ghi789") {
		t.Error("action should have the credential redacted")
	}
	if cmd, _ := entry.Details["command"].(string); strings.Contains(cmd, "sk-abc123def456ghi789") {
		t.Error("string details should have the credential redacted")
	}
	if entry.Details["count"] != 3 {
		t.Error("non-string details should pass through untouched")
	}
}

func TestAuditSinkWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	log := NewAuditLog()
	log.SetSink(&buf)

	log.Record("agent-1", "read", nil, true, "")
	log.Record("agent-1", "write", nil, false, "denied")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", len(lines))
	}
	var entry AuditEntry
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("sink line should be valid JSON: %v", err)
	}
	if entry.Action != "write" || entry.Approved {
		t.Errorf("unexpected sink entry: %+v", entry)
	}
}
