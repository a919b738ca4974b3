package security

import "testing"

func TestCheck_FilePaths(t *testing.T) {
	m := NewPermissionManager(nil)

	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"read in downloads", FileRead{Path: "/home/alice/downloads/report.pdf"}, true},
		{"read in rag", FileRead{Path: "/rag/corpus/doc.txt"}, true},
		{"read outside scope", FileRead{Path: "/etc/passwd"}, false},
		{"write in downloads", FileWrite{Path: "/home/bob/downloads/out.csv"}, true},
		{"write in rag", FileWrite{Path: "/rag/corpus/doc.txt"}, false},
		{"execute anywhere", FileExecute{Path: "/home/alice/downloads/run.sh"}, false},
	}

	for _, tt := range tests {
		if got := m.Check("agent-1", tt.req, ""); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCheck_Commands(t *testing.T) {
	m := NewPermissionManager(nil)

	tests := []struct {
		command string
		want    bool
	}{
		{"git status", true},
		{"ls -la", true},
		{"curl https://example.com", false},
		// Blacklist vetoes even whitelisted binaries.
		{"git push && rm -rf /", false},
		{"sudo ls", false},
		{"mkfs.ext4 /dev/sdb1", false},
	}

	for _, tt := range tests {
		if got := m.Check("agent-1", Command{Command: tt.command}, ""); got != tt.want {
			t.Errorf("command %q: got %v, want %v", tt.command, got, tt.want)
		}
	}
}

func TestCheck_NetworkApproval(t *testing.T) {
	m := NewPermissionManager(nil)

	// The default scope demands approval for every URL.
	if m.Check("agent-1", NetworkAccess{URL: "https://api.example.com"}, "") {
		t.Error("expected denial without an explanation")
	}
	if !m.Check("agent-1", NetworkAccess{URL: "https://api.example.com"}, "fetching model weights") {
		t.Error("expected grant with an explanation")
	}

	closed := DefaultScope()
	closed.Network.Inbound = false
	closed.Network.Outbound = false
	m.SetGlobalScope(closed)
	if m.Check("agent-1", NetworkAccess{URL: "https://api.example.com"}, "still closed") {
		t.Error("expected denial when both directions are closed")
	}
}

func TestCheck_ResourceLimits(t *testing.T) {
	m := NewPermissionManager(nil)

	tests := []struct {
		resource string
		amount   float64
		want     bool
	}{
		{"cpu", 50, true},
		{"cpu", 95, false},
		{"memory", 8, true},
		{"memory", 16, false},
		{"disk", 10, true},
		{"gpu", 1, false},
	}

	for _, tt := range tests {
		req := ResourceIncrease{Resource: tt.resource, Amount: tt.amount}
		if got := m.Check("agent-1", req, ""); got != tt.want {
			t.Errorf("%s=%v: got %v, want %v", tt.resource, tt.amount, got, tt.want)
		}
	}
}

func TestCheck_ActorOverrideReplacesGlobal(t *testing.T) {
	m := NewPermissionManager(nil)

	override := DefaultScope()
	override.FileSystem.ReadPaths = []string{"/workspace/**"}
	m.SetActorScope("agent-2", override)

	if !m.Check("agent-2", FileRead{Path: "/workspace/src/main.go"}, "") {
		t.Error("override should grant its own paths")
	}
	// The override replaces the global scope entirely, so the default
	// read paths no longer apply to this actor.
	if m.Check("agent-2", FileRead{Path: "/rag/corpus/doc.txt"}, "") {
		t.Error("override should not inherit global paths")
	}
	// Other actors keep the global scope.
	if !m.Check("agent-3", FileRead{Path: "/rag/corpus/doc.txt"}, "") {
		t.Error("global scope should still apply to other actors")
	}

	m.RemoveActorScope("agent-2")
	if !m.Check("agent-2", FileRead{Path: "/rag/corpus/doc.txt"}, "") {
		t.Error("removing the override should restore the global scope")
	}
}

func TestFailedCount(t *testing.T) {
	m := NewPermissionManager(nil)

	m.Check("agent-1", FileRead{Path: "/etc/shadow"}, "")
	m.Check("agent-1", FileRead{Path: "/etc/shadow"}, "")
	m.Check("agent-1", FileRead{Path: "/rag/ok.txt"}, "")

	if got := m.FailedCount("agent-1"); got != 2 {
		t.Errorf("expected 2 failures, got %d", got)
	}
	if got := m.FailedCount("agent-2"); got != 0 {
		t.Errorf("expected 0 failures for untouched actor, got %d", got)
	}

	m.ResetFailedCount("agent-1")
	if got := m.FailedCount("agent-1"); got != 0 {
		t.Errorf("expected reset counter, got %d", got)
	}
}
