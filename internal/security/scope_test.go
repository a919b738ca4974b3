package security

import "testing"

func TestMatchPath(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/home/*/downloads/*", "/home/alice/downloads/report.pdf", true},
		{"/home/*/downloads/*", "/etc/passwd", false},
		{"/home/*/downloads/*", "/home/alice/downloads/a/b.pdf", false},
		{"/home/*/downloads/**", "/home/alice/downloads/a/b.pdf", true},
		{"/rag/**", "/rag/corpus/doc.txt", true},
		{"/rag/**", "/rag", true},
		{"/rag/**", "/ragout/doc.txt", false},
		{"/etc/hosts", "/etc/hosts", true},
		{"/etc/hosts", "/etc/hostname", false},
	}

	for _, tt := range tests {
		if got := MatchPath(tt.pattern, tt.path); got != tt.want {
			t.Errorf("MatchPath(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestScopeValidate(t *testing.T) {
	scope := DefaultScope()
	if err := scope.Validate(); err != nil {
		t.Fatalf("default scope should validate: %v", err)
	}

	scope.Resources.MaxCPUPercent = 250
	if err := scope.Validate(); err == nil {
		t.Error("expected validation error for cpu > 100")
	}
}
