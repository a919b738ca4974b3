package security

import (
	"strings"
	"testing"
)

func TestScanObfuscation(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		category string
	}{
		{"zero width space", "rm \u200B-rf /", "invisible character"},
		{"bidi override", "echo \u202Egnp.exe", "bidirectional override"},
		{"tag character", "ls \U000E0041", "tag character"},
		{"control char", "cat \x07file", "control character"},
		{"cyrillic lookalike", "сat /etc/passwd", "latin-lookalike letter"},
		{"greek lookalike", "Εcho hello", "latin-lookalike letter"},
	}

	for _, tt := range tests {
		findings := scanObfuscation(tt.command)
		if len(findings) == 0 {
			t.Errorf("%s: expected a finding", tt.name)
			continue
		}
		if findings[0].category != tt.category {
			t.Errorf("%s: expected category %q, got %q", tt.name, tt.category, findings[0].category)
		}
	}
}

func TestScanObfuscation_CleanCommands(t *testing.T) {
	for _, command := range []string{
		"ls -la",
		"git commit -m \"fix: handle empty input\"",
		"printf 'a\\tb\\n'",
		"echo ünïcöde is fine when it is not confusable",
	} {
		if findings := scanObfuscation(command); len(findings) != 0 {
			t.Errorf("command %q: unexpected findings %v", command, findings)
		}
	}
}

func TestAnalyze_ObfuscatedCommand(t *testing.T) {
	g := NewGuardrails()

	// The zero width space splits "rm" so the deletion regex cannot
	// fire; the obfuscation pass still flags the command.
	result := g.Analyze("r\u200Bm -rf /")
	if result.Safe {
		t.Error("expected obfuscated command to be unsafe")
	}
	if result.Risk < RiskHigh {
		t.Errorf("expected at least high risk, got %s", result.Risk)
	}
	found := false
	for _, issue := range result.Issues {
		if strings.HasPrefix(issue, "unicode_obfuscation:") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a unicode_obfuscation issue, got %v", result.Issues)
	}
}
