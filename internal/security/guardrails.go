package security

import (
	"fmt"
	"regexp"
)

// RiskLevel grades how dangerous a command looks. Levels are totally
// ordered: Low < Medium < High < Critical.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return fmt.Sprintf("risk(%d)", int(r))
	}
}

// Rule is one pattern-based guardrail. Immutable after construction.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Risk        RiskLevel
	Description string
}

// Analysis is the outcome of analyzing one command. Safe holds iff the
// highest matched risk is at most Medium.
type Analysis struct {
	Safe        bool
	Risk        RiskLevel
	Issues      []string
	Suggestions []string
}

// Guardrails scores command risk against a fixed rule set. Analysis is
// pure and total: rule order never affects the result, only the order
// of the collected issue lines.
type Guardrails struct {
	rules []Rule
}

// NewGuardrails creates a guardrail analyzer seeded with the default
// rules.
func NewGuardrails() *Guardrails {
	return &Guardrails{rules: defaultRules()}
}

// AddRule appends an operator-defined rule.
func (g *Guardrails) AddRule(rule Rule) {
	g.rules = append(g.rules, rule)
}

// Rules returns the rule set (for inspection).
func (g *Guardrails) Rules() []Rule {
	return g.rules
}

// Analyze evaluates every rule against the command and collects all
// matches. The structural pass runs afterwards and catches pipe-to-shell
// patterns that the regex rules can miss under unusual quoting.
func (g *Guardrails) Analyze(command string) Analysis {
	maxRisk := RiskLow
	var issues, suggestions []string

	for _, rule := range g.rules {
		if !rule.Pattern.MatchString(command) {
			continue
		}
		issues = append(issues, fmt.Sprintf("%s: %s", rule.Name, rule.Description))
		if rule.Risk > maxRisk {
			maxRisk = rule.Risk
		}
		suggestions = append(suggestions, ruleSuggestions(rule.Name)...)
	}

	if issue, risk := g.structuralPass(command); issue != "" {
		issues = append(issues, issue)
		if risk > maxRisk {
			maxRisk = risk
		}
		suggestions = append(suggestions, "Download scripts to a file and inspect them before running")
	}

	if findings := scanObfuscation(command); len(findings) > 0 {
		for _, f := range findings {
			issues = append(issues, fmt.Sprintf("unicode_obfuscation: %s", f))
		}
		if RiskHigh > maxRisk {
			maxRisk = RiskHigh
		}
		suggestions = append(suggestions, "Retype the command with plain ASCII characters")
	}

	return Analysis{
		Safe:        maxRisk <= RiskMedium,
		Risk:        maxRisk,
		Issues:      issues,
		Suggestions: suggestions,
	}
}

// structuralPass parses the command as shell and flags a downloader
// piped into a shell interpreter, regardless of flags or quoting.
func (g *Guardrails) structuralPass(command string) (string, RiskLevel) {
	segs := parsePipeline(command)
	if len(segs) < 2 {
		return "", RiskLow
	}
	downloaders := map[string]bool{"curl": true, "wget": true, "fetch": true}
	shells := map[string]bool{"sh": true, "bash": true, "zsh": true, "dash": true}
	for i := 0; i < len(segs)-1; i++ {
		if downloaders[segs[i].Executable] && shells[segs[i+1].Executable] {
			return "pipe_to_shell: remote content piped directly into a shell", RiskCritical
		}
	}
	return "", RiskLow
}

// ruleSuggestions maps rule names to remediation hints. Rules without
// an entry produce no suggestion.
func ruleSuggestions(name string) []string {
	switch name {
	case "dangerous_rm":
		return []string{
			"Use specific paths instead of wildcards",
			"Consider using 'trash' or 'safe-rm' instead",
		}
	case "sudo_usage":
		return []string{"Explain why elevated privileges are needed"}
	case "disk_operations":
		return []string{"Use file-level operations instead"}
	default:
		return nil
	}
}

func defaultRules() []Rule {
	return []Rule{
		{
			Name:        "dangerous_rm",
			Pattern:     regexp.MustCompile(`rm\s+(-rf?|--recursive|--force).*(/|\*|\$HOME)`),
			Risk:        RiskCritical,
			Description: "Dangerous recursive file deletion detected",
		},
		{
			Name:        "sudo_usage",
			Pattern:     regexp.MustCompile(`\bsudo\b`),
			Risk:        RiskHigh,
			Description: "Elevated privileges requested",
		},
		{
			Name:        "disk_operations",
			Pattern:     regexp.MustCompile(`\b(dd|mkfs|fdisk)\b`),
			Risk:        RiskCritical,
			Description: "Low-level disk operations detected",
		},
		{
			Name:        "network_exposure",
			Pattern:     regexp.MustCompile(`\b(nc|netcat|ncat)\b.*-l`),
			Risk:        RiskMedium,
			Description: "Network port listening detected",
		},
		{
			Name:        "system_modification",
			Pattern:     regexp.MustCompile(`\b(chmod\s+777|chown\s+root)`),
			Risk:        RiskHigh,
			Description: "Dangerous permission changes detected",
		},
		{
			Name:        "data_exfiltration",
			Pattern:     regexp.MustCompile(`\b(curl|wget|scp|rsync)\b.*\|.*\b(nc|netcat|bash)\b`),
			Risk:        RiskCritical,
			Description: "Potential data exfiltration pattern detected",
		},
		{
			Name:        "shell_injection",
			Pattern:     regexp.MustCompile("[;&|`$]\\s*\\("),
			Risk:        RiskHigh,
			Description: "Potential shell injection detected",
		},
		{
			Name:        "password_exposure",
			Pattern:     regexp.MustCompile(`(password|passwd|secret|api[_-]?key)\s*=\s*['"]?\w+`),
			Risk:        RiskHigh,
			Description: "Hardcoded credentials detected",
		},
	}
}
