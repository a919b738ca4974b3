package security

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// obfuscationFinding is one suspicious codepoint found in a command.
type obfuscationFinding struct {
	category  string
	codepoint rune
	position  int
}

func (f obfuscationFinding) String() string {
	return fmt.Sprintf("%s: U+%04X at byte %d", f.category, f.codepoint, f.position)
}

// scanObfuscation looks for Unicode trickery that makes a command read
// differently than it executes: invisible characters, bidi overrides,
// tag characters, raw control bytes and Latin-lookalike letters from
// other scripts. Regex rules match on what they see; this pass catches
// what they cannot see.
func scanObfuscation(command string) []obfuscationFinding {
	var findings []obfuscationFinding

	i := 0
	for i < len(command) {
		r, size := utf8.DecodeRuneInString(command[i:])
		if r == utf8.RuneError && size == 1 {
			findings = append(findings, obfuscationFinding{
				category: "invalid utf-8", codepoint: rune(command[i]), position: i,
			})
			i++
			continue
		}
		if cat := classifyObfuscation(r); cat != "" {
			findings = append(findings, obfuscationFinding{
				category: cat, codepoint: r, position: i,
			})
		}
		i += size
	}
	return findings
}

func classifyObfuscation(r rune) string {
	switch {
	case isInvisible(r):
		return "invisible character"
	case isBidiControl(r):
		return "bidirectional override"
	case r >= 0xE0001 && r <= 0xE007F:
		return "tag character"
	case isUnsafeControl(r):
		return "control character"
	case confusableLatin(r):
		return "latin-lookalike letter"
	}
	return ""
}

func isInvisible(r rune) bool {
	switch r {
	case '\u200B', // zero width space
		'\u200C', // zero width non-joiner
		'\u200D', // zero width joiner
		'\u200E', // left-to-right mark
		'\u200F', // right-to-left mark
		'\u2060', // word joiner
		'\uFEFF', // zero width no-break space
		'\u180E': // mongolian vowel separator
		return true
	}
	return false
}

func isBidiControl(r rune) bool {
	return (r >= '\u202A' && r <= '\u202E') || (r >= '\u2066' && r <= '\u2069')
}

func isUnsafeControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return r <= 0x1F || r == 0x7F || (r >= 0x80 && r <= 0x9F)
}

// confusableLatin reports whether r is a Cyrillic or Greek letter that
// renders like a Latin one. Anything from those scripts inside a shell
// command is near-certainly a lookalike substitution, so membership in
// the confusable set is the only check needed.
func confusableLatin(r rune) bool {
	if unicode.Is(unicode.Cyrillic, r) {
		_, ok := cyrillicConfusables[r]
		return ok
	}
	if unicode.Is(unicode.Greek, r) {
		_, ok := greekConfusables[r]
		return ok
	}
	return false
}

var cyrillicConfusables = map[rune]rune{
	'а': 'a', 'А': 'A', 'В': 'B', 'с': 'c', 'С': 'C',
	'е': 'e', 'Е': 'E', 'Н': 'H', 'і': 'i', 'І': 'I',
	'К': 'K', 'М': 'M', 'о': 'o', 'О': 'O', 'р': 'p',
	'Р': 'P', 'Т': 'T', 'х': 'x', 'Х': 'X', 'у': 'y', 'У': 'Y',
}

var greekConfusables = map[rune]rune{
	'Α': 'A', 'Β': 'B', 'Ε': 'E', 'Η': 'H', 'Ι': 'I',
	'Κ': 'K', 'Μ': 'M', 'Ν': 'N', 'Ο': 'O', 'ο': 'o',
	'Ρ': 'P', 'Τ': 'T', 'Υ': 'Y', 'Χ': 'X', 'Ζ': 'Z',
}
