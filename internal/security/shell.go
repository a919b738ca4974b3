package security

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// pipelineSegment is one command in a parsed pipeline: just the
// executable name, which is all the policy checks need.
type pipelineSegment struct {
	Executable string
}

// commandBinary extracts the first executable name from a command
// string using the shell parser, so quoting and assignments are handled
// the way a real shell would. Falls back to whitespace splitting when
// the command does not parse.
func commandBinary(command string) string {
	segs := parsePipeline(command)
	if len(segs) > 0 && segs[0].Executable != "" {
		return segs[0].Executable
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parsePipeline parses a command into its pipeline segments. Returns
// nil when the input is not valid shell.
func parsePipeline(command string) []pipelineSegment {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return nil
	}

	var segs []pipelineSegment
	for _, stmt := range file.Stmts {
		collectSegments(&segs, stmt)
	}
	return segs
}

func collectSegments(segs *[]pipelineSegment, stmt *syntax.Stmt) {
	if stmt == nil || stmt.Cmd == nil {
		return
	}
	switch cmd := stmt.Cmd.(type) {
	case *syntax.CallExpr:
		if len(cmd.Args) == 0 {
			return
		}
		*segs = append(*segs, pipelineSegment{Executable: wordLiteral(cmd.Args[0])})
	case *syntax.BinaryCmd:
		collectSegments(segs, cmd.X)
		collectSegments(segs, cmd.Y)
	case *syntax.Subshell:
		for _, s := range cmd.Stmts {
			collectSegments(segs, s)
		}
	case *syntax.Block:
		for _, s := range cmd.Stmts {
			collectSegments(segs, s)
		}
	}
}

// wordLiteral flattens a shell word into its literal text, ignoring
// expansions it cannot resolve statically.
func wordLiteral(w *syntax.Word) string {
	var sb strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				if lit, ok := inner.(*syntax.Lit); ok {
					sb.WriteString(lit.Value)
				}
			}
		}
	}
	return sb.String()
}
