package converter

import (
	"regexp"
	"strings"
)

// callPattern matches the fallback form: name(arg, arg, ...). Arguments are
// split on bare commas. Quoted commas and nested parentheses are not
// supported.
var callPattern = regexp.MustCompile(`^([^(]+)\(([^)]*)\)$`)

// TokenizeLine parses one DSL line. It returns nil for blank lines, comments
// and lines that match neither a rule nor the call syntax.
func TokenizeLine(raw string) *Token {
	line := strings.TrimSpace(raw)
	if line == "" || IsComment(line) {
		return nil
	}

	for _, r := range Rules {
		if m := r.Pattern.FindStringSubmatch(line); m != nil {
			tok := r.Extract(m, line)
			return &tok
		}
	}

	return tokenizeCall(line)
}

// SplitCall splits a call-syntax line into its trimmed name and the raw text
// between the parentheses.
func SplitCall(line string) (name, body string, ok bool) {
	m := callPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}

// tokenizeCall handles name(arg, ...). Known names resolve to their command;
// anything else becomes CommandUnknown.
func tokenizeCall(line string) *Token {
	name, body, ok := SplitCall(line)
	if !ok {
		return nil
	}
	var a []string
	if body = strings.TrimSpace(body); body != "" {
		for _, part := range strings.Split(body, ",") {
			a = append(a, strings.TrimSpace(part))
		}
	}

	cmd, ok := LookupCommand(name)
	if !ok {
		return &Token{Command: CommandUnknown, Name: name, Args: a, Line: line}
	}
	return &Token{Command: cmd, Name: commandDefs[cmd].Keyword, Args: a, Line: line}
}

// IsComment reports whether a trimmed line is a comment. "#" only starts a
// comment when followed by whitespace or nothing, so "#id should exist"
// stays a selector line.
func IsComment(line string) bool {
	if strings.HasPrefix(line, "//") {
		return true
	}
	if line == "#" {
		return true
	}
	return strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "#\t")
}

// isSilent reports whether an untokenized line is dropped without a warning.
// Any line opening with a comment marker qualifies, including "#selector"
// lines that matched nothing.
func isSilent(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#")
}
