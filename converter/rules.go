package converter

import (
	"regexp"
	"strings"
)

// Rule maps one space-delimited line shape to a Token.
type Rule struct {
	// ID names the rule in diagnostics and ordering tests.
	ID      string
	Pattern *regexp.Regexp
	Extract func(m []string, line string) Token
}

// rule builds a Rule whose capture groups become the positional arguments of
// cmd, in order.
func rule(id string, cmd Command, pattern string) Rule {
	return Rule{
		ID:      id,
		Pattern: regexp.MustCompile("(?i)" + pattern),
		Extract: func(m []string, line string) Token {
			return newToken(cmd, line, m[1:]...)
		},
	}
}

func newToken(cmd Command, line string, raw ...string) Token {
	a := make([]string, 0, len(raw))
	for _, r := range raw {
		a = append(a, strings.TrimSpace(r))
	}
	return Token{Command: cmd, Name: commandDefs[cmd].Keyword, Args: a, Line: line}
}

// Rules is scanned top to bottom and the first match wins. Narrow patterns
// must precede the broader patterns they overlap with:
//
//   - "type ... into ..." before any single-argument reading of "type"
//   - cookie assertions before every "<selector> should ..." rule
//   - "should not contain" before "should contain"
//   - "url should include" and "title should be" before the visibility,
//     existence and generic "should be" rules
//   - every "should not ..." form before the generic "should be <x>"
//   - "wait for" before "wait"
//   - "scroll to top|bottom" before "scroll to <x> <y>"
var Rules = []Rule{
	rule("it", CommandIt, `^it\s+(.+)$`),
	rule("end", CommandEnd, `^end$`),

	rule("go to", CommandGoTo, `^go to\s+(.+)$`),
	rule("reload", CommandReload, `^reload$`),
	rule("go back", CommandGoBack, `^go back$`),
	rule("go forward", CommandGoForward, `^go forward$`),

	rule("force click", CommandForceClick, `^force click\s+(.+)$`),
	rule("click", CommandClick, `^click\s+(.+)$`),
	rule("double click", CommandDoubleClick, `^double click\s+(.+)$`),
	rule("right click", CommandRightClick, `^right click\s+(.+)$`),
	rule("clear", CommandClear, `^clear\s+(.+)$`),
	rule("hover", CommandHover, `^hover\s+(.+)$`),
	rule("focus", CommandFocus, `^focus\s+(.+)$`),
	rule("blur", CommandBlur, `^blur\s+(.+)$`),
	rule("check", CommandCheck, `^check\s+(.+)$`),
	rule("uncheck", CommandUncheck, `^uncheck\s+(.+)$`),

	rule("type into", CommandType, `^type\s+(.+?)\s+into\s+(.+)$`),
	rule("select", CommandSelect, `^select\s+(.+?)\s+(.+)$`),

	{
		ID:      "cookie should",
		Pattern: regexp.MustCompile(`(?i)^cookie\s+(.+?)\s+should\s+(exist|not exist|have value)\s*(.+)?$`),
		Extract: cookieToken,
	},

	rule("should not contain", CommandShouldNotContain, `^(.+?)\s+should\s+not\s+contain\s+(.+)$`),
	rule("should contain", CommandShouldContain, `^(.+?)\s+should\s+contain\s+(.+)$`),

	rule("url should include", CommandURLShouldInclude, `^url\s+should\s+include\s+(.+)$`),
	rule("title should be", CommandTitleShouldBe, `^title\s+should\s+be\s+(.+)$`),

	rule("should not be visible", CommandShouldNotBeVisible, `^(.+?)\s+should\s+not\s+be\s+visible$`),
	rule("should not be checked", CommandShouldNotBeChecked, `^(.+?)\s+should\s+not\s+be\s+checked$`),
	rule("should not exist", CommandShouldNotExist, `^(.+?)\s+should\s+not\s+exist$`),
	rule("should exist", CommandShouldExist, `^(.+?)\s+should\s+exist$`),
	rule("should have value", CommandShouldHaveValue, `^(.+?)\s+should\s+have\s+value\s+(.+)$`),
	rule("should have text", CommandShouldHaveText, `^(.+?)\s+should\s+have\s+text\s+(.+)$`),
	rule("should include text", CommandShouldIncludeText, `^(.+?)\s+should\s+include\s+text\s+(.+)$`),
	{
		ID:      "should be X",
		Pattern: regexp.MustCompile(`(?i)^(.+?)\s+should\s+be\s+(.+)$`),
		Extract: shouldBeToken,
	},

	rule("wait for", CommandWaitFor, `^wait for\s+(.+)$`),
	rule("wait", CommandWait, `^wait\s+(.+)$`),
	rule("pause", CommandPause, `^pause$`),

	rule("scroll to top", CommandScrollToTop, `^scroll to top$`),
	rule("scroll to bottom", CommandScrollToBottom, `^scroll to bottom$`),
	rule("scroll to x y", CommandScrollTo, `^scroll to\s+(\S+)\s+(\S+)$`),
	rule("set viewport w h", CommandSetViewport, `^set viewport\s+(\S+)\s+(\S+)$`),
}

// cookieToken picks the cookie command from the assertion words. A value is
// only kept for "have value".
func cookieToken(m []string, line string) Token {
	name, value := m[1], strings.TrimSpace(m[3])
	switch normalizeKeyword(m[2]) {
	case "not exist":
		return newToken(CommandCookieShouldNotExist, line, name)
	case "have value":
		if value != "" {
			return newToken(CommandCookieShouldHaveValue, line, name, value)
		}
		return newToken(CommandCookieShouldHaveValue, line, name)
	default:
		return newToken(CommandCookieShouldExist, line, name)
	}
}

// shouldBeToken derives the command from the captured adjective. Adjectives
// outside the vocabulary yield CommandUnknown so the emitter comments the line.
func shouldBeToken(m []string, line string) Token {
	name := "should be " + strings.TrimSpace(m[2])
	if cmd, ok := LookupCommand(name); ok {
		return newToken(cmd, line, m[1])
	}
	tok := newToken(CommandUnknown, line, m[1])
	tok.Name = name
	return tok
}
