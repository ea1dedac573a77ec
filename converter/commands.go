package converter

import (
	"fmt"
	"strings"
)

// Command identifies one entry of the DSL vocabulary.
type Command int

const (
	// CommandUnknown marks a call-syntax line whose name is not in the
	// vocabulary. The emitter turns it into a comment.
	CommandUnknown Command = iota
	CommandIt
	CommandEnd
	CommandGoTo
	CommandReload
	CommandGoBack
	CommandGoForward
	CommandType
	CommandClear
	CommandClick
	CommandDoubleClick
	CommandRightClick
	CommandHover
	CommandFocus
	CommandBlur
	CommandSelect
	CommandCheck
	CommandUncheck
	CommandShouldBeVisible
	CommandShouldNotBeVisible
	CommandShouldExist
	CommandShouldNotExist
	CommandShouldBeEnabled
	CommandShouldBeDisabled
	CommandShouldBeChecked
	CommandShouldNotBeChecked
	CommandShouldContain
	CommandShouldNotContain
	CommandShouldHaveValue
	CommandShouldHaveText
	CommandShouldIncludeText
	CommandURLShouldInclude
	CommandTitleShouldBe
	CommandWait
	CommandPause
	CommandScrollToTop
	CommandScrollToBottom
	CommandScrollTo
	CommandSetViewport
	CommandTrigger
	CommandAttachFile
	CommandAliasAs
	CommandUseAlias
	CommandIntercept
	CommandWaitFor
	CommandCookieShouldExist
	CommandCookieShouldNotExist
	CommandCookieShouldHaveValue
	CommandForceClick

	numCommands
)

// CommandDef describes a command exposed by the DSL.
type CommandDef struct {
	// Keyword is the canonical DSL name (e.g. "double click").
	Keyword string
	// Usage shows the space-delimited form with its positional arguments.
	Usage string
	// Doc is a one-line description for the keyword reference.
	Doc string
	// emit renders already-wrapped arguments into Cypress code.
	emit func(a args) string
}

// args holds wrapped positional arguments. Missing positions render as
// undefined, which is what the generated JavaScript would receive.
type args []string

func (a args) at(i int) string {
	if i < len(a) {
		return a[i]
	}
	return "undefined"
}

// get renders cy.get(<selector>) followed by the chained call.
func get(sel, chain string) string {
	return fmt.Sprintf("cy.get(%s).%s;", sel, chain)
}

// should renders a selector assertion with an optional expected value.
func should(chai string, valueIndex int) func(a args) string {
	return func(a args) string {
		if valueIndex < 0 {
			return get(a.at(0), fmt.Sprintf("should('%s')", chai))
		}
		return get(a.at(0), fmt.Sprintf("should('%s', %s)", chai, a.at(valueIndex)))
	}
}

// unquote drops every quote character, used where the value is spliced into
// an existing string literal ('@alias').
func unquote(s string) string {
	return strings.NewReplacer(`'`, "", `"`, "").Replace(s)
}

// Arity is the number of positional arguments the command takes, counted
// from the placeholders in Usage.
func (d CommandDef) Arity() int { return strings.Count(d.Usage, "<") }

var commandDefs = [numCommands]CommandDef{
	CommandUnknown: {},
	CommandIt: {
		Keyword: "it", Usage: "it <description>",
		Doc:  "Open a named test block.",
		emit: func(a args) string { return fmt.Sprintf("it(%s, () => {", a.at(0)) },
	},
	CommandEnd: {
		Keyword: "end", Usage: "end",
		Doc:  "Close the current test block.",
		emit: func(a args) string { return "});" },
	},
	CommandGoTo: {
		Keyword: "go to", Usage: "go to <url>",
		Doc:  "Visit a URL.",
		emit: func(a args) string { return fmt.Sprintf("cy.visit(%s);", a.at(0)) },
	},
	CommandReload: {
		Keyword: "reload", Usage: "reload",
		Doc:  "Reload the current page.",
		emit: func(a args) string { return "cy.reload();" },
	},
	CommandGoBack: {
		Keyword: "go back", Usage: "go back",
		Doc:  "Navigate back in history.",
		emit: func(a args) string { return "cy.go('back');" },
	},
	CommandGoForward: {
		Keyword: "go forward", Usage: "go forward",
		Doc:  "Navigate forward in history.",
		emit: func(a args) string { return "cy.go('forward');" },
	},
	CommandType: {
		Keyword: "type", Usage: "type <value> into <selector>",
		Doc:  "Type text into a field.",
		emit: func(a args) string { return get(a.at(1), fmt.Sprintf("type(%s)", a.at(0))) },
	},
	CommandClear: {
		Keyword: "clear", Usage: "clear <selector>",
		Doc:  "Clear an input.",
		emit: func(a args) string { return get(a.at(0), "clear()") },
	},
	CommandClick: {
		Keyword: "click", Usage: "click <selector>",
		Doc:  "Click an element.",
		emit: func(a args) string { return get(a.at(0), "click()") },
	},
	CommandDoubleClick: {
		Keyword: "double click", Usage: "double click <selector>",
		Doc:  "Double-click an element.",
		emit: func(a args) string { return get(a.at(0), "dblclick()") },
	},
	CommandRightClick: {
		Keyword: "right click", Usage: "right click <selector>",
		Doc:  "Right-click an element.",
		emit: func(a args) string { return get(a.at(0), "rightclick()") },
	},
	CommandHover: {
		Keyword: "hover", Usage: "hover <selector>",
		Doc:  "Move the mouse over an element.",
		emit: func(a args) string { return get(a.at(0), "trigger('mouseover')") },
	},
	CommandFocus: {
		Keyword: "focus", Usage: "focus <selector>",
		Doc:  "Focus an element.",
		emit: func(a args) string { return get(a.at(0), "focus()") },
	},
	CommandBlur: {
		Keyword: "blur", Usage: "blur <selector>",
		Doc:  "Blur an element.",
		emit: func(a args) string { return get(a.at(0), "blur()") },
	},
	CommandSelect: {
		Keyword: "select", Usage: "select <option> <selector>",
		Doc:  "Choose a dropdown option.",
		emit: func(a args) string { return get(a.at(1), fmt.Sprintf("select(%s)", a.at(0))) },
	},
	CommandCheck: {
		Keyword: "check", Usage: "check <selector>",
		Doc:  "Check a checkbox or radio.",
		emit: func(a args) string { return get(a.at(0), "check()") },
	},
	CommandUncheck: {
		Keyword: "uncheck", Usage: "uncheck <selector>",
		Doc:  "Uncheck a checkbox.",
		emit: func(a args) string { return get(a.at(0), "uncheck()") },
	},
	CommandShouldBeVisible: {
		Keyword: "should be visible", Usage: "<selector> should be visible",
		Doc:  "Assert the element is visible.",
		emit: should("be.visible", -1),
	},
	CommandShouldNotBeVisible: {
		Keyword: "should not be visible", Usage: "<selector> should not be visible",
		Doc:  "Assert the element is not visible.",
		emit: should("not.be.visible", -1),
	},
	CommandShouldExist: {
		Keyword: "should exist", Usage: "<selector> should exist",
		Doc:  "Assert the element exists.",
		emit: should("exist", -1),
	},
	CommandShouldNotExist: {
		Keyword: "should not exist", Usage: "<selector> should not exist",
		Doc:  "Assert the element does not exist.",
		emit: should("not.exist", -1),
	},
	CommandShouldBeEnabled: {
		Keyword: "should be enabled", Usage: "<selector> should be enabled",
		Doc:  "Assert the element is enabled.",
		emit: should("be.enabled", -1),
	},
	CommandShouldBeDisabled: {
		Keyword: "should be disabled", Usage: "<selector> should be disabled",
		Doc:  "Assert the element is disabled.",
		emit: should("be.disabled", -1),
	},
	CommandShouldBeChecked: {
		Keyword: "should be checked", Usage: "<selector> should be checked",
		Doc:  "Assert the element is checked.",
		emit: should("be.checked", -1),
	},
	CommandShouldNotBeChecked: {
		Keyword: "should not be checked", Usage: "<selector> should not be checked",
		Doc:  "Assert the element is not checked.",
		emit: should("not.be.checked", -1),
	},
	CommandShouldContain: {
		Keyword: "should contain", Usage: "<selector> should contain <text>",
		Doc:  "Assert the element contains text.",
		emit: should("contain", 1),
	},
	CommandShouldNotContain: {
		Keyword: "should not contain", Usage: "<selector> should not contain <text>",
		Doc:  "Assert the element does not contain text.",
		emit: should("not.contain", 1),
	},
	CommandShouldHaveValue: {
		Keyword: "should have value", Usage: "<selector> should have value <value>",
		Doc:  "Assert an input's value.",
		emit: should("have.value", 1),
	},
	CommandShouldHaveText: {
		Keyword: "should have text", Usage: "<selector> should have text <text>",
		Doc:  "Assert the element's exact text.",
		emit: should("have.text", 1),
	},
	CommandShouldIncludeText: {
		Keyword: "should include text", Usage: "<selector> should include text <text>",
		Doc: "Assert the element's text includes a substring.",
		emit: func(a args) string {
			return get(a.at(0), fmt.Sprintf("invoke('text').should('include', %s)", a.at(1)))
		},
	},
	CommandURLShouldInclude: {
		Keyword: "url should include", Usage: "url should include <text>",
		Doc:  "Assert the current URL includes text.",
		emit: func(a args) string { return fmt.Sprintf("cy.url().should('include', %s);", a.at(0)) },
	},
	CommandTitleShouldBe: {
		Keyword: "title should be", Usage: "title should be <text>",
		Doc:  "Assert the document title.",
		emit: func(a args) string { return fmt.Sprintf("cy.title().should('eq', %s);", a.at(0)) },
	},
	CommandWait: {
		Keyword: "wait", Usage: "wait <milliseconds>",
		Doc:  "Wait a fixed delay.",
		emit: func(a args) string { return fmt.Sprintf("cy.wait(%s);", a.at(0)) },
	},
	CommandPause: {
		Keyword: "pause", Usage: "pause",
		Doc:  "Pause for manual inspection.",
		emit: func(a args) string { return "cy.pause();" },
	},
	CommandScrollToTop: {
		Keyword: "scroll to top", Usage: "scroll to top",
		Doc:  "Scroll the window to the top.",
		emit: func(a args) string { return "cy.scrollTo('top');" },
	},
	CommandScrollToBottom: {
		Keyword: "scroll to bottom", Usage: "scroll to bottom",
		Doc:  "Scroll the window to the bottom.",
		emit: func(a args) string { return "cy.scrollTo('bottom');" },
	},
	CommandScrollTo: {
		Keyword: "scroll to", Usage: "scroll to <x> <y>",
		Doc:  "Scroll the window to coordinates.",
		emit: func(a args) string { return fmt.Sprintf("cy.scrollTo(%s, %s);", a.at(0), a.at(1)) },
	},
	CommandSetViewport: {
		Keyword: "set viewport", Usage: "set viewport <width> <height>",
		Doc:  "Resize the viewport.",
		emit: func(a args) string { return fmt.Sprintf("cy.viewport(%s, %s);", a.at(0), a.at(1)) },
	},
	CommandTrigger: {
		Keyword: "trigger", Usage: "trigger(<event>, <selector>)",
		Doc:  "Dispatch a DOM event on an element.",
		emit: func(a args) string { return get(a.at(1), fmt.Sprintf("trigger(%s)", a.at(0))) },
	},
	CommandAttachFile: {
		Keyword: "attach file", Usage: "attach file(<file>, <selector>)",
		Doc:  "Attach a fixture file to a file input.",
		emit: func(a args) string { return get(a.at(1), fmt.Sprintf("attachFile(%s)", a.at(0))) },
	},
	CommandAliasAs: {
		Keyword: "alias as", Usage: "alias as(<selector>, <name>)",
		Doc:  "Alias an element lookup.",
		emit: func(a args) string { return get(a.at(0), fmt.Sprintf("as(%s)", a.at(1))) },
	},
	CommandUseAlias: {
		Keyword: "use alias", Usage: "use alias(<name>)",
		Doc:  "Reference an aliased element.",
		emit: func(a args) string { return fmt.Sprintf("cy.get('@%s');", unquote(a.at(0))) },
	},
	CommandIntercept: {
		Keyword: "intercept", Usage: "intercept(<method>, <url>, <alias>)",
		Doc: "Register a network interception.",
		emit: func(a args) string {
			return fmt.Sprintf("cy.intercept({\n    method: %s,\n    url: %s,\n}).as(%s);", a.at(0), a.at(1), a.at(2))
		},
	},
	CommandWaitFor: {
		Keyword: "wait for", Usage: "wait for <alias>",
		Doc:  "Wait for an intercepted request.",
		emit: func(a args) string { return fmt.Sprintf("cy.wait('@%s');", unquote(a.at(0))) },
	},
	CommandCookieShouldExist: {
		Keyword: "cookie should exist", Usage: "cookie <name> should exist",
		Doc:  "Assert a cookie exists.",
		emit: func(a args) string { return fmt.Sprintf("cy.getCookie(%s).should('exist');", a.at(0)) },
	},
	CommandCookieShouldNotExist: {
		Keyword: "cookie should not exist", Usage: "cookie <name> should not exist",
		Doc:  "Assert a cookie does not exist.",
		emit: func(a args) string { return fmt.Sprintf("cy.getCookie(%s).should('not.exist');", a.at(0)) },
	},
	CommandCookieShouldHaveValue: {
		Keyword: "cookie should have value", Usage: "cookie <name> should have value <value>",
		Doc: "Assert a cookie's value.",
		emit: func(a args) string {
			return fmt.Sprintf("cy.getCookie(%s).should('have.property', 'value', %s);", a.at(0), a.at(1))
		},
	},
	CommandForceClick: {
		Keyword: "force click", Usage: "force click <selector>",
		Doc:  "Click without visibility or actionability checks.",
		emit: func(a args) string { return get(a.at(0), "click({ force: true })") },
	},
}

var byKeyword = func() map[string]Command {
	m := make(map[string]Command, numCommands)
	for c := CommandIt; c < numCommands; c++ {
		m[commandDefs[c].Keyword] = c
	}
	return m
}()

// Def returns the definition of c. CommandUnknown has an empty definition.
func (c Command) Def() CommandDef {
	if c < 0 || c >= numCommands {
		return CommandDef{}
	}
	return commandDefs[c]
}

// String returns the DSL keyword for c.
func (c Command) String() string {
	if c == CommandUnknown {
		return "unknown"
	}
	return c.Def().Keyword
}

// Emit renders c with already-wrapped arguments.
func (c Command) Emit(wrapped []string) string {
	def := c.Def()
	if def.emit == nil {
		return ""
	}
	return def.emit(args(wrapped))
}

// LookupCommand resolves a DSL keyword (case-insensitive, inner whitespace
// collapsed) to its Command.
func LookupCommand(keyword string) (Command, bool) {
	c, ok := byKeyword[normalizeKeyword(keyword)]
	return c, ok
}

func normalizeKeyword(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Commands returns every command of the vocabulary in reference order.
func Commands() []Command {
	cmds := make([]Command, 0, numCommands-1)
	for c := CommandIt; c < numCommands; c++ {
		cmds = append(cmds, c)
	}
	return cmds
}

// Keywords returns the DSL keywords in reference order.
func Keywords() []string {
	kws := make([]string, 0, numCommands-1)
	for _, c := range Commands() {
		kws = append(kws, commandDefs[c].Keyword)
	}
	return kws
}

// CompleteKeyword returns the keywords starting with prefix, ignoring case.
// An empty or blank prefix yields nothing.
func CompleteKeyword(prefix string) []string {
	p := strings.ToLower(strings.TrimSpace(prefix))
	if p == "" {
		return nil
	}
	var out []string
	for _, kw := range Keywords() {
		if strings.HasPrefix(kw, p) {
			out = append(out, kw)
		}
	}
	return out
}
