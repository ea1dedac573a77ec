// Package assist implements the local half of AI-assisted conversion: it
// turns a plain-English test description into a prompt, and turns the
// model's reply into Cypress code with variables substituted.
//
// The model itself is reached through a Generator supplied by the caller.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/askvallejos/hatchtest/variables"
)

var (
	// ErrEmptyInput is returned for an empty or whitespace-only description.
	ErrEmptyInput = errors.New("input is empty, please enter a test description to convert")
	// ErrNonsensicalInput is returned for descriptions that cannot describe a
	// test, such as only symbols, only digits or one to three letters.
	ErrNonsensicalInput = errors.New("the input appears to be nonsensical or contains only special characters, please provide a meaningful test description")
	// ErrEmptyResponse is returned when the reply holds no code.
	ErrEmptyResponse = errors.New("the model returned no code")
)

// RejectedError is returned when the model declines the description with an
// "ERROR:" reply.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "rejected: " + e.Reason
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// testKeywords mark a description as clearly test-related. Matching is by
// lowercase substring.
var testKeywords = []string{
	"test", "check", "verify", "validate", "assert", "expect", "should",
	"login", "logout", "click", "type", "fill", "submit", "form",
	"button", "link", "input", "field", "page", "element", "component",
	"navigation", "menu", "dropdown", "select", "radio", "checkbox",
	"table", "list", "grid", "modal", "dialog", "popup", "alert",
	"error", "success", "warning", "message", "notification",
	"search", "filter", "sort", "pagination", "scrolling",
	"upload", "download", "file", "image", "video", "audio",
	"responsive", "mobile", "desktop", "tablet", "screen",
	"api", "request", "response", "status", "data", "json",
	"database", "db", "query", "mutation", "subscription",
}

var nonsensicalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[^\w\s]+$`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`(?i)^[a-z]{1,3}$`),
}

const codeOnly = "respond with ONLY the Cypress test code - nothing more, nothing less. " +
	"No explanations, no markdown formatting, no comments, no additional text. " +
	"Just the pure Cypress code with proper syntax, describe/it blocks, selectors, and assertions."

const strictPrompt = "You are a test automation expert. Convert English descriptions into Cypress test code. " +
	"Respond with ONLY the Cypress test code - nothing more, nothing less. " +
	"No explanations, no markdown formatting, no comments, no additional text. " +
	"Just the pure Cypress code with proper syntax, describe/it blocks, selectors, and assertions.\n\n" +
	"Convert this English description into Cypress test code: %s"

const lenientPrompt = "You are a test automation expert. The following input may not be clearly related to test automation. " +
	"If the input doesn't make sense for creating a test, respond with: \"ERROR: The input doesn't make sense for test automation. " +
	"Please provide a clear description of what you want to test (e.g., 'test login functionality', " +
	"'verify form validation', 'check button click behavior').\"\n\n" +
	"If the input can be reasonably converted to a test, " + codeOnly + "\n\n" +
	"Input: %s"

// IsTestRelated reports whether the description mentions a test keyword.
func IsTestRelated(input string) bool {
	lower := strings.ToLower(input)
	for _, kw := range testKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// BuildPrompt validates a description and returns the prompt for it. A
// description without test keywords gets a prompt that lets the model
// refuse with an "ERROR:" reply.
func BuildPrompt(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrEmptyInput
	}
	for _, p := range nonsensicalPatterns {
		if p.MatchString(trimmed) {
			return "", ErrNonsensicalInput
		}
	}
	if IsTestRelated(input) {
		return fmt.Sprintf(strictPrompt, input), nil
	}
	return fmt.Sprintf(lenientPrompt, input), nil
}

var (
	leadingFence  = regexp.MustCompile("(?i)^```javascript\\s*")
	trailingFence = regexp.MustCompile("```\\s*$")
)

// CleanResponse turns a model reply into code. A reply starting with
// "ERROR:" becomes a *RejectedError; a surrounding ```javascript fence is
// removed.
func CleanResponse(raw string) (string, error) {
	if reason, ok := strings.CutPrefix(raw, "ERROR:"); ok {
		return "", &RejectedError{Reason: strings.TrimSpace(reason)}
	}
	code := leadingFence.ReplaceAllString(raw, "")
	code = trailingFence.ReplaceAllString(code, "")
	if strings.TrimSpace(code) == "" {
		return "", ErrEmptyResponse
	}
	return code, nil
}

// Assistant runs a description through a Generator and post-processes the
// reply.
type Assistant struct {
	Generator Generator
	// Store supplies variables for substitution. Optional.
	Store variables.Store
	// Logger is optional; nil discards.
	Logger *slog.Logger
}

// Convert builds the prompt, generates, cleans the reply and substitutes
// variables. A failing variable store does not fail the conversion; the
// unsubstituted code is returned.
func (a *Assistant) Convert(ctx context.Context, description string) (string, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	prompt, err := BuildPrompt(description)
	if err != nil {
		return "", err
	}
	logger.Debug("generating", "strict", IsTestRelated(description), "prompt_bytes", len(prompt))

	raw, err := a.Generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating code: %w", err)
	}
	code, err := CleanResponse(raw)
	if err != nil {
		return "", err
	}

	if a.Store == nil {
		return code, nil
	}
	out, err := variables.SubstituteFrom(ctx, a.Store, code)
	if err != nil {
		logger.Warn("variable substitution skipped", "error", err)
		return code, nil
	}
	return out, nil
}
