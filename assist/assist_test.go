package assist

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askvallejos/hatchtest/variables"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

func TestBuildPrompt_Rejects(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrEmptyInput},
		{"   \n", ErrEmptyInput},
		{"!!!???", ErrNonsensicalInput},
		{"12345", ErrNonsensicalInput},
		{"abc", ErrNonsensicalInput},
		{" Qz ", ErrNonsensicalInput},
	}
	for _, tt := range tests {
		_, err := BuildPrompt(tt.in)
		assert.ErrorIs(t, err, tt.want, "input %q", tt.in)
	}
}

func TestBuildPrompt_Strict(t *testing.T) {
	p, err := BuildPrompt("Verify the login button works")
	require.NoError(t, err)
	assert.Contains(t, p, "Convert this English description into Cypress test code: Verify the login button works")
	assert.NotContains(t, p, "ERROR:")
}

func TestBuildPrompt_Lenient(t *testing.T) {
	p, err := BuildPrompt("make me a sandwich")
	require.NoError(t, err)
	assert.Contains(t, p, `respond with: "ERROR:`)
	assert.Contains(t, p, "Input: make me a sandwich")
}

func TestIsTestRelated(t *testing.T) {
	assert.True(t, IsTestRelated("CLICK the thing"))
	assert.True(t, IsTestRelated("the api returns 200"))
	assert.False(t, IsTestRelated("hello world"))
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "cy.visit('/');", "cy.visit('/');"},
		{"fenced", "```javascript\ncy.visit('/');\n```\n", "cy.visit('/');\n"},
		{"fence case", "```JavaScript cy.reload();```", "cy.reload();"},
		{"other fence kept at start", "```js\ncy.reload();\n```", "```js\ncy.reload();\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanResponse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanResponse_Errors(t *testing.T) {
	_, err := CleanResponse("ERROR: The input doesn't make sense for test automation.")
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "The input doesn't make sense for test automation.", rejected.Reason)

	_, err = CleanResponse("```javascript\n```")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

type storeFunc func(ctx context.Context) ([]variables.Variable, error)

func (f storeFunc) GetAll(ctx context.Context) ([]variables.Variable, error) { return f(ctx) }

func TestAssistant_Convert(t *testing.T) {
	var gotPrompt string
	a := &Assistant{
		Generator: GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
			gotPrompt = prompt
			return "```javascript\ncy.visit(baseUrl);\n```", nil
		}),
		Store: storeFunc(func(context.Context) ([]variables.Variable, error) {
			return []variables.Variable{{Name: "baseUrl", Value: "'https://x.test'"}}, nil
		}),
		Logger: testLogger(t),
	}

	code, err := a.Convert(context.Background(), "test the home page")
	require.NoError(t, err)
	assert.Equal(t, "cy.visit('https://x.test');\n", code)
	assert.Contains(t, gotPrompt, "test the home page")
}

func TestAssistant_StoreFailureKeepsCode(t *testing.T) {
	a := &Assistant{
		Generator: GeneratorFunc(func(context.Context, string) (string, error) { return "cy.visit(baseUrl);", nil }),
		Store: storeFunc(func(context.Context) ([]variables.Variable, error) {
			return nil, errors.New("locked")
		}),
		Logger: testLogger(t),
	}
	code, err := a.Convert(context.Background(), "test the home page")
	require.NoError(t, err)
	assert.Equal(t, "cy.visit(baseUrl);", code)
}

func TestAssistant_Errors(t *testing.T) {
	boom := errors.New("quota exceeded")
	a := &Assistant{Generator: GeneratorFunc(func(context.Context, string) (string, error) { return "", boom })}

	_, err := a.Convert(context.Background(), "test login")
	assert.ErrorIs(t, err, boom)

	_, err = a.Convert(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNonsensicalInput)

	a.Generator = GeneratorFunc(func(context.Context, string) (string, error) { return "ERROR: nope", nil })
	_, err = a.Convert(context.Background(), "dance")
	var rejected *RejectedError
	assert.ErrorAs(t, err, &rejected)
}
