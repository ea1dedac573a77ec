package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/askvallejos/hatchtest/assist"
	"github.com/askvallejos/hatchtest/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is safe for the watch command's timer goroutines.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

type harness struct {
	t     *testing.T
	dir   string
	db    string
	stdin string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)
	t.Setenv("NO_COLOR", "")
	return &harness{t: t, dir: t.TempDir(), db: filepath.Join(home, "vars.db")}
}

func (h *harness) write(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (h *harness) runCtx(ctx context.Context, args ...string) (string, string, error) {
	h.t.Helper()
	out, errOut := &syncBuffer{}, &syncBuffer{}
	app := NewApp("test")
	app.Writer = out
	app.ErrWriter = errOut
	app.Reader = strings.NewReader(h.stdin)
	full := append([]string{"hatchtest", "--color", "never", "--database", h.db}, args...)
	err := app.Run(ctx, full)
	return out.String(), errOut.String(), err
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	return h.runCtx(context.Background(), args...)
}

func TestConvert_File(t *testing.T) {
	h := newHarness(t)
	script := h.write("login.ht", "it logs in\n  go to https://x.test/login\n  click #submit\nend\n")

	out, _, err := h.run("convert", script)
	require.NoError(t, err)
	want := "it('logs in', () => {\n" +
		"  cy.visit('https://x.test/login');\n" +
		"  cy.get('#submit').click();\n" +
		"});\n"
	assert.Equal(t, want, out)
	assert.NoFileExists(t, h.db, "conversion must not create the database")
}

func TestConvert_Shorthand(t *testing.T) {
	h := newHarness(t)
	script := h.write("quick.ht", "reload\n")

	out, _, err := h.run(script)
	require.NoError(t, err)
	assert.Equal(t, "cy.reload();\n", out)
}

func TestConvert_Stdin(t *testing.T) {
	h := newHarness(t)
	h.stdin = "pause"

	out, _, err := h.run("convert", "-")
	require.NoError(t, err)
	assert.Equal(t, "cy.pause();\n", out)
}

func TestConvert_OutputFile(t *testing.T) {
	h := newHarness(t)
	script := h.write("a.ht", "go back\n")
	dest := filepath.Join(h.dir, "out", "a.cy.js")

	out, errOut, err := h.run("convert", "-o", dest, script)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "wrote "+dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "cy.go('back');\n", string(data))
}

func TestConvert_OutputNeedsSingleInput(t *testing.T) {
	h := newHarness(t)
	a := h.write("a.ht", "reload\n")
	b := h.write("b.ht", "reload\n")

	_, _, err := h.run("convert", "-o", "x.cy.js", a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output needs a single input")
}

func TestConvert_UnrecognizedLines(t *testing.T) {
	h := newHarness(t)
	script := h.write("typo.ht", "clik #btn\nclick #ok\n")

	out, errOut, err := h.run("convert", script)
	require.NoError(t, err)
	assert.Contains(t, out, "cy.get('#ok').click();")
	assert.Contains(t, out, `❌ Line 1: "clik #btn"`)
	assert.Contains(t, errOut, "1 line(s) not recognized")
	assert.Contains(t, errOut, `line 1: clik #btn (did you mean "click"?)`)

	_, _, err = h.run("convert", "--strict", script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized lines in "+script)
}

func TestConvert_Errors(t *testing.T) {
	h := newHarness(t)
	empty := h.write("empty.ht", "\n\n")

	_, _, err := h.run("convert", empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input is empty")

	_, _, err = h.run("convert", filepath.Join(h.dir, "missing.ht"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")

	_, _, err = h.run("convert")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage:")
}

func TestConvert_SyntaxErrors(t *testing.T) {
	h := newHarness(t)
	script := h.write("broken.ht", "go to https://x.test\ntype \"abc into #name\n")
	dest := filepath.Join(h.dir, "broken.cy.js")

	out, _, err := h.run("convert", "-o", dest, script)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Empty(t, out)
	assert.Contains(t, err.Error(), "nothing converted")
	assert.Contains(t, err.Error(), "L103")
	assert.NoFileExists(t, dest)

	_, _, err = h.run(script)
	require.ErrorAs(t, err, &syntaxErr, "shorthand checks too")

	_, _, err = h.run("convert", "--no-check", "-o", dest, script)
	require.NoError(t, err)
	assert.FileExists(t, dest)
}

func TestConvert_EmptyResultWarns(t *testing.T) {
	h := newHarness(t)
	script := h.write("ends.ht", "end\nend\n")

	out, errOut, err := h.run("convert", script)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
	assert.Contains(t, errOut, script+": conversion produced no code")
}

func TestConvert_SubstitutesVariables(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("vars", "add", "host", "staging.test")
	require.NoError(t, err)
	script := h.write("vars.ht", "go to https://host/login\n")

	out, _, err := h.run("convert", script)
	require.NoError(t, err)
	assert.Equal(t, "cy.visit('https://staging.test/login');\n", out)

	out, _, err = h.run("convert", "--no-vars", script)
	require.NoError(t, err)
	assert.Equal(t, "cy.visit('https://host/login');\n", out)
}

func TestConvert_ConfigOutDir(t *testing.T) {
	h := newHarness(t)
	outDir := filepath.Join(h.dir, "e2e")
	cfgFile := h.write("conf.yaml", "out_dir: "+outDir+"\n")
	script := h.write("home.ht", "reload\n")

	_, _, err := h.run("--config", cfgFile, "convert", script)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "home.cy.js"))
}

func TestInvalidConfig(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("--log-level", "loud", "keywords")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log_level")
}

func TestLint(t *testing.T) {
	h := newHarness(t)
	clean := h.write("ok.ht", "it works\nclick #a\nend\n")
	bad := h.write("bad.ht", "click\nhovr #menu\n")

	out, errOut, err := h.run("lint", clean)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "no problems found")

	out, _, err = h.run("lint", bad)
	require.Error(t, err)
	assert.Contains(t, out, "✗ "+bad+":1:")
	assert.Contains(t, out, "[L105]")
	assert.Contains(t, out, "⚠ "+bad+":2:")
	assert.Contains(t, out, `suggestion: did you mean "hover"?`)
	assert.Contains(t, err.Error(), "error(s)")
}

func TestLint_HintsHiddenByDefault(t *testing.T) {
	h := newHarness(t)
	script := h.write("end.ht", "end\nclick #a\n")

	out, _, err := h.run("lint", script)
	require.NoError(t, err)
	assert.NotContains(t, out, "[H301]")

	out, _, err = h.run("lint", "--hints", script)
	require.NoError(t, err)
	assert.Contains(t, out, "[H301]")
}

func TestKeywords(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("keywords")
	require.NoError(t, err)
	assert.Contains(t, out, "Keyword")
	assert.Contains(t, out, "double click")
	assert.Contains(t, out, "cookie should have value")
}

func TestKeywords_Prefix(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("vars", "add", "scrollTarget", "#footer")
	require.NoError(t, err)

	out, _, err := h.run("keywords", "scr")
	require.NoError(t, err)
	assert.Contains(t, out, "scroll to")
	assert.Contains(t, out, "scrollTarget")
	assert.Less(t, strings.Index(out, "scroll to"), strings.Index(out, "scrollTarget"),
		"keywords come before variables")
}

func TestComplete(t *testing.T) {
	assert.Nil(t, complete("  ", []string{"a"}))

	got := complete("C", []string{"cartId", "other"})
	require.NotEmpty(t, got)
	assert.Equal(t, "keyword", got[0].kind)
	assert.Equal(t, completion{kind: "variable", value: "cartId"}, got[len(got)-1])

	var many []string
	for i := 0; i < 20; i++ {
		many = append(many, "x"+strings.Repeat("y", i))
	}
	assert.Len(t, complete("x", many), maxCompletions)
}

func TestVars(t *testing.T) {
	h := newHarness(t)

	_, errOut, err := h.run("vars", "add", "user", "admin")
	require.NoError(t, err)
	assert.Contains(t, errOut, "added user")

	_, _, err = h.run("vars", "add", "user", "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, errOut, err = h.run("vars", "set", "user", "root")
	require.NoError(t, err)
	assert.Contains(t, errOut, "updated user")

	_, errOut, err = h.run("vars", "set", "greeting", "hello", "there")
	require.NoError(t, err)
	assert.Contains(t, errOut, "added greeting")

	out, _, err := h.run("vars", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "greeting")
	assert.Contains(t, out, "hello there")
	assert.Contains(t, out, "root")
	assert.Less(t, strings.Index(out, "greeting"), strings.Index(out, "user"))

	_, _, err = h.run("vars", "rename", "user", "login")
	require.NoError(t, err)

	out, _, err = h.run("vars", "export")
	require.NoError(t, err)
	assert.Equal(t, "# hatchtest variables\ngreeting = hello there\nlogin = root\n", out)

	_, errOut, err = h.run("vars", "rm", "greeting", "nope")
	require.Error(t, err)
	assert.Contains(t, errOut, "removed greeting")
	assert.Contains(t, err.Error(), "nope: variable not found")
}

func TestVars_ImportExport(t *testing.T) {
	h := newHarness(t)
	file := h.write("shared.vars", "# team values\nbaseUrl = https://x.test\ntoken = abc\n")

	_, errOut, err := h.run("vars", "import", file)
	require.NoError(t, err)
	assert.Contains(t, errOut, "2 added, 0 updated")

	h.stdin = "token = xyz\n"
	_, errOut, err = h.run("vars", "import", "-")
	require.NoError(t, err)
	assert.Contains(t, errOut, "0 added, 1 updated")

	dest := filepath.Join(h.dir, "export.vars")
	_, _, err = h.run("vars", "export", dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "# hatchtest variables\nbaseUrl = https://x.test\ntoken = xyz\n", string(data))
}

func TestVars_Usage(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("vars", "add", "lonely")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: hatchtest vars add")

	_, errOut, err := h.run("vars", "list")
	require.NoError(t, err)
	assert.Contains(t, errOut, "no variables")
}

func TestPrompt(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("prompt", "verify", "the", "login", "form")
	require.NoError(t, err)
	assert.Contains(t, out, "Convert this English description into Cypress test code: verify the login form")

	_, _, err = h.run("prompt", "???")
	assert.ErrorIs(t, err, assist.ErrNonsensicalInput)
}

func TestAssist(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("vars", "add", "baseUrl", "'https://x.test'")
	require.NoError(t, err)

	h.stdin = "```javascript\ncy.visit(baseUrl);\n```"
	out, _, err := h.run("assist", "test", "the", "home", "page")
	require.NoError(t, err)
	assert.Equal(t, "cy.visit('https://x.test');\n", out)

	reply := h.write("reply.txt", "ERROR: not a test")
	_, _, err = h.run("assist", "--reply", reply, "bake", "bread")
	var rejected *assist.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "not a test", rejected.Reason)
}

func TestWatch(t *testing.T) {
	h := newHarness(t)
	h.write("suite/first.ht", "reload\n")
	outDir := filepath.Join(h.dir, "out")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := h.runCtx(ctx, "watch", "-d", outDir, "--debounce", "20ms", filepath.Join(h.dir, "suite"))
		done <- err
	}()

	first := filepath.Join(outDir, "first.cy.js")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(first)
		return err == nil && string(data) == "cy.reload();\n"
	}, 5*time.Second, 20*time.Millisecond, "initial conversion")

	h.write("suite/first.ht", "pause\n")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(first)
		return err == nil && string(data) == "cy.pause();\n"
	}, 5*time.Second, 20*time.Millisecond, "reconversion after write")

	h.write("suite/second.ht", "go forward\n")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(outDir, "second.cy.js"))
		return err == nil && string(data) == "cy.go('forward');\n"
	}, 5*time.Second, 20*time.Millisecond, "new script")

	h.write("suite/nested/third.ht", "go back\n")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(outDir, "third.cy.js"))
		return err == nil && string(data) == "cy.go('back');\n"
	}, 5*time.Second, 20*time.Millisecond, "script in new directory")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_MissingTarget(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("watch", filepath.Join(h.dir, "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("specs", "login.cy.js"), outputPath("", filepath.Join("specs", "login.ht")))
	assert.Equal(t, filepath.Join("out", "login.cy.js"), outputPath("out", filepath.Join("specs", "login.ht")))
}
