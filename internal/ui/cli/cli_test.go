package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"csslint/internal/core/errors"
	"csslint/internal/core/prefs"
	"csslint/internal/data/markers"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "site"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "a.css"),
		[]byte("a {\n  color: red;\n  color: red;\n}\n"), 0o644))

	cfg := fmt.Sprintf(`
version = 1

[paths]
project_root = %q

[[projects.entries]]
name = "site"
root = "site"
`, dir)
	path := filepath.Join(dir, "csslint.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLI_LintLifecycle(t *testing.T) {
	cfg := writeWorkspace(t)

	code, _, stderr := runCLI(t, "--config", cfg, "build", "site")
	require.Equal(t, 1, code)
	assert.Contains(t, stderr, "not enabled")

	code, out, _ := runCLI(t, "--config", cfg, "toggle", "site")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "lint enabled for site")

	code, out, _ = runCLI(t, "--config", cfg, "build")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "site: incremental build, 1 analyzed")

	code, out, _ = runCLI(t, "--config", cfg, "markers", "site")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "site/a.css:3:3: warning")
	assert.Contains(t, out, "[duplicate-properties]")
	assert.Contains(t, out, "1 problems (0 errors, 1 warnings)")

	code, _, _ = runCLI(t, "--config", cfg, "prefs", "set", "duplicate-properties", "false")
	require.Equal(t, 0, code)

	code, out, _ = runCLI(t, "--config", cfg, "prefs", "get", "duplicate-properties")
	require.Equal(t, 0, code)
	assert.Equal(t, "false\n", out)

	code, out, _ = runCLI(t, "--config", cfg, "build", "--full", "site")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "site: full build, 1 analyzed")

	code, out, _ = runCLI(t, "--config", cfg, "markers")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "no problems recorded")

	code, out, _ = runCLI(t, "--config", cfg, "toggle", "site")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "lint disabled for site")
}

func TestCLI_BuildUnknownProject(t *testing.T) {
	cfg := writeWorkspace(t)
	code, _, stderr := runCLI(t, "--config", cfg, "build", "ghost")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown project")
}

func TestCLI_PrefsRejectsUnknownKey(t *testing.T) {
	cfg := writeWorkspace(t)
	code, _, stderr := runCLI(t, "--config", cfg, "prefs", "set", "no-such-rule", "true")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown preference key")

	code, out, _ := runCLI(t, "--config", cfg, "prefs", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `duplicate-properties = "true" (default)`)
	assert.NotContains(t, out, "no-such-rule")
}

func TestCLI_OptionsAndVersion(t *testing.T) {
	cfg := writeWorkspace(t)
	code, out, _ := runCLI(t, "--config", cfg, "options")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "CORRECTNESS")
	assert.Regexp(t, `on\s+duplicate-properties`, out)
	assert.Regexp(t, `off\s+zero-units`, out)

	code, out, _ = runCLI(t, "version")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "csslint v")
}

func TestCLI_MissingConfigFails(t *testing.T) {
	code, _, stderr := runCLI(t, "--config", filepath.Join(t.TempDir(), "absent.toml"), "markers")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "load config")
}

func TestValidatePreference(t *testing.T) {
	key, err := validatePreference("Duplicate-Properties", "true")
	require.NoError(t, err)
	assert.Equal(t, "duplicate-properties", key)

	_, err = validatePreference(prefs.KeyExcludePathRegexes, ".*/vendor/.*\n[unclosed")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError), "got %v", err)

	key, err = validatePreference(prefs.KeyExcludePathRegexes, ".*/vendor/.*\n.*\\.min\\.css")
	require.NoError(t, err)
	assert.Equal(t, prefs.KeyExcludePathRegexes, key)
}

func TestPrintMarkers_SortsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	printMarkers(&buf, []markers.Marker{
		{Project: "site", Path: "b.css", Attributes: markers.Attributes{Message: "Rule is empty.", Severity: markers.SeverityWarning, Line: 1, Column: 1, Category: "empty-rules"}},
		{Project: "site", Path: "a.css", Attributes: markers.Attributes{Message: "Unexpected token.", Severity: markers.SeverityError, Line: 9, Column: 2, Category: "errors"}},
	})
	assert.Equal(t,
		"site/a.css:9:2: error Unexpected token. [errors]\n"+
			"site/b.css:1:1: warning Rule is empty. [empty-rules]\n"+
			"\n2 problems (1 errors, 1 warnings)\n",
		buf.String())
}
