package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/callcharts/internal/config"
)

type testEnv struct {
	dir    string
	config string
	db     string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("CALLCHARTS_EMAIL", "")

	dir := t.TempDir()
	return testEnv{
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		db:     filepath.Join(dir, "data.db"),
	}
}

// execute runs the root command. Flag values persist between runs, so
// callers pass every flag the command reads.
func (e testEnv) execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--config", e.config, "--db", e.db, "--backend", "sqlite"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e testEnv) writeValues(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestDefaultsCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute(t, "", "defaults", "--chart", "callvolume")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Mon"`)
	assert.Contains(t, out, `"calls": 120`)
	assert.NotContains(t, out, "quality")

	out, err = env.execute(t, "", "defaults", "--chart", "")
	require.NoError(t, err)
	assert.Contains(t, out, "# Voice Quality (voiceQuality)")
	assert.Contains(t, out, "# Call Volume (callVolume)")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	first := env.writeValues(t, "first.json", `[{"name":"Mon","calls":7}]`)
	second := env.writeValues(t, "second.json", `[{"name":"Mon","calls":8}]`)

	out, err := env.execute(t, "", "load", "--email", "a@b.com", "--chart", "callVolume")
	require.NoError(t, err)
	assert.Contains(t, out, "No previous values found")

	out, err = env.execute(t, "", "save", "--email", "a@b.com", "--chart", "callVolume", "--file", first, "--yes=false")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Saved successfully: 1 points")

	// declined overwrite keeps the first values
	out, err = env.execute(t, "n\n", "save", "--email", "a@b.com", "--chart", "callVolume", "--file", second, "--yes=false")
	require.NoError(t, err)
	assert.Contains(t, out, "We found previously saved values. Overwrite?")
	assert.Contains(t, out, "Cancelled")

	out, err = env.execute(t, "", "load", "--email", "a@b.com", "--chart", "callVolume")
	require.NoError(t, err)
	assert.Contains(t, out, `"calls": 7`)

	out, err = env.execute(t, "", "save", "--email", "a@b.com", "--chart", "callVolume", "--file", second, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Saved successfully")

	out, err = env.execute(t, "", "load", "--email", "a@b.com", "--chart", "callVolume")
	require.NoError(t, err)
	assert.Contains(t, out, `"calls": 8`)
}

func TestSaveFromStdinNeedsYesToOverwrite(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute(t, `[{"name":"00:00","quality":1}]`, "save", "--email", "a@b.com", "--chart", "voiceQuality", "--file", "-", "--yes=false")
	require.NoError(t, err)

	out, err := env.execute(t, `[{"name":"00:00","quality":2}]`, "save", "--email", "a@b.com", "--chart", "voiceQuality", "--file", "-", "--yes=false")
	require.NoError(t, err)
	assert.Contains(t, out, "re-run with --yes")
	assert.Contains(t, out, "Cancelled")
}

func TestSaveRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	bad := env.writeValues(t, "bad.json", `{"name":"Mon"}`)

	_, err := env.execute(t, "", "save", "--email", "a@b.com", "--chart", "callVolume", "--file", bad, "--yes=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON: Parsed JSON must be an array of objects")

	good := env.writeValues(t, "good.json", `[{"name":"Mon","calls":1}]`)
	_, err = env.execute(t, "", "save", "--email", "not-an-email", "--chart", "callVolume", "--file", good, "--yes=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please enter a valid email address")
}

func TestLoginStoresEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute(t, "", "login", "--email", "nope")
	require.Error(t, err)

	out, err := env.execute(t, "", "login", "--email", "  me@example.com ")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Saved me@example.com")

	cfg, err := config.Load(env.config)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", cfg.Email)

	// load falls back to the configured email
	out, err = env.execute(t, "", "load", "--email", "", "--chart", "voiceQuality")
	require.NoError(t, err)
	assert.Contains(t, out, "me@example.com")
}

func TestLoginKeepsEnvSettingsOutOfConfig(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, config.Save(env.config, &config.Config{Database: env.db}))
	t.Setenv("SUPABASE_URL", "https://x.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "secret-anon-key")
	t.Setenv("CALLCHARTS_EMAIL", "env@example.com")

	_, err := env.execute(t, "", "login", "--email", "me@example.com")
	require.NoError(t, err)

	data, err := os.ReadFile(env.config)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "me@example.com")
	assert.Contains(t, text, env.db)
	assert.NotContains(t, text, "secret-anon-key")
	assert.NotContains(t, text, "x.supabase.co")
	assert.NotContains(t, text, "backend:")
	assert.NotContains(t, text, "env@example.com")

	raw, err := config.LoadFile(env.config)
	require.NoError(t, err)
	assert.Equal(t, config.BackendSQLite, raw.GetBackend())
}

func TestListCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute(t, "", "list", "--email", "")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved values found")

	values := env.writeValues(t, "v.json", `[{"name":"Mon","calls":1},{"name":"Tue","calls":2}]`)
	_, err = env.execute(t, "", "save", "--email", "a@b.com", "--chart", "callVolume", "--file", values, "--yes=false")
	require.NoError(t, err)

	out, err = env.execute(t, "", "list", "--email", "")
	require.NoError(t, err)
	assert.Contains(t, out, "a@b.com")
	assert.Contains(t, out, "callVolume")
	assert.Contains(t, out, "Total: 1 saved charts")
}

func TestExportCommand(t *testing.T) {
	env := newTestEnv(t)
	values := env.writeValues(t, "v.json", `[{"name":"Mon","calls":1}]`)
	_, err := env.execute(t, "", "save", "--email", "a@b.com", "--chart", "callVolume", "--file", values, "--yes=false")
	require.NoError(t, err)

	output := filepath.Join(env.dir, "charts.xlsx")
	out, err := env.execute(t, "", "export", "--email", "a@b.com", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Voice Quality: 7 points (default)")
	assert.Contains(t, out, "Call Volume: 1 points (saved)")
	assert.FileExists(t, output)
}

func TestSnapshotSVG(t *testing.T) {
	env := newTestEnv(t)
	output := filepath.Join(env.dir, "chart.svg")

	out, err := env.execute(t, "", "snapshot", "--email", "", "--chart", "callVolume", "--svg", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "default values")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<svg`)
	assert.Contains(t, string(data), `class="bar"`)
}

func TestUnknownBackend(t *testing.T) {
	env := newTestEnv(t)
	rootCmd.SetArgs([]string{"load", "--email", "a@b.com", "--chart", "voiceQuality", "--config", env.config, "--db", env.db, "--backend", "redis"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend: redis")
}
