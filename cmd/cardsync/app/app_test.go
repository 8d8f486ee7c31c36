package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cardsync"
	"github.com/agentstation/cardsync/internal/isapi"
	"github.com/agentstation/cardsync/internal/isapi/isapitest"
	"github.com/agentstation/cardsync/pkg/errors"
)

// newTestApp creates an app working in a scratch directory that holds a
// settings file for panels.
func newTestApp(t *testing.T, panels ...string) *App {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	settings := "card_delay = 0s\npage_pause = 0s\n\n[ip_list]\nIP = "
	for i, p := range panels {
		if i > 0 {
			settings += " "
		}
		settings += p
	}
	settings += "\n\n[authorization]\nLOGIN = admin\nPASSWD = secret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.ini"), []byte(settings), 0o600))

	app, err := New("1.0.0", "abc123", "2026-01-01", "test")
	require.NoError(t, err)
	app.config.LogOutput = "discard"
	return app
}

func execute(t *testing.T, app *App, args ...string) (string, string, error) {
	t.Helper()
	root := app.createRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestAppNew(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, "1.0.0", app.Version())
	assert.Equal(t, "abc123", app.Commit())
	assert.Equal(t, "2026-01-01", app.Date())
	assert.Equal(t, "test", app.BuiltBy())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Config())
}

func TestSettingsApplyFlagOverrides(t *testing.T) {
	app := newTestApp(t, "10.0.0.5", "10.0.0.6")

	settings, err := app.Settings()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.5", "10.0.0.6"}, settings.Panels)
	assert.Equal(t, "dump.txt", settings.Snapshot)

	app.config.Panels = []string{"10.0.0.9"}
	app.config.Snapshot = "state/cards.txt"
	settings, err = app.Settings()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.9"}, settings.Panels)
	assert.Equal(t, "state/cards.txt", settings.Snapshot)
}

func TestSyncerRequiresPanels(t *testing.T) {
	app := newTestApp(t)

	_, err := app.Syncer()
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

// TestSyncerSingleton verifies concurrent Syncer() calls share one instance.
func TestSyncerSingleton(t *testing.T) {
	app := newTestApp(t, "10.0.0.5")

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]cardsync.Syncer, goroutines)
	errs := make([]error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = app.Syncer()
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestExecuteCountWithPanelFlag(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000001", "0000000002")
	app := newTestApp(t, "10.255.255.1")

	stdout, _, err := execute(t, app, "count", "--panel", panel.Address(), "-o", "json", "--log-level", "error")
	require.NoError(t, err)

	var report cardsync.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Panels, 1)
	assert.Equal(t, panel.Address(), report.Panels[0].Panel)
	assert.Equal(t, 2, report.Panels[0].Cards)
}

func TestExecuteUpdateWritesSnapshot(t *testing.T) {
	panel := isapitest.New(t)
	app := newTestApp(t, panel.Address())
	require.NoError(t, os.WriteFile("cards.txt", []byte("85EF77B4\n7290FDE1\n"), 0o600))

	_, stderr, err := execute(t, app, "update", "cards.txt", "--no-color", "-q")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	data, err := os.ReadFile("dump.txt")
	require.NoError(t, err)
	assert.Equal(t, "2247063476\n1922104801\n", string(data))
}

func TestExecuteVersion(t *testing.T) {
	app := newTestApp(t)

	stdout, _, err := execute(t, app, "version")
	require.NoError(t, err)
	assert.Equal(t, "cardsync 1.0.0\n", stdout)

	stdout, _, err = execute(t, app, "version", "-v", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "commit:   abc123")
}

func TestExecuteUnknownCommand(t *testing.T) {
	app := newTestApp(t)
	_, _, err := execute(t, app, "frobnicate")
	assert.Error(t, err)
}

func TestExecuteRejectsUnknownFormat(t *testing.T) {
	panel := isapitest.New(t)
	app := newTestApp(t, panel.Address())

	stdout, _, err := execute(t, app, "count", "-o", "csv")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Empty(t, stdout)
	assert.Zero(t, panel.Calls(isapi.EndpointCardCount))
}

func TestExecuteNormalizesFormat(t *testing.T) {
	panel := isapitest.New(t)
	app := newTestApp(t, panel.Address())

	stdout, _, err := execute(t, app, "count", "-o", "JSON", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "json", app.OutputFormat())

	var report cardsync.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Panels, 1)
}
