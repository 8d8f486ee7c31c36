package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentstation/cardsync/pkg/logging"
)

func TestConfigurationFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardsync.log")

	logger := logging.NewLoggerFromConfig(&logging.Config{Level: "warn", Format: "auto", Output: path})
	logger.Info().Msg("hidden")
	logger.Warn().Str("panel", "10.0.0.5").Msg("written")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	output := string(data)
	if strings.Contains(output, "hidden") {
		t.Errorf("info line should be filtered, got: %s", output)
	}
	if !strings.Contains(output, `"panel":"10.0.0.5"`) {
		t.Errorf("expected JSON line in file, got: %s", output)
	}
}

func TestConfiguration(t *testing.T) {
	configs := []struct {
		name   string
		config *logging.Config
		check  func(t *testing.T, output string)
	}{
		{
			name:   "debug level",
			config: &logging.Config{Level: "debug", Format: "json", Output: "discard"},
			check: func(t *testing.T, output string) {
				if !strings.Contains(output, `"level":"debug"`) {
					t.Errorf("Expected debug level in output")
				}
			},
		},
		{
			name:   "error level only",
			config: &logging.Config{Level: "error", Format: "json", Output: "discard"},
			check: func(t *testing.T, output string) {
				if strings.Contains(output, `"level":"info"`) {
					t.Errorf("Should not contain info level when set to error")
				}
			},
		},
		{
			name:   "warning alias",
			config: &logging.Config{Level: "warning", Format: "json", Output: "discard"},
			check: func(t *testing.T, output string) {
				if strings.Contains(output, `"level":"info"`) || !strings.Contains(output, `"level":"error"`) {
					t.Errorf("Expected warn threshold, got: %s", output)
				}
			},
		},
		{
			name: "default fields",
			config: &logging.Config{
				Level:  "info",
				Format: "json",
				Output: "discard",
				Fields: map[string]any{"run": "nightly"},
			},
			check: func(t *testing.T, output string) {
				if !strings.Contains(output, `"run":"nightly"`) {
					t.Errorf("Expected default field in output, got: %s", output)
				}
			},
		},
	}

	for _, tc := range configs {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.NewLoggerFromConfig(tc.config).Output(buf)

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			tc.check(t, buf.String())
		})
	}
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Logger.Info().Msg("message 1")
	tl.Logger.Error().Msg("message 2")

	tl.AssertContains(t, "message 1")
	tl.AssertContains(t, "message 2")
	tl.AssertNotContains(t, "message 3")

	if len(tl.Lines()) != 2 {
		t.Errorf("Expected 2 log entries, got %d", len(tl.Lines()))
	}
}
