// Package testutil provides shared test helpers for creating config files and transcript fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/qasummary/internal/transcript"
)

// SetupTestConfig creates a minimal config file whose reports go under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	reportsDir := filepath.Join(tmpDir, "reports")
	require.NoError(t, os.MkdirAll(reportsDir, 0755))

	configContent := fmt.Sprintf(`analyzer:
  provider: openai
  max_retry_attempts: 0
outputs:
  report_directory: %s
`, reportsDir)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithAPIKey creates a config file with a fake OpenAI API key for tests
// that require API key validation to pass.
func SetupTestConfigWithAPIKey(t *testing.T, tmpDir string) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir)

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content = append(content, []byte("openai:\n  api_key: fake-key-for-testing\n  model: gpt-4o-mini\n")...)
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))
	return cfgPath
}

// WriteTranscript writes entries in the canonical transcript layout to dir/name.
// Returns the path to the file.
func WriteTranscript(t *testing.T, dir, name string, entries ...transcript.QAEntry) string {
	t.Helper()

	for i := range entries {
		entries[i].Index = i + 1
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(transcript.Format(entries)), 0644))
	return path
}
