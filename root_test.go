package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentvault/vault-go/internal/config"
)

// newRootCmd() binds flags via StringVar/BoolVar, which reset the global
// flag variables to their zero values. Tests set globals after it returns
// or drive flags through cmd.SetArgs + Execute.

func resetGlobals(t *testing.T) {
	t.Helper()

	oldCfg := resolvedCfg
	oldVerbose := flagVerbose
	oldQuiet := flagQuiet

	t.Cleanup(func() {
		resolvedCfg = oldCfg
		flagVerbose = oldVerbose
		flagQuiet = oldQuiet
	})
}

func TestBuildLoggerLevels(t *testing.T) {
	resetGlobals(t)

	resolvedCfg = config.DefaultConfig()
	flagVerbose = false
	flagQuiet = false

	logger := buildLogger()
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))

	flagVerbose = true
	logger = buildLogger()
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))

	flagVerbose = false
	flagQuiet = true
	logger = buildLogger()
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelError))
}

func TestRootCmdSubcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "sync")
	assert.Contains(t, names, "status")
}

func TestStatusCommand(t *testing.T) {
	resetGlobals(t)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "vault.toml")
	dbPath := filepath.Join(dir, "vault.db")

	content := `
space = "cfexampleapi"
access_token = "secret"
db_path = "` + dbPath + `"

[[model]]
content_type = "post"
table = "posts"

  [[model.field]]
  id = "title"
  kind = "text"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cmd := newRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"status", "--config", cfgPath, "--quiet"})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "full sync")
	assert.Contains(t, out.String(), "posts:")
	assert.Contains(t, out.String(), "assets:")
}

func TestRootCmdBadConfig(t *testing.T) {
	resetGlobals(t)

	cfgPath := filepath.Join(t.TempDir(), "vault.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`spce = "typo"`), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"status", "--config", cfgPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spce")
}
