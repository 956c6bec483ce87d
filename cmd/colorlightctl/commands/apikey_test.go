package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObfuscateAPIKey(t *testing.T) {
	require.Equal(t, "abcd...efgh", obfuscateAPIKey("abcd1234efgh"))
	require.Equal(t, "short", obfuscateAPIKey("short"))
}

func TestAPIKeyListCommand(t *testing.T) {
	ctx := testContext()

	outTable := captureStdout(func() {
		cmd := newAPIKeyListCommand(nil)
		cmd.SetContext(ctx)
		err := cmd.Execute()
		require.NoError(t, err)
	})
	require.Contains(t, outTable, "cli")
	require.Contains(t, outTable, "abcd...efgh")
	require.NotContains(t, outTable, "abcd1234efgh")

	outParseable := captureStdout(func() {
		cmd := newAPIKeyListCommand(nil)
		cmd.SetContext(ctx)
		cmd.SetArgs([]string{"--parseable"})
		err := cmd.Execute()
		require.NoError(t, err)
	})
	require.Contains(t, outParseable, `name="cli"`)
	require.Contains(t, outParseable, `key="abcd1234efgh"`)
	require.Contains(t, outParseable, "enabled=true")
}

func TestAPIKeyAddCommand(t *testing.T) {
	ctx := testContext()

	out := captureStdout(func() {
		cmd := newAPIKeyAddCommand(nil)
		cmd.SetContext(ctx)
		cmd.SetArgs([]string{"ci", "720h"})
		err := cmd.Execute()
		require.NoError(t, err)
	})
	require.Contains(t, out, "API Key created successfully!")
	require.Contains(t, out, "mockapikey12")
}

func TestAPIKeyAddCommandInvalidDuration(t *testing.T) {
	ctx := testContext()

	cmd := newAPIKeyAddCommand(nil)
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{"ci", "soon"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	err := cmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid duration format")
}

func TestAPIKeySetEnabledCommand(t *testing.T) {
	ctx := testContext()

	out := captureStdout(func() {
		cmd := newAPIKeySetEnabledCommand(nil)
		cmd.SetContext(ctx)
		cmd.SetArgs([]string{"cli", "false"})
		err := cmd.Execute()
		require.NoError(t, err)
	})
	require.Contains(t, out, "Enabled=false")
}

func TestAPIKeySetEnabledCommandInvalidStatus(t *testing.T) {
	ctx := testContext()

	cmd := newAPIKeySetEnabledCommand(nil)
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{"cli", "maybe"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	err := cmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid status argument")
}

func TestLoggingLevelCommand(t *testing.T) {
	ctx := testContext()

	out := captureStdout(func() {
		cmd := newLoggingLevelCommand()
		cmd.SetContext(ctx)
		err := cmd.Execute()
		require.NoError(t, err)
	})
	require.Contains(t, out, "info")

	out = captureStdout(func() {
		cmd := newLoggingLevelCommand()
		cmd.SetContext(ctx)
		cmd.SetArgs([]string{"debug"})
		err := cmd.Execute()
		require.NoError(t, err)
	})
	require.Contains(t, out, "Daemon log level set to debug")
}

func TestLoggingLevelCommandInvalid(t *testing.T) {
	ctx := testContext()

	cmd := newLoggingLevelCommand()
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{"loud"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	err := cmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid log level")
}
