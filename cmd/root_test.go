package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"analyze", "serve", "init"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "tracelens", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestAnalyzeCommand_Flags(t *testing.T) {
	daysFlag := analyzeCmd.Flags().Lookup("days")
	require.NotNil(t, daysFlag, "analyze command should have --days flag")

	outFlag := analyzeCmd.Flags().Lookup("out-dir")
	require.NotNil(t, outFlag, "analyze command should have --out-dir flag")
}

func TestServeCommand_Flags(t *testing.T) {
	portFlag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, portFlag, "serve command should have --port flag")
}

func TestInitCommand_WritesStarterConfig(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	require.NoError(t, initCmd.RunE(initCmd, nil))

	data, err := os.ReadFile("config.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "langfuse:")
	assert.Contains(t, string(data), "public_key:")

	// Second run must refuse to overwrite.
	err = initCmd.RunE(initCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestSortedKeys(t *testing.T) {
	got := sortedKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
