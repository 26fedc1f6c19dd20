package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/lariat/internal/config"
	"github.com/Sumatoshi-tech/lariat/pkg/intern"
)

func writeInputFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return buf.String(), err
}

func TestStatsCommand_Table(t *testing.T) {
	path := writeInputFile(t, "hello world hello")

	out, err := executeCommand(t, NewStatsCommand(), path)
	require.NoError(t, err)

	assert.Contains(t, out, "Distinct strings")
	assert.Contains(t, out, "interned 2 distinct strings from 3 tokens")
}

func TestStatsCommand_JSON(t *testing.T) {
	path := writeInputFile(t, "hello world hello")

	out, err := executeCommand(t, NewStatsCommand(), path, "--json")
	require.NoError(t, err)

	var report statsReport

	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, 3, report.Tokens)
	assert.Equal(t, 2, report.Strings)
	assert.Equal(t, uint64(1), report.DedupHits)
	assert.Equal(t, uint64(2), report.DedupMisses)
	assert.Positive(t, report.ArenaBytes)
}

func TestStatsCommand_MaxKeys(t *testing.T) {
	path := writeInputFile(t, "one two three")

	_, err := executeCommand(t, NewStatsCommand(), path, "--max-keys", "2")
	require.ErrorIs(t, err, intern.ErrKeySpaceExhausted)
}

func TestStatsCommand_MaxKeysFlagBeyond32Bits(t *testing.T) {
	path := writeInputFile(t, "one")

	_, err := executeCommand(t, NewStatsCommand(), path, "--max-keys", "4294967296")
	require.ErrorIs(t, err, config.ErrInvalidMaxKeys)
}

func TestStatsCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, NewStatsCommand(), filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}

func TestStatsCommand_MemoryLimitFlag(t *testing.T) {
	path := writeInputFile(t, "aaaaaaaa bbbbbbbb cccccccc")

	_, err := executeCommand(t, NewStatsCommand(), path, "--memory-limit", "8B")
	require.ErrorIs(t, err, intern.ErrMemoryLimitReached)
}
