package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, file string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append(args, "--file", file)
	code := Run(full, &out, &errOut)
	return code, out.String(), errOut.String()
}

func testBoardFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "board.json")
}

func TestPutCreatesThenUpdates(t *testing.T) {
	file := testBoardFile(t)

	code, out, _ := runCmd(t, file, "put", "Fix the build", "-p", "critical", "-a", "alice")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "created")

	// Same title again updates in place instead of duplicating.
	code, out, _ = runCmd(t, file, "put", "Fix the build", "-d", "now with details")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "updated")

	code, out, _ = runCmd(t, file, "ls")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2, "header plus exactly one task")
	assert.Contains(t, lines[1], "P0")
	assert.Contains(t, lines[1], "alice")
}

func TestPutMovesWithColumnFlag(t *testing.T) {
	file := testBoardFile(t)

	code, _, _ := runCmd(t, file, "put", "roaming task")
	require.Equal(t, 0, code)

	code, _, _ = runCmd(t, file, "put", "roaming task", "-c", "Done")
	require.Equal(t, 0, code)

	code, out, _ := runCmd(t, file, "ls", "-c", "Done")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "roaming task")
}

func TestPutRejectsUnknownColumn(t *testing.T) {
	file := testBoardFile(t)

	code, _, errOut := runCmd(t, file, "put", "lost", "-c", "Nowhere")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "column not found")
}

func TestMvAndRmByTitle(t *testing.T) {
	file := testBoardFile(t)

	code, _, _ := runCmd(t, file, "put", "movable")
	require.Equal(t, 0, code)

	code, out, _ := runCmd(t, file, "mv", "movable", "In Progress")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Todo -> In Progress")

	code, out, _ = runCmd(t, file, "rm", "movable")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "deleted")

	code, _, errOut := runCmd(t, file, "rm", "movable")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no task matches")
}

func TestColumnsShowAndReplace(t *testing.T) {
	file := testBoardFile(t)

	code, out, _ := runCmd(t, file, "columns")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Todo")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "Done")

	code, out, _ = runCmd(t, file, "columns", "Backlog", "Doing:updated:desc", "Shipped:updated:desc")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Backlog")
	assert.Contains(t, out, "Shipped")
	assert.NotContains(t, out, "Todo")

	code, _, errOut := runCmd(t, file, "columns", "Bad:size")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown sort field")
}

func TestColumnsReplaceReassignsTasks(t *testing.T) {
	file := testBoardFile(t)

	code, _, _ := runCmd(t, file, "put", "stranded", "-c", "Done")
	require.Equal(t, 0, code)

	code, _, _ = runCmd(t, file, "columns", "Only")
	require.Equal(t, 0, code)

	code, out, _ := runCmd(t, file, "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Only")
	assert.Contains(t, out, "stranded")
}

func TestUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"frobnicate"}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "unknown command")
}

func TestLsJSON(t *testing.T) {
	file := testBoardFile(t)

	code, _, _ := runCmd(t, file, "put", "json task")
	require.Equal(t, 0, code)

	code, out, _ := runCmd(t, file, "ls", "--json")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"title": "json task"`)
}
