package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/vocab/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command tree against a database in dir
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	return runWithInput(t, dir, "", args...)
}

func runWithInput(t *testing.T, dir, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(input))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--data-dir", dir, "--speech=false", "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{
		"add", "list", "show", "groups", "stats", "set-difficulty", "set-group", "delete",
		"rename-group", "delete-group", "import", "export", "quiz", "fill-blank", "flashcards", "bot", "serve",
	} {
		assert.Contains(t, names, want)
	}
}

func TestWordManagementCommands(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "words.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"English,Translation,Examples,Difficulty,Group\n"+
			"chore,מטלה,Washing dishes is a chore.,easy,home\n"+
			"remorse,חרטה,,hard,feelings\n"+
			"more,עוד,,,\n"), 0o644))

	out, err := run(t, dir, "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "created 3")

	out, err = run(t, dir, "list", "--difficulty", "easy,hard")
	require.NoError(t, err)
	assert.Contains(t, out, "chore")
	assert.Contains(t, out, "remorse")
	assert.NotContains(t, out, "עוד")
	assert.Contains(t, out, "2 word(s)")

	_, err = run(t, dir, "set-difficulty", "MORE", "medium")
	require.NoError(t, err)
	_, err = run(t, dir, "set-group", "more", "home")
	require.NoError(t, err)

	out, err = run(t, dir, "show", "more")
	require.NoError(t, err)
	assert.Contains(t, out, "difficulty: Medium")
	assert.Contains(t, out, "group: home")

	out, err = run(t, dir, "groups")
	require.NoError(t, err)
	assert.Equal(t, "feelings\nhome\n", out)

	out, err = run(t, dir, "rename-group", "home", "house")
	require.NoError(t, err)
	assert.Contains(t, out, "moved 2 word(s)")

	_, err = run(t, dir, "delete-group", "feelings")
	require.NoError(t, err)

	out, err = run(t, dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total words: 3")
	assert.Contains(t, out, "house")
	assert.Contains(t, out, "(none)")

	exportPath := filepath.Join(dir, "out.csv")
	_, err = run(t, dir, "export", exportPath)
	require.NoError(t, err)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "\n"))

	_, err = run(t, dir, "delete", "chore")
	require.NoError(t, err)
	_, err = run(t, dir, "delete", "chore")
	assert.Error(t, err)

	_, err = run(t, dir, "set-difficulty", "more", "sometimes")
	assert.Error(t, err)
}

func TestStatsListsRecentSessions(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "words.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"English,Translation,Examples,Difficulty,Group\n"+
			"chore,מטלה,,easy,\n"+
			"remorse,חרטה,,easy,\n"+
			"more,עוד,,easy,\n"), 0o644))
	_, err := run(t, dir, "import", csvPath)
	require.NoError(t, err)

	out, err := runWithInput(t, dir, "s\ns\nq\n", "quiz")
	require.NoError(t, err)
	assert.Contains(t, out, "Correct: 0  Wrong: 2  Questions: 2")

	out, err = run(t, dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Practice in the last 30 days:")
	assert.Contains(t, out, "Recent sessions:")
	assert.Regexp(t, `quiz\s+2\s+0%`, out)

	out, err = run(t, dir, "stats", "--recent", "0")
	require.NoError(t, err)
	assert.NotContains(t, out, "Recent sessions:")
}

func TestPrintRecent(t *testing.T) {
	var out bytes.Buffer
	printRecent(&out, nil)
	assert.Empty(t, out.String())

	finished := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)
	printRecent(&out, []models.QuizResult{
		{Mode: models.ModeFlashcards, Total: 4, Correct: 3, Wrong: 1, FinishedAt: finished},
	})
	assert.Contains(t, out.String(), "2026-03-01 09:30")
	assert.Regexp(t, `flashcards\s+4\s+75%`, out.String())
}
