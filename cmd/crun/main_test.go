package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig drops a config document into a fresh temp dir and returns its
// path. Running a job chdirs into the document's directory, so the original
// working directory is restored afterwards.
func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(old) })

	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestRunCLISuccess(t *testing.T) {
	path := writeConfig(t, "hello:\n  command: touch ran\n")

	code := runCLI([]string{"-c", path, "hello"})
	assert.Equal(t, exitOK, code)

	_, err := os.Stat(filepath.Join(filepath.Dir(path), "ran"))
	assert.NoError(t, err)
}

func TestRunCLIFailingJob(t *testing.T) {
	path := writeConfig(t, "boom:\n  command: exit 7\n")

	code := runCLI([]string{"-c", path, "boom"})
	assert.Equal(t, exitJobFailed, code)
}

func TestRunCLIMissingConfig(t *testing.T) {
	dir := t.TempDir()

	code := runCLI([]string{"-c", filepath.Join(dir, "nope.yaml"), "hello"})
	assert.Equal(t, exitConfigProblem, code)
}

func TestRunCLIUnknownLabel(t *testing.T) {
	path := writeConfig(t, "hello:\n  command: \"true\"\n")

	code := runCLI([]string{"-c", path, "bogus"})
	assert.Equal(t, exitNotFound, code)
}

func TestRunCLIMissingInterpolation(t *testing.T) {
	path := writeConfig(t, "greet:\n  command: echo {missing}\n")

	code := runCLI([]string{"-c", path, "greet"})
	assert.Equal(t, exitBadInterp, code)
}

func TestRunCLIMalformedTemplate(t *testing.T) {
	path := writeConfig(t, "greet:\n  command: echo {}\n")

	code := runCLI([]string{"-c", path, "greet"})
	assert.Equal(t, exitBadTemplate, code)
}

func TestRunCLIUndefinedBase(t *testing.T) {
	path := writeConfig(t, "child:\n  base: ghost\n  command: \"true\"\n")

	code := runCLI([]string{"-c", path, "child"})
	assert.Equal(t, exitConfigProblem, code)
}

func TestRunCLIDefaultJob(t *testing.T) {
	path := writeConfig(t, "default_job: hello\nhello:\n  command: touch ran\n")

	code := runCLI([]string{"-c", path})
	assert.Equal(t, exitOK, code)

	_, err := os.Stat(filepath.Join(filepath.Dir(path), "ran"))
	assert.NoError(t, err)
}

func TestRunCLIListsJobsWithoutLabel(t *testing.T) {
	path := writeConfig(t, "hello:\n  command: \"true\"\n  aliases: [hi]\n")

	code := runCLI([]string{"-c", path})
	assert.Equal(t, exitOK, code)
}

func TestRunCLIDryRunSpawnsNothing(t *testing.T) {
	path := writeConfig(t, "hello:\n  command: touch ran\n")

	code := runCLI([]string{"-c", path, "-dry-run", "hello"})
	assert.Equal(t, exitOK, code)

	_, err := os.Stat(filepath.Join(filepath.Dir(path), "ran"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCLIOverrideReachesTemplate(t *testing.T) {
	path := writeConfig(t, "greet:\n  command: touch out-{word}\n")

	code := runCLI([]string{"-c", path, "greet", "--word=hi"})
	assert.Equal(t, exitOK, code)

	_, err := os.Stat(filepath.Join(filepath.Dir(path), "out-hi"))
	assert.NoError(t, err)
}
