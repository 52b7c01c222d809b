package bundler_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dyndll/internal/adapters/bundler"
	"go.trai.ch/dyndll/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newExecutor(t *testing.T) *bundler.Executor {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return bundler.NewExecutor(log)
}

func TestExecutor_Execute_MultiLineOutput(t *testing.T) {
	executor := newExecutor(t)

	var out bytes.Buffer
	err := executor.Execute(context.Background(), bundler.Command{
		Args: []string{"sh", "-c", "echo line1; echo line2"},
		Dir:  t.TempDir(),
	}, &out)
	require.NoError(t, err)

	output := out.String()
	require.Contains(t, output, "line1")
	require.Contains(t, output, "line2")
}

func TestExecutor_Execute_FragmentedOutput(t *testing.T) {
	executor := newExecutor(t)

	var out bytes.Buffer
	err := executor.Execute(context.Background(), bundler.Command{
		Args: []string{"sh", "-c", "printf part1; sleep 0.1; echo part2"},
		Dir:  t.TempDir(),
	}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "part1part2")
}

func TestExecutor_Execute_EnvironmentVariables(t *testing.T) {
	executor := newExecutor(t)

	var out bytes.Buffer
	err := executor.Execute(context.Background(), bundler.Command{
		Args: []string{"sh", "-c", "echo $MY_TEST_VAR"},
		Env:  map[string]string{"MY_TEST_VAR": "test-value-123"},
		Dir:  t.TempDir(),
	}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "test-value-123")
}

func TestExecutor_Execute_LogsLines(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	var logged bytes.Buffer
	log.EXPECT().Info(gomock.Any()).Do(func(msg string) {
		logged.WriteString(msg + "|")
	}).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).Do(func(msg string) {
		logged.WriteString(msg + "|")
	}).AnyTimes()

	executor := bundler.NewExecutor(log)
	err := executor.Execute(context.Background(), bundler.Command{
		Args: []string{"sh", "-c", "echo compiled; echo done"},
	}, io.Discard)
	require.NoError(t, err)

	assert.Contains(t, logged.String(), "compiled|")
	assert.Contains(t, logged.String(), "done|")
	assert.NotContains(t, logged.String(), "\r")
}

func TestExecutor_Execute_InvalidCommand(t *testing.T) {
	executor := newExecutor(t)

	err := executor.Execute(context.Background(), bundler.Command{
		Args: []string{"nonexistent-command-xyz123"},
		Dir:  t.TempDir(),
	}, io.Discard)
	require.Error(t, err)
}

func TestExecutor_Execute_CommandFailure(t *testing.T) {
	executor := newExecutor(t)

	err := executor.Execute(context.Background(), bundler.Command{
		Args: []string{"sh", "-c", "exit 42"},
		Dir:  t.TempDir(),
	}, io.Discard)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "command failed"), err.Error())
}

func TestExecutor_Execute_EmptyCommand(t *testing.T) {
	executor := newExecutor(t)

	err := executor.Execute(context.Background(), bundler.Command{}, io.Discard)
	require.NoError(t, err)
}

func TestExecutor_Execute_AbsolutePath(t *testing.T) {
	executor := newExecutor(t)

	err := executor.Execute(context.Background(), bundler.Command{
		Args: []string{"/bin/sh", "-c", "echo test"},
		Dir:  t.TempDir(),
	}, io.Discard)
	require.NoError(t, err)
}

func TestExecutor_Execute_ToolPath(t *testing.T) {
	executor := newExecutor(t)

	toolDir := t.TempDir()
	writeScript(t, toolDir, "fake-esbuild", "#!/bin/sh\necho from-tool-path\n")

	var out bytes.Buffer
	err := executor.Execute(context.Background(), bundler.Command{
		Args:     []string{"fake-esbuild"},
		ToolPath: toolDir,
	}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "from-tool-path")
}
