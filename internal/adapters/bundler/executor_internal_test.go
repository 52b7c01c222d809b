package bundler

import (
	"os"
	"sort"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dyndll/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestResolveEnvironment(t *testing.T) {
	tests := []struct {
		name      string
		sysEnv    []string
		toolPath  string
		overrides map[string]string
		expected  []string
	}{
		{
			name:     "System Only (Allowed)",
			sysEnv:   []string{"USER=test", "PATH=/bin", "HOME=/home/test", "NODE_OPTIONS=--max-old-space-size=4096"},
			expected: []string{"USER=test", "PATH=/bin", "HOME=/home/test", "NODE_OPTIONS=--max-old-space-size=4096"},
		},
		{
			name:     "System Only (Filtered)",
			sysEnv:   []string{"USER=test", "SSH_AUTH_SOCK=/tmp/ssh", "SECRET=key"},
			expected: []string{"USER=test"},
		},
		{
			name:     "Tool Path Prepended",
			sysEnv:   []string{"USER=test", "PATH=/bin"},
			toolPath: "/app/node_modules/.bin",
			expected: []string{"USER=test", "PATH=/app/node_modules/.bin" + string(os.PathListSeparator) + "/bin"},
		},
		{
			name:     "Tool Path Without System PATH",
			sysEnv:   []string{"USER=test"},
			toolPath: "/app/node_modules/.bin",
			expected: []string{"USER=test", "PATH=/app/node_modules/.bin"},
		},
		{
			name:      "Overrides Win",
			sysEnv:    []string{"USER=test", "PATH=/bin"},
			toolPath:  "/app/node_modules/.bin",
			overrides: map[string]string{"PATH": "/custom/bin", "NODE_ENV": "development"},
			expected:  []string{"USER=test", "PATH=/custom/bin", "NODE_ENV=development"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveEnvironment(tt.sysEnv, tt.toolPath, tt.overrides)

			sort.Strings(got)
			sort.Strings(tt.expected)

			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLookPath_EmptyPATH(t *testing.T) {
	_, err := lookPath("echo", []string{"USER=test"})
	assert.Error(t, err)
}

func TestLookPath_ExecutableNotFound(t *testing.T) {
	_, err := lookPath("nonexistent-command", []string{"PATH=/nonexistent/dir"})
	assert.Error(t, err)
}

func TestLookPath_EmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	_, err := lookPath("nonexistent", []string{"PATH=:" + tmpDir})
	assert.Error(t, err)
}

func TestFindExecutable(t *testing.T) {
	assert.Error(t, findExecutable("/nonexistent/file"))
	assert.Error(t, findExecutable(t.TempDir()))
}

func TestLogWriter(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	gomock.InOrder(
		log.EXPECT().Info("first"),
		log.EXPECT().Info("second"),
		log.EXPECT().Info("tail"),
	)

	w := &logWriter{logger: log, level: levelInfo}
	_, err := w.Write([]byte("fir"))
	require.NoError(t, err)
	_, err = w.Write([]byte("st\r\n\nsecond\nta"))
	require.NoError(t, err)
	_, err = w.Write([]byte("il"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestLogWriter_Warn(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn("deprecated option")

	w := &logWriter{logger: log, level: levelWarn}
	_, err := w.Write([]byte("deprecated option\n"))
	require.NoError(t, err)
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{limit: 8}
	_, _ = b.Write([]byte("0123456789"))
	_, _ = b.Write([]byte("ab\r\n"))
	assert.Equal(t, "6789ab", b.String())
}

func TestTailBuffer_CutInsideCharacter(t *testing.T) {
	b := &tailBuffer{limit: 7}
	// "é" is two bytes; the limit drops its first byte.
	_, _ = b.Write([]byte("xxé: fail"))
	got := b.String()
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, ": fail", got)

	untouched := &tailBuffer{limit: 64}
	_, _ = untouched.Write([]byte("Modul nicht gefunden: ü"))
	assert.Equal(t, "Modul nicht gefunden: ü", untouched.String())
}
