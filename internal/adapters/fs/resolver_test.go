package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dyndll/internal/adapters/fs"
	"go.trai.ch/dyndll/internal/core/domain"
)

func TestResolver_ResolveSources(t *testing.T) {
	t.Parallel()

	rootDir := t.TempDir()
	writeFile(t, rootDir, "src/index.ts", "")
	writeFile(t, rootDir, "src/app.tsx", "")
	writeFile(t, rootDir, "src/components/button.jsx", "")
	writeFile(t, rootDir, "src/styles.css", "")
	writeFile(t, rootDir, "src/node_modules/local/index.js", "")
	writeFile(t, rootDir, "scripts/build.js", "")

	resolver := fs.NewResolver()

	t.Run("doublestar", func(t *testing.T) {
		t.Parallel()
		resolved, err := resolver.ResolveSources(rootDir, []string{"src/**/*.{js,jsx,ts,tsx}"})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(rootDir, "src", "app.tsx"),
			filepath.Join(rootDir, "src", "components", "button.jsx"),
			filepath.Join(rootDir, "src", "index.ts"),
		}, resolved)
	})

	t.Run("deduplicated", func(t *testing.T) {
		t.Parallel()
		resolved, err := resolver.ResolveSources(rootDir, []string{"src/*.ts", "src/index.ts", "**/index.ts"})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(rootDir, "src", "index.ts")}, resolved)
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()
		resolved, err := resolver.ResolveSources(rootDir, []string{"lib/**/*.ts"})
		require.NoError(t, err)
		assert.Empty(t, resolved)
	})

	t.Run("bad pattern", func(t *testing.T) {
		t.Parallel()
		_, err := resolver.ResolveSources(rootDir, []string{"src/[.ts"})
		require.ErrorContains(t, err, domain.ErrInvalidPattern.Error())
	})
}

func TestResolver_Matches(t *testing.T) {
	root := "/project"
	patterns := []string{"src/**/*.{ts,tsx}"}
	resolver := fs.NewResolver()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "Absolute", path: "/project/src/index.ts", want: true},
		{name: "Nested", path: "/project/src/a/b/c.tsx", want: true},
		{name: "Relative", path: "src/index.ts", want: true},
		{name: "WrongExtension", path: "/project/src/index.css", want: false},
		{name: "OutsideSources", path: "/project/scripts/build.ts", want: false},
		{name: "OutsideRoot", path: "/other/src/index.ts", want: false},
		{name: "NodeModules", path: "/project/src/node_modules/x/index.ts", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Matches(root, patterns, filepath.FromSlash(tt.path)))
		})
	}
}

func TestValidatePatterns(t *testing.T) {
	require.NoError(t, fs.ValidatePatterns(domain.DefaultSources()))
	require.Error(t, fs.ValidatePatterns([]string{"src/{a,b"}))
}
