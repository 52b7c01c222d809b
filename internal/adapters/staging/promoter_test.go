package staging_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dyndll/internal/adapters/staging"
	"go.trai.ch/dyndll/internal/core/domain"
)

func metadata(hash string, keys ...string) domain.Metadata {
	modules := make(map[string]domain.ModuleInfo, len(keys))
	for _, k := range keys {
		modules[k] = domain.NewModuleInfo("/app/node_modules/"+k+"/index.js", "1.0.0")
	}
	return domain.Metadata{
		InputHash:  "in-" + hash,
		OutputHash: hash,
		Snapshot:   domain.NewModuleSnapshot(modules, nil),
	}
}

// stage runs one build through the promoter up to the swap.
func stage(t *testing.T, p *staging.Promoter, artifact string) {
	t.Helper()
	require.NoError(t, p.Prepare())
	require.NoError(t, os.WriteFile(filepath.Join(p.PendingDir(), domain.DefaultFilename), []byte(artifact), 0o600))
}

// readTree returns every file below dir keyed by its relative path.
func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestPromoter_FirstBuild(t *testing.T) {
	layout := domain.NewLayout(t.TempDir())
	p := staging.NewPromoter(layout)

	_, ok := p.Current()
	assert.False(t, ok)

	stage(t, p, "artifact v1")
	require.NoError(t, p.Promote(metadata("aaaa1111", "react")))

	assert.NoDirExists(t, layout.PendingDir())
	assert.FileExists(t, filepath.Join(layout.CurrentDir(), domain.DefaultFilename))

	meta, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "aaaa1111", meta.OutputHash)
	assert.Equal(t, "in-aaaa1111", meta.InputHash)
	assert.Equal(t, []string{"react"}, meta.Snapshot.Keys())
}

func TestPromoter_ReplacesPublishedBuild(t *testing.T) {
	layout := domain.NewLayout(t.TempDir())
	p := staging.NewPromoter(layout)

	stage(t, p, "artifact v1")
	require.NoError(t, os.WriteFile(filepath.Join(p.PendingDir(), "chunk-old.js"), []byte("old"), 0o600))
	require.NoError(t, p.Promote(metadata("aaaa1111", "react")))

	stage(t, p, "artifact v2")
	require.NoError(t, p.Promote(metadata("bbbb2222", "react", "vue")))

	files := readTree(t, layout.CurrentDir())
	assert.Equal(t, "artifact v2", files[domain.DefaultFilename])
	assert.NotContains(t, files, "chunk-old.js")
	assert.Contains(t, files, domain.MetadataFileName)

	meta, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "bbbb2222", meta.OutputHash)

	entries, err := os.ReadDir(layout.Root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "previous", e.Name())
	}
}

func TestPromoter_FailureBeforeSwapKeepsPublishedBuild(t *testing.T) {
	layout := domain.NewLayout(t.TempDir())
	p := staging.NewPromoter(layout)

	stage(t, p, "artifact v1")
	require.NoError(t, p.Promote(metadata("aaaa1111", "react")))
	before := readTree(t, layout.CurrentDir())

	stage(t, p, "artifact v2 partially")
	p.SetBeforeSwap(func() error { return errors.New("power loss") })
	err := p.Promote(metadata("bbbb2222", "react", "vue"))
	require.ErrorContains(t, err, domain.ErrPromoteFailed.Error())

	assert.Equal(t, before, readTree(t, layout.CurrentDir()))
	meta, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "aaaa1111", meta.OutputHash)

	// The next run discards the complete but unpublished staging directory.
	p.SetBeforeSwap(nil)
	stage(t, p, "artifact v3")
	assert.Equal(t, map[string]string{domain.DefaultFilename: "artifact v3"}, readTree(t, layout.PendingDir()))
	require.NoError(t, p.Promote(metadata("cccc3333", "react")))

	files := readTree(t, layout.CurrentDir())
	assert.Equal(t, "artifact v3", files[domain.DefaultFilename])
}

func TestPromoter_RecoversInterruptedSwap(t *testing.T) {
	layout := domain.NewLayout(t.TempDir())
	p := staging.NewPromoter(layout)

	stage(t, p, "artifact v1")
	require.NoError(t, p.Promote(metadata("aaaa1111", "react")))

	// The process dies after moving the published build aside.
	stage(t, p, "artifact v2")
	require.NoError(t, os.Rename(layout.CurrentDir(), filepath.Join(layout.Root, "previous")))

	restarted := staging.NewPromoter(layout)
	recovered, err := restarted.Recover()
	require.NoError(t, err)
	assert.True(t, recovered)

	meta, ok := restarted.Current()
	require.True(t, ok)
	assert.Equal(t, "aaaa1111", meta.OutputHash)
	assert.Equal(t, "artifact v1", readTree(t, layout.CurrentDir())[domain.DefaultFilename])
	assert.NoDirExists(t, filepath.Join(layout.Root, "previous"))

	recovered, err = restarted.Recover()
	require.NoError(t, err)
	assert.False(t, recovered)
}

func TestPromoter_PrepareRecoversInterruptedSwap(t *testing.T) {
	layout := domain.NewLayout(t.TempDir())
	p := staging.NewPromoter(layout)

	stage(t, p, "artifact v1")
	require.NoError(t, p.Promote(metadata("aaaa1111", "react")))
	require.NoError(t, os.Rename(layout.CurrentDir(), filepath.Join(layout.Root, "previous")))

	require.NoError(t, p.Prepare())

	meta, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "aaaa1111", meta.OutputHash)
	assert.Empty(t, readTree(t, layout.PendingDir()))
}

func TestPromoter_RecoverIgnoresIncompletePrevious(t *testing.T) {
	layout := domain.NewLayout(t.TempDir())
	p := staging.NewPromoter(layout)

	previous := filepath.Join(layout.Root, "previous")
	require.NoError(t, os.MkdirAll(previous, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(previous, domain.DefaultFilename), []byte("half"), 0o600))

	recovered, err := p.Recover()
	require.NoError(t, err)
	assert.False(t, recovered)
	assert.NoDirExists(t, layout.CurrentDir())
}

func TestPromoter_PrepareDiscardsLeftovers(t *testing.T) {
	layout := domain.NewLayout(t.TempDir())
	p := staging.NewPromoter(layout)

	require.NoError(t, os.MkdirAll(layout.PendingDir(), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(layout.PendingDir(), "stale.js"), nil, 0o600))
	require.NoError(t, os.MkdirAll(layout.DepsDir(), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(layout.DepsDir(), "_dynamic-dll-va_old.js"), nil, 0o600))

	require.NoError(t, p.Prepare())

	assert.DirExists(t, layout.PendingDir())
	assert.Empty(t, readTree(t, layout.PendingDir()))
	assert.NoDirExists(t, layout.DepsDir())
}

func TestPromoter_CurrentIgnoresCorruptMetadata(t *testing.T) {
	layout := domain.NewLayout(t.TempDir())
	p := staging.NewPromoter(layout)

	require.NoError(t, os.MkdirAll(layout.CurrentDir(), 0o750))
	require.NoError(t, os.WriteFile(layout.CurrentMetadataFile(), []byte("{not json"), 0o600))

	_, ok := p.Current()
	assert.False(t, ok)

	_, err := staging.ReadMetadata(layout.CurrentMetadataFile())
	require.ErrorContains(t, err, domain.ErrMetadataReadFailed.Error())
}

func TestPromoter_MetadataFormat(t *testing.T) {
	layout := domain.NewLayout(t.TempDir())
	p := staging.NewPromoter(layout)

	stage(t, p, "artifact")
	require.NoError(t, p.Promote(metadata("aaaa1111", "react")))

	data, err := os.ReadFile(layout.CurrentMetadataFile())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"hash": "in-aaaa1111",
		"buildHash": "aaaa1111",
		"dll": {"react": {"libraryPath": "/app/node_modules/react/index.js", "version": "1.0.0"}},
		"shared": {}
	}`, string(data))
}

func TestPromoter_Clean(t *testing.T) {
	layout := domain.NewLayout(t.TempDir())
	p := staging.NewPromoter(layout)

	stage(t, p, "artifact")
	require.NoError(t, p.Promote(metadata("aaaa1111", "react")))
	require.NoError(t, os.WriteFile(layout.CacheFile(), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(layout.HistoryFile(), []byte("db"), 0o600))

	require.NoError(t, p.Clean())

	assert.NoDirExists(t, layout.CurrentDir())
	assert.NoFileExists(t, layout.CacheFile())
	assert.FileExists(t, layout.HistoryFile())

	// Cleaning twice is fine.
	require.NoError(t, p.Clean())
}
