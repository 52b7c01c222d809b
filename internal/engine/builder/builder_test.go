package builder_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/dyndll/internal/core/ports/mocks"
	"go.trai.ch/dyndll/internal/engine/builder"
	"go.uber.org/mock/gomock"
)

type changeFlag bool

func (c changeFlag) HasPendingChange() bool { return bool(c) }

type builderTestMocks struct {
	promoter *mocks.MockPromoter
	stubs    *mocks.MockStubRenderer
	bundler  *mocks.MockBundler
	tracer   *mocks.MockTracer
	layout   domain.Layout
}

func setupBuilderTest(t *testing.T, changes builder.ChangeSource, force bool) (*builder.Builder, builderTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := builderTestMocks{
		promoter: mocks.NewMockPromoter(ctrl),
		stubs:    mocks.NewMockStubRenderer(ctrl),
		bundler:  mocks.NewMockBundler(ctrl),
		tracer:   mocks.NewMockTracer(ctrl),
		layout:   domain.NewLayout(t.TempDir()),
	}

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()

	m.promoter.EXPECT().PendingDir().Return(m.layout.PendingDir()).AnyTimes()

	b := builder.New(builder.Options{
		Name:          domain.DefaultName,
		Filename:      domain.DefaultFilename,
		PublicPath:    domain.DefaultPublicPath,
		Layout:        m.layout,
		BundlerConfig: map[string]any{"mode": "development"},
		Force:         force,
	}, changes, m.promoter, m.stubs, m.bundler, m.tracer)
	return b, m
}

func snapshotOf(shared domain.SharedConfig, keys ...string) domain.ModuleSnapshot {
	modules := make(map[string]domain.ModuleInfo, len(keys))
	for _, k := range keys {
		modules[k] = domain.NewModuleInfo("/app/node_modules/"+k+"/index.js", "1.0.0")
	}
	return domain.NewModuleSnapshot(modules, shared)
}

func TestBuilder_BuildsWhenNothingPublished(t *testing.T) {
	b, m := setupBuilderTest(t, changeFlag(false), false)
	snap := snapshotOf(domain.SharedConfig{"react": map[string]any{"singleton": true}}, "react", "react/jsx-runtime")

	inputHash, err := b.InputHash(snap.Shared())
	require.NoError(t, err)
	outputHash, err := builder.OutputHash(inputHash, snap)
	require.NoError(t, err)

	gomock.InOrder(
		m.promoter.EXPECT().Current().Return(domain.Metadata{}, false),
		m.promoter.EXPECT().Prepare().Return(nil),
	)
	m.stubs.EXPECT().Render("react", gomock.Any()).Return(domain.ExposeESM, []byte("export * from 'react';\n"), nil)
	m.stubs.EXPECT().Render("react/jsx-runtime", gomock.Any()).Return(domain.ExposeCommonJS, []byte("cjs\n"), nil)

	var bundled domain.BundleRequest
	m.bundler.EXPECT().Bundle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req domain.BundleRequest) error {
			bundled = req
			return nil
		})
	m.promoter.EXPECT().Promote(gomock.Any()).DoAndReturn(func(meta domain.Metadata) error {
		assert.Equal(t, inputHash, meta.InputHash)
		assert.Equal(t, outputHash, meta.OutputHash)
		assert.True(t, meta.Snapshot.Equal(snap))
		return nil
	})

	meta, err := b.Build(context.Background(), domain.BuildRequest{Snapshot: snap})
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, outputHash, meta.OutputHash)

	depsDir, err := filepath.Abs(m.layout.DepsDir())
	require.NoError(t, err)
	pendingDir, err := filepath.Abs(m.layout.PendingDir())
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultName, bundled.Name)
	assert.Equal(t, domain.DefaultFilename, bundled.Filename)
	assert.Equal(t, pendingDir, bundled.OutputDir)
	assert.Equal(t, filepath.Join(depsDir, "index.js"), bundled.Entry)
	assert.Equal(t, map[string]string{
		"./react":             filepath.Join(depsDir, "_dynamic-dll-va_react.js"),
		"./react/jsx-runtime": filepath.Join(depsDir, "_dynamic-dll-va_react_jsx-runtime.js"),
	}, bundled.Exposes)

	stub, err := os.ReadFile(filepath.Join(depsDir, "_dynamic-dll-va_react.js"))
	require.NoError(t, err)
	assert.Equal(t, "export * from 'react';\n", string(stub))
	assert.FileExists(t, filepath.Join(depsDir, "index.js"))

	manifest, err := os.ReadFile(filepath.Join(depsDir, "manifest.json"))
	require.NoError(t, err)
	var decoded domain.BundleRequest
	require.NoError(t, json.Unmarshal(manifest, &decoded))
	assert.Equal(t, bundled.Exposes, decoded.Exposes)
	assert.Equal(t, "development", decoded.Config["mode"])
	assert.Equal(t, filepath.Join(depsDir, "manifest.json"), bundled.ManifestPath)
	assert.Empty(t, decoded.ManifestPath)
}

func TestBuilder_SkipsWhenUpToDate(t *testing.T) {
	b, m := setupBuilderTest(t, changeFlag(false), false)
	snap := snapshotOf(nil, "react")

	inputHash, err := b.InputHash(snap.Shared())
	require.NoError(t, err)

	m.promoter.EXPECT().Current().Return(domain.Metadata{
		InputHash:  inputHash,
		OutputHash: "deadbeef",
		Snapshot:   snap,
	}, true)

	meta, err := b.Build(context.Background(), domain.BuildRequest{Snapshot: snap})
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestBuilder_RebuildConditions(t *testing.T) {
	snap := snapshotOf(nil, "react")

	tests := []struct {
		name     string
		changes  changeFlag
		force    bool
		reqForce bool
		current  func(inputHash string) domain.Metadata
	}{
		{
			name:    "PendingChange",
			changes: true,
			current: func(h string) domain.Metadata { return domain.Metadata{InputHash: h, Snapshot: snap} },
		},
		{
			name:     "RequestForced",
			reqForce: true,
			current:  func(h string) domain.Metadata { return domain.Metadata{InputHash: h, Snapshot: snap} },
		},
		{
			name:    "ConfigForced",
			force:   true,
			current: func(h string) domain.Metadata { return domain.Metadata{InputHash: h, Snapshot: snap} },
		},
		{
			name:    "InputHashChanged",
			current: func(string) domain.Metadata { return domain.Metadata{InputHash: "00000000", Snapshot: snap} },
		},
		{
			name: "ModuleSetChanged",
			current: func(h string) domain.Metadata {
				return domain.Metadata{InputHash: h, Snapshot: snapshotOf(nil, "react", "vue")}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, m := setupBuilderTest(t, tt.changes, tt.force)
			inputHash, err := b.InputHash(snap.Shared())
			require.NoError(t, err)

			m.promoter.EXPECT().Current().Return(tt.current(inputHash), true).MaxTimes(1)
			m.promoter.EXPECT().Prepare().Return(nil)
			m.stubs.EXPECT().Render("react", gomock.Any()).Return(domain.ExposeESM, []byte("x"), nil)
			m.bundler.EXPECT().Bundle(gomock.Any(), gomock.Any()).Return(nil)
			m.promoter.EXPECT().Promote(gomock.Any()).Return(nil)

			meta, err := b.Build(context.Background(), domain.BuildRequest{Snapshot: snap, Force: tt.reqForce})
			require.NoError(t, err)
			require.NotNil(t, meta)
		})
	}
}

func TestBuilder_BundlerFailureLeavesPublishedBuild(t *testing.T) {
	b, m := setupBuilderTest(t, changeFlag(true), false)
	snap := snapshotOf(nil, "react", "vue")

	m.promoter.EXPECT().Prepare().Return(nil)
	m.stubs.EXPECT().Render(gomock.Any(), gomock.Any()).Return(domain.ExposeESM, []byte("x"), nil).Times(2)
	m.bundler.EXPECT().Bundle(gomock.Any(), gomock.Any()).Return(errors.New("Module not found: vue/dist"))
	m.promoter.EXPECT().Promote(gomock.Any()).Times(0)

	meta, err := b.Build(context.Background(), domain.BuildRequest{Snapshot: snap})
	require.Error(t, err)
	assert.Nil(t, meta)
	assert.ErrorContains(t, err, domain.ErrBuildFailed.Error())
	assert.ErrorContains(t, err, "Module not found: vue/dist")
}

func TestBuilder_StubFailure(t *testing.T) {
	b, m := setupBuilderTest(t, changeFlag(true), false)
	snap := snapshotOf(nil, "react")

	m.promoter.EXPECT().Prepare().Return(nil)
	m.stubs.EXPECT().Render("react", gomock.Any()).Return(domain.ExposeESM, nil, errors.New("unreadable"))

	_, err := b.Build(context.Background(), domain.BuildRequest{Snapshot: snap})
	require.ErrorContains(t, err, "unreadable")
}

func TestBuilder_ExposeFileCollision(t *testing.T) {
	b, m := setupBuilderTest(t, changeFlag(true), false)
	snap := snapshotOf(nil, "lodash/fp", "lodash_fp", "react")

	// No Prepare, Render or Bundle call is expected.
	_, err := b.Build(context.Background(), domain.BuildRequest{Snapshot: snap})
	require.ErrorContains(t, err, domain.ErrExposeNameCollision.Error())
	assert.ErrorContains(t, err, domain.ErrBuildFailed.Error())
	assert.NoDirExists(t, m.layout.DepsDir())
}

func TestBuilder_Hashes(t *testing.T) {
	b, _ := setupBuilderTest(t, changeFlag(false), false)

	h1, err := b.InputHash(domain.SharedConfig{"react": map[string]any{"singleton": true}})
	require.NoError(t, err)
	h2, err := b.InputHash(domain.SharedConfig{"react": map[string]any{"singleton": true}})
	require.NoError(t, err)
	h3, err := b.InputHash(domain.SharedConfig{"react": map[string]any{"singleton": false}})
	require.NoError(t, err)

	assert.Len(t, h1, domain.DigestLength)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)

	o1, err := builder.OutputHash(h1, snapshotOf(nil, "react"))
	require.NoError(t, err)
	o2, err := builder.OutputHash(h1, snapshotOf(nil, "react"))
	require.NoError(t, err)
	o3, err := builder.OutputHash(h1, snapshotOf(nil, "react", "vue"))
	require.NoError(t, err)
	o4, err := builder.OutputHash(h3, snapshotOf(nil, "react"))
	require.NoError(t, err)

	assert.Equal(t, o1, o2)
	assert.NotEqual(t, o1, o3)
	assert.NotEqual(t, o1, o4)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "artifact is up to date", builder.Describe(nil))
	assert.Equal(t, "built 2 modules (hash abcd1234)", builder.Describe(&domain.Metadata{
		OutputHash: "abcd1234",
		Snapshot:   snapshotOf(nil, "a", "b"),
	}))
}
