// Package builder turns a module snapshot into a published artifact.
package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/zerr"
)

// entrySource is the content of the aggregator entry. Exposes are wired by
// the bundler, so the entry itself only needs to be a valid module.
const entrySource = `export default "dyndll index.js";` + "\n"

// ChangeSource reports whether the module mapping changed since the last snapshot.
type ChangeSource interface {
	HasPendingChange() bool
}

// Options configures the artifact shape.
type Options struct {
	Name       string
	Filename   string
	PublicPath string
	Layout     domain.Layout
	// BundlerConfig is the externally supplied build configuration.
	BundlerConfig map[string]any
	// Force bypasses the input-hash short circuit for every build.
	Force bool
}

// Builder implements ports.ArtifactBuilder.
type Builder struct {
	opts     Options
	changes  ChangeSource
	promoter ports.Promoter
	stubs    ports.StubRenderer
	bundler  ports.Bundler
	tracer   ports.Tracer
}

// New creates a Builder.
func New(
	opts Options,
	changes ChangeSource,
	promoter ports.Promoter,
	stubs ports.StubRenderer,
	bundler ports.Bundler,
	tracer ports.Tracer,
) *Builder {
	return &Builder{
		opts:     opts,
		changes:  changes,
		promoter: promoter,
		stubs:    stubs,
		bundler:  bundler,
		tracer:   tracer,
	}
}

// Build publishes the artifact for req. It returns nil metadata when the
// published artifact already matches req.
func (b *Builder) Build(ctx context.Context, req domain.BuildRequest) (*domain.Metadata, error) {
	ctx, span := b.tracer.Start(ctx, "build",
		ports.WithAttribute("modules", req.Snapshot.Len()),
		ports.WithAttribute("force", req.Force || b.opts.Force),
	)
	defer span.End()

	meta, err := b.build(ctx, req, span)
	if err != nil {
		span.RecordError(err)
		err = zerr.Wrap(err, domain.ErrBuildFailed.Error())
		return nil, zerr.With(err, "modules", strings.Join(req.Snapshot.Keys(), ","))
	}
	return meta, nil
}

func (b *Builder) build(ctx context.Context, req domain.BuildRequest, span ports.Span) (*domain.Metadata, error) {
	inputHash, err := b.InputHash(req.Snapshot.Shared())
	if err != nil {
		return nil, err
	}
	span.SetAttribute("input_hash", inputHash)

	if b.upToDate(req, inputHash) {
		span.SetAttribute("skipped", true)
		return nil, nil
	}

	if err := checkExposeFiles(req.Snapshot); err != nil {
		return nil, err
	}

	if err := b.promoter.Prepare(); err != nil {
		return nil, err
	}

	exposes, err := b.writeStubs(req.Snapshot)
	if err != nil {
		return nil, err
	}

	bundleReq, err := b.writeManifest(req.Snapshot, exposes)
	if err != nil {
		return nil, err
	}

	if err := b.bundler.Bundle(ports.WithOutput(ctx, span), bundleReq); err != nil {
		return nil, err
	}

	outputHash, err := OutputHash(inputHash, req.Snapshot)
	if err != nil {
		return nil, err
	}
	span.SetAttribute("output_hash", outputHash)

	meta := domain.Metadata{
		InputHash:  inputHash,
		OutputHash: outputHash,
		Snapshot:   req.Snapshot,
	}
	if err := b.promoter.Promote(meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// upToDate reports whether the published artifact can keep serving req.
func (b *Builder) upToDate(req domain.BuildRequest, inputHash string) bool {
	if req.Force || b.opts.Force {
		return false
	}
	if b.changes != nil && b.changes.HasPendingChange() {
		return false
	}
	current, ok := b.promoter.Current()
	if !ok {
		return false
	}
	return current.InputHash == inputHash && current.Snapshot.ModulesEqual(req.Snapshot)
}

// checkExposeFiles fails when two modules would overwrite each other's stub.
func checkExposeFiles(snapshot domain.ModuleSnapshot) error {
	owners := make(map[string]string, snapshot.Len())
	for _, key := range snapshot.Keys() {
		name := domain.ExposeFileName(key)
		if other, taken := owners[name]; taken {
			err := zerr.With(domain.ErrExposeNameCollision, "module", key)
			err = zerr.With(err, "conflicts_with", other)
			return zerr.With(err, "file", name)
		}
		owners[name] = key
	}
	return nil
}

// writeStubs renders one expose stub per module into the deps directory.
func (b *Builder) writeStubs(snapshot domain.ModuleSnapshot) ([]domain.Expose, error) {
	depsDir, err := filepath.Abs(b.opts.Layout.DepsDir())
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStubWriteFailed.Error())
	}
	if err := os.MkdirAll(depsDir, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStubWriteFailed.Error())
	}

	exposes := make([]domain.Expose, 0, snapshot.Len())
	for key, info := range snapshot.All() {
		kind, content, err := b.stubs.Render(key, info)
		if err != nil {
			return nil, zerr.With(err, "module", key)
		}

		expose := domain.Expose{
			Key:      key,
			Name:     domain.ExposeName(key),
			FileName: domain.ExposeFileName(key),
			Kind:     kind,
		}
		expose.Path = filepath.Join(depsDir, expose.FileName)

		if err := os.WriteFile(expose.Path, content, domain.FilePerm); err != nil {
			err = zerr.Wrap(err, domain.ErrStubWriteFailed.Error())
			return nil, zerr.With(err, "module", key)
		}
		exposes = append(exposes, expose)
	}

	entry := filepath.Join(depsDir, domain.EntryFileName)
	if err := os.WriteFile(entry, []byte(entrySource), domain.FilePerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStubWriteFailed.Error())
	}
	return exposes, nil
}

// writeManifest assembles the bundle request and writes it next to the stubs.
func (b *Builder) writeManifest(snapshot domain.ModuleSnapshot, exposes []domain.Expose) (domain.BundleRequest, error) {
	depsDir, err := filepath.Abs(b.opts.Layout.DepsDir())
	if err != nil {
		return domain.BundleRequest{}, zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	outputDir, err := filepath.Abs(b.promoter.PendingDir())
	if err != nil {
		return domain.BundleRequest{}, zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}

	req := domain.BundleRequest{
		Name:       b.opts.Name,
		Filename:   b.opts.Filename,
		Entry:      filepath.Join(depsDir, domain.EntryFileName),
		OutputDir:  outputDir,
		PublicPath: b.opts.PublicPath,
		Exposes:    make(map[string]string, len(exposes)),
		Shared:     snapshot.Shared(),
		Config:     b.opts.BundlerConfig,
	}
	for _, e := range exposes {
		req.Exposes[e.Name] = e.Path
	}

	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return domain.BundleRequest{}, zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	req.ManifestPath = filepath.Join(depsDir, domain.ManifestFileName)
	if err := os.WriteFile(req.ManifestPath, data, domain.FilePerm); err != nil {
		return domain.BundleRequest{}, zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	return req, nil
}

// inputShape is everything that changes the shape of a build apart from the module list.
type inputShape struct {
	Shared     domain.SharedConfig `json:"shared"`
	Config     map[string]any      `json:"config"`
	Name       string              `json:"name"`
	Filename   string              `json:"filename"`
	PublicPath string              `json:"publicPath"`
}

// InputHash digests the shared config together with the configured build shape.
func (b *Builder) InputHash(shared domain.SharedConfig) (string, error) {
	data, err := json.Marshal(inputShape{
		Shared:     domain.NormalizeShared(shared),
		Config:     b.opts.BundlerConfig,
		Name:       b.opts.Name,
		Filename:   b.opts.Filename,
		PublicPath: b.opts.PublicPath,
	})
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrHashComputationFailed.Error())
	}
	return domain.Digest(data), nil
}

// OutputHash digests inputHash combined with the serialized snapshot.
func OutputHash(inputHash string, snapshot domain.ModuleSnapshot) (string, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrHashComputationFailed.Error())
	}
	return domain.Digest(append([]byte(inputHash), data...)), nil
}

// Describe returns a one-line summary of a settled build.
func Describe(meta *domain.Metadata) string {
	if meta == nil {
		return "artifact is up to date"
	}
	return fmt.Sprintf("built %d modules (hash %s)", meta.Snapshot.Len(), meta.OutputHash)
}
