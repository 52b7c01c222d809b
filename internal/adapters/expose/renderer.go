// Package expose renders the re-export stubs the bundler exposes one module through.
package expose

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/dyndll/internal/adapters/jsparse"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StubRenderer = (*Renderer)(nil)

var (
	styleFile = regexp.MustCompile(`\.(css|less|scss|sass|stylus|styl)$`)
	assetFile = regexp.MustCompile(`\.(json|svg|png|jpe?g|avif|gif|webp|ico|eot|woff|woff2|ttf|txt|text|mdx?)$`)
)

// Renderer implements ports.StubRenderer.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render returns the stub for key. Module files are read from info.ResolvedPath
// to tell ES modules from CommonJS.
func (r *Renderer) Render(key string, info domain.ModuleInfo) (domain.ExposeKind, []byte, error) {
	kind, shape, err := r.classify(key, info)
	if err != nil {
		return kind, nil, zerr.With(err, "module", key)
	}

	var src string
	switch kind {
	case domain.ExposeBuiltin, domain.ExposeCommonJS:
		src = defaultImport(key) + starExport(key)
	case domain.ExposeStyle:
		src = fmt.Sprintf("import '%s';", key)
	case domain.ExposeAsset:
		src = defaultImport(key)
	case domain.ExposeESM:
		src = starExport(key)
		if shape.HasDefault {
			src = defaultImport(key) + src
		}
	}

	return kind, trim(src), nil
}

// Classify decides the stub shape of a module.
func (r *Renderer) Classify(key string, info domain.ModuleInfo) (domain.ExposeKind, error) {
	kind, _, err := r.classify(key, info)
	return kind, err
}

func (r *Renderer) classify(key string, info domain.ModuleInfo) (domain.ExposeKind, jsparse.Shape, error) {
	if info.Version == nil && domain.IsBuiltinModule(key) {
		return domain.ExposeBuiltin, jsparse.Shape{}, nil
	}

	path := strings.ToLower(info.ResolvedPath)
	if styleFile.MatchString(path) {
		return domain.ExposeStyle, jsparse.Shape{}, nil
	}
	if assetFile.MatchString(path) {
		return domain.ExposeAsset, jsparse.Shape{}, nil
	}

	shape, err := r.shape(info)
	if err != nil {
		return domain.ExposeESM, shape, err
	}
	if !shape.ESM() {
		return domain.ExposeCommonJS, shape, nil
	}
	return domain.ExposeESM, shape, nil
}

func (r *Renderer) shape(info domain.ModuleInfo) (jsparse.Shape, error) {
	content, err := os.ReadFile(filepath.Clean(info.ResolvedPath))
	if err != nil {
		return jsparse.Shape{}, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", info.ResolvedPath)
	}
	return jsparse.AnalyzeShape(info.ResolvedPath, content)
}

func defaultImport(key string) string {
	return fmt.Sprintf("import _ from '%s';\nexport default _;\n", key)
}

func starExport(key string) string {
	return fmt.Sprintf("export * from '%s';\n", key)
}

func trim(src string) []byte {
	return []byte(strings.TrimSpace(src) + "\n")
}
