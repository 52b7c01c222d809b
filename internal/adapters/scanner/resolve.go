package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/zerr"
)

const packageJSON = "package.json"

// entryConditions are the export conditions tried, in order.
var entryConditions = []string{"import", "module", "browser", "default", "require"}

// fileSuffixes are appended to an entry that does not name a file directly.
var fileSuffixes = []string{"", ".js", ".mjs", ".cjs", "/index.js", "/index.mjs", "/index.cjs"}

// IsBare reports whether spec names a package rather than a file or URL.
func IsBare(spec string) bool {
	if spec == "" {
		return false
	}
	switch spec[0] {
	case '.', '/', '#':
		return false
	}
	if domain.IsBuiltinModule(spec) {
		return true
	}
	return !strings.Contains(spec, ":")
}

// ModuleKey strips any query or fragment from a specifier.
func ModuleKey(spec string) string {
	if i := strings.IndexAny(spec, "?#"); i >= 0 {
		return spec[:i]
	}
	return spec
}

// SplitPackage splits a bare specifier into its package name and subpath.
// "@scope/pkg/a/b" yields ("@scope/pkg", "a/b").
func SplitPackage(spec string) (string, string) {
	parts := strings.SplitN(spec, "/", 3)
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		name := parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			return name, parts[2]
		}
		return name, ""
	}
	name, sub, _ := strings.Cut(spec, "/")
	return name, sub
}

// Resolve finds the file and version a bare specifier refers to when
// imported from origin. Builtins resolve to themselves without a version.
func Resolve(spec, origin string) (domain.ModuleInfo, error) {
	if domain.IsBuiltinModule(spec) {
		return domain.ModuleInfo{ResolvedPath: spec}, nil
	}

	name, subpath := SplitPackage(spec)
	pkgDir, ok := findPackageDir(filepath.Dir(origin), name)
	if !ok {
		return domain.ModuleInfo{}, unresolved(spec, origin)
	}

	manifest, err := os.ReadFile(filepath.Join(pkgDir, packageJSON)) //nolint:gosec // Path is built from node_modules lookup
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.ModuleInfo{}, zerr.With(zerr.Wrap(err, domain.ErrModuleUnresolved.Error()), "module", spec)
	}

	entry, ok := resolveEntry(pkgDir, subpath, manifest)
	if !ok {
		return domain.ModuleInfo{}, unresolved(spec, origin)
	}

	return domain.NewModuleInfo(entry, gjson.GetBytes(manifest, "version").String()), nil
}

func unresolved(spec, origin string) error {
	return zerr.With(zerr.With(domain.ErrModuleUnresolved, "module", spec), "origin", origin)
}

// findPackageDir walks up from dir looking for node_modules/<name>.
func findPackageDir(dir, name string) (string, bool) {
	for {
		if filepath.Base(dir) != "node_modules" {
			candidate := filepath.Join(dir, "node_modules", filepath.FromSlash(name))
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				return candidate, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// resolveEntry picks the file inside pkgDir for subpath ("" for the package root).
func resolveEntry(pkgDir, subpath string, manifest []byte) (string, bool) {
	var candidates []string

	exportKey := "."
	if subpath != "" {
		exportKey = "./" + subpath
	}
	if target, ok := exportTarget(gjson.GetBytes(manifest, "exports"), exportKey); ok {
		candidates = append(candidates, target)
	}

	if subpath == "" {
		for _, field := range []string{"module", "main"} {
			if v := gjson.GetBytes(manifest, field).String(); v != "" {
				candidates = append(candidates, v)
			}
		}
		candidates = append(candidates, "index")
	} else {
		candidates = append(candidates, subpath)
	}

	for _, candidate := range candidates {
		if file, ok := existingFile(filepath.Join(pkgDir, filepath.FromSlash(candidate))); ok {
			return file, true
		}
	}
	return "", false
}

// exportTarget reads the target of key from an "exports" field.
func exportTarget(exports gjson.Result, key string) (string, bool) {
	if !exports.Exists() {
		return "", false
	}
	if exports.Type == gjson.String {
		if key == "." {
			return exports.String(), true
		}
		return "", false
	}
	if !exports.IsObject() {
		return "", false
	}

	entries := exports.Map()
	if target, ok := entries[key]; ok {
		return conditionTarget(target)
	}
	// Sugar form: the object is the condition map of ".".
	if key == "." {
		for k := range entries {
			if strings.HasPrefix(k, ".") {
				return "", false
			}
		}
		return conditionTarget(exports)
	}
	return "", false
}

// conditionTarget flattens nested export conditions to a single path.
func conditionTarget(v gjson.Result) (string, bool) {
	switch {
	case v.Type == gjson.String:
		return v.String(), true
	case v.IsObject():
		for _, cond := range entryConditions {
			if next := v.Get(cond); next.Exists() {
				if target, ok := conditionTarget(next); ok {
					return target, true
				}
			}
		}
	case v.IsArray():
		for _, item := range v.Array() {
			if target, ok := conditionTarget(item); ok {
				return target, true
			}
		}
	}
	return "", false
}

// existingFile tries path with each of fileSuffixes.
func existingFile(path string) (string, bool) {
	for _, suffix := range fileSuffixes {
		candidate := path + filepath.FromSlash(suffix)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
