// Package server serves the published artifact over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/zerr"
)

const fallbackContentType = "text/plain; charset=utf-8"

// Gate blocks until the in-flight build, if any, has settled.
type Gate interface {
	Wait(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	// Dir is the published directory requests are resolved against.
	Dir string
	// PublicPath is the URL prefix the artifact is served under.
	PublicPath string
	// Gate holds requests while a build is running. Nil serves immediately.
	Gate Gate
	// Logger receives unexpected I/O errors. May be nil.
	Logger ports.Logger
}

// Server is an http.Handler for the published artifact.
type Server struct {
	dir        string
	publicPath string
	gate       Gate
	logger     ports.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	return &Server{
		dir:        opts.Dir,
		publicPath: NormalizePublicPath(opts.PublicPath),
		gate:       opts.Gate,
		logger:     opts.Logger,
	}
}

// NormalizePublicPath returns p with exactly one leading and one trailing slash.
func NormalizePublicPath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

// Match reports whether urlPath lies under the public path.
func (s *Server) Match(urlPath string) bool {
	return strings.HasPrefix(urlPath, s.publicPath)
}

// Resolve maps urlPath to a regular file inside the published directory.
// Missing files yield an error wrapping both domain.ErrArtifactNotFound and
// fs.ErrNotExist.
func (s *Server) Resolve(urlPath string) (string, error) {
	if !s.Match(urlPath) {
		return "", zerr.With(domain.ErrOutsidePublicPath, "path", urlPath)
	}

	// Cleaning a rooted path drops any ".." that would escape the directory.
	rel := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(urlPath, s.publicPath)), "/")
	if rel == "" {
		return "", notFound(urlPath)
	}

	full := filepath.Join(s.dir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrArtifactNotFound.Error()), "path", urlPath)
	}
	if info.IsDir() {
		return "", notFound(urlPath)
	}
	return full, nil
}

func notFound(urlPath string) error {
	return zerr.With(zerr.Wrap(fs.ErrNotExist, domain.ErrArtifactNotFound.Error()), "path", urlPath)
}

// ServeHTTP waits for the running build to settle and then serves the
// requested file from the published directory.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if !s.Match(r.URL.Path) {
		http.NotFound(w, r)
		return
	}

	if s.gate != nil {
		if err := s.gate.Wait(r.Context()); err != nil {
			// The client went away while the build was running.
			return
		}
	}

	file, err := s.Resolve(r.URL.Path)
	if err != nil {
		s.fail(w, err)
		return
	}

	// The published directory may have been swapped since Resolve.
	//nolint:gosec // Path is confined to the published directory by Resolve
	f, err := os.Open(file)
	if err != nil {
		s.fail(w, err)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		s.fail(w, err)
		return
	}

	modTime := info.ModTime().UTC().Truncate(time.Second)
	header := w.Header()
	header.Set("Cache-Control", "no-cache")
	header.Set("Last-Modified", modTime.Format(http.TimeFormat))

	if NotModified(r.Header.Get("If-Modified-Since"), modTime) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	header.Set("Content-Type", ContentType(file))
	header.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, f); err != nil && s.logger != nil {
		s.logger.Warn("failed to write artifact response: " + err.Error())
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	if s.logger != nil {
		s.logger.Error(err)
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// NotModified reports whether a file last modified at modTime satisfies
// the If-Modified-Since header value ims. Unparsable values never match.
func NotModified(ims string, modTime time.Time) bool {
	if ims == "" {
		return false
	}
	since, err := http.ParseTime(ims)
	if err != nil {
		return false
	}
	return !modTime.Truncate(time.Second).After(since)
}

// ContentType derives the response type from the file extension.
func ContentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return fallbackContentType
}

// Middleware serves requests under the public path and passes every other
// request to next.
func (s *Server) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Match(r.URL.Path) {
			s.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
