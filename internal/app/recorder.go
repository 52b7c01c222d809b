package app

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/dyndll/internal/engine/builder"
	"go.trai.ch/zerr"
)

// maxRecordedDiagnostic bounds the diagnostic stored per history record.
const maxRecordedDiagnostic = 4 << 10

// recorder reports every settled build to the console and the build history.
type recorder struct {
	next    ports.ArtifactBuilder
	history ports.BuildHistory
	logger  ports.Logger
	now     func() time.Time
}

func newRecorder(next ports.ArtifactBuilder, history ports.BuildHistory, logger ports.Logger) *recorder {
	return &recorder{
		next:    next,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// Build runs the wrapped build. Failures are returned, not logged.
func (r *recorder) Build(ctx context.Context, req domain.BuildRequest) (*domain.Metadata, error) {
	started := r.now()
	meta, err := r.next.Build(ctx, req)

	rec := domain.BuildRecord{
		StartedAt: started,
		Duration:  r.now().Sub(started),
		Modules:   req.Snapshot.Len(),
		Forced:    req.Force,
	}
	switch {
	case err != nil:
		rec.Status = domain.BuildStatusFailed
		rec.Diagnostic = diagnostic(err)
	case meta == nil:
		rec.Status = domain.BuildStatusSkipped
	default:
		rec.Status = domain.BuildStatusBuilt
		rec.InputHash = meta.InputHash
		rec.OutputHash = meta.OutputHash
	}

	if err == nil {
		r.logger.Info("[dyndll] build succeeded: " + builder.Describe(meta))
	}

	if r.history != nil {
		if herr := r.history.Record(ctx, rec); herr != nil {
			r.logger.Warn("could not record build: " + herr.Error())
		}
	}
	return meta, err
}

// diagnostic returns the innermost message of err, which carries the
// bundler's own output for engine failures.
func diagnostic(err error) string {
	msg := err.Error()
	for cur := err; cur != nil; {
		var ze *zerr.Error
		if !errors.As(cur, &ze) {
			msg = cur.Error()
			break
		}
		if m := ze.Message(); m != "" {
			msg = m
		}
		cur = ze.Unwrap()
	}
	if len(msg) > maxRecordedDiagnostic {
		start := len(msg) - maxRecordedDiagnostic
		for start < len(msg) && !utf8.RuneStart(msg[start]) {
			start++
		}
		msg = msg[start:]
	}
	return msg
}
