package ports

import (
	"context"

	"go.trai.ch/dyndll/internal/core/domain"
)

// ArtifactBuilder runs one build.
//
//go:generate mockgen -source=artifact_builder.go -destination=mocks/mock_artifact_builder.go -package=mocks
type ArtifactBuilder interface {
	// Build produces and publishes the artifact for req.
	// It returns nil metadata when the published artifact is already current.
	Build(ctx context.Context, req domain.BuildRequest) (*domain.Metadata, error)
}
