package scanner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/dyndll/internal/adapters/fs"
	"go.trai.ch/dyndll/internal/adapters/logger"
	"go.trai.ch/dyndll/internal/core/ports"
)

// NodeID is the unique identifier for the source scanner Graft node.
const NodeID graft.ID = "adapter.scanner"

func init() {
	graft.Register(graft.Node[*Scanner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.ResolverNodeID, fs.HasherNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Scanner, error) {
			resolver, err := graft.Dep[*fs.Resolver](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[*fs.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(resolver, hasher, log), nil
		},
	})
}
