package expose

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/dyndll/internal/core/ports"
)

// NodeID is the unique identifier for the stub renderer Graft node.
const NodeID graft.ID = "adapter.expose"

func init() {
	graft.Register(graft.Node[ports.StubRenderer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StubRenderer, error) {
			return NewRenderer(), nil
		},
	})
}
