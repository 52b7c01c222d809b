package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/dyndll/internal/adapters/bundler"
	"go.trai.ch/dyndll/internal/adapters/config"
	"go.trai.ch/dyndll/internal/adapters/expose"
	dfs "go.trai.ch/dyndll/internal/adapters/fs"
	"go.trai.ch/dyndll/internal/adapters/logger"
	"go.trai.ch/dyndll/internal/adapters/scanner"
	"go.trai.ch/dyndll/internal/adapters/snapshot"
	"go.trai.ch/dyndll/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components holds what the CLI needs from the dependency graph.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			scanner.NodeID,
			snapshot.NodeID,
			expose.NodeID,
			bundler.NodeID,
			dfs.WalkerNodeID,
			dfs.ResolverNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	scan, err := graft.Dep[*scanner.Scanner](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.SnapshotStore](ctx)
	if err != nil {
		return nil, err
	}
	stubs, err := graft.Dep[ports.StubRenderer](ctx)
	if err != nil {
		return nil, err
	}
	executor, err := graft.Dep[*bundler.Executor](ctx)
	if err != nil {
		return nil, err
	}
	walker, err := graft.Dep[*dfs.Walker](ctx)
	if err != nil {
		return nil, err
	}
	resolver, err := graft.Dep[*dfs.Resolver](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, log, scan, store, stubs, executor, walker, resolver), nil
}
