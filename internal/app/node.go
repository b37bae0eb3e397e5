package app

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/fcomp/internal/adapters/cas"    //nolint:depguard // Wired in app layer
	"go.trai.ch/fcomp/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/fcomp/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/fcomp/internal/adapters/progress"
	"go.trai.ch/fcomp/internal/adapters/scan" //nolint:depguard // Wired in app layer
	progrockad "go.trai.ch/fcomp/internal/adapters/telemetry/progrock"
	"go.trai.ch/fcomp/internal/core/ports"
	"go.trai.ch/fcomp/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components needed by the
// CLI layer.
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
			scan.NodeID,
			cas.NodeID,
			scheduler.NodeID,
			logger.NodeID,
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
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	scanner, err := graft.Dep[ports.Scanner](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.FingerprintStore](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	reporter := progress.NewReporter(os.Stderr, sched, progress.DefaultInterval)
	return New(loader, scanner, store, sched, log, reporter, progrockad.New()), nil
}
