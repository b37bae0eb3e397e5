// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/fcomp/internal/adapters/cas"
	_ "go.trai.ch/fcomp/internal/adapters/config"
	_ "go.trai.ch/fcomp/internal/adapters/fs"
	_ "go.trai.ch/fcomp/internal/adapters/logger"
	_ "go.trai.ch/fcomp/internal/adapters/scan"
	_ "go.trai.ch/fcomp/internal/adapters/shell"
	// Register app and engine nodes.
	_ "go.trai.ch/fcomp/internal/app"
	_ "go.trai.ch/fcomp/internal/engine/scheduler"
)
